package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"table-order-system/internal/logger"
	"table-order-system/internal/models"
	"table-order-system/internal/web"
)

// Handler handles HTTP requests for the menu catalog.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new catalog handler.
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// Register mounts the catalog routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /menu", h.GetMenu)
	mux.HandleFunc("POST /categories", h.AddCategory)
	mux.HandleFunc("POST /categories/reorder", h.Reorder)
	mux.HandleFunc("POST /categories/{id}/edit", h.EditCategory)
	mux.HandleFunc("POST /categories/{id}/delete", h.DeleteCategory)
	mux.HandleFunc("POST /items", h.AddItem)
	mux.HandleFunc("POST /items/{id}/edit", h.EditItem)
	mux.HandleFunc("POST /items/{id}/delete", h.DeleteItem)
	mux.HandleFunc("POST /set-meals", h.AddSetMeal)
	mux.HandleFunc("GET /set-meals/{id}/items", h.GetSetMealItems)
	mux.HandleFunc("POST /set-meals/{id}/delete", h.DeleteSetMeal)
}

// GetMenu handles GET /menu.
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	menu, err := h.service.GetMenu(r.Context())
	if err != nil {
		h.logger.Error("menu_load_failed", "Failed to load menu", requestID, err, nil)
		web.Fail(w, err)
		return
	}

	web.JSON(w, http.StatusOK, menu)
}

// AddCategory handles POST /categories.
func (h *Handler) AddCategory(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	var req models.AddCategoryRequest
	if !h.decode(w, r, requestID, &req) {
		return
	}

	category, err := h.service.AddCategory(r.Context(), &req, requestID)
	if err != nil {
		h.logger.Error("category_add_failed", "Failed to add category", requestID, err, map[string]interface{}{
			"name": req.Name,
		})
		web.Fail(w, err)
		return
	}

	web.JSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"category": category,
	})
}

// EditCategory handles POST /categories/{id}/edit.
func (h *Handler) EditCategory(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	id, ok := h.pathID(w, r, requestID)
	if !ok {
		return
	}

	var req models.EditCategoryRequest
	if !h.decode(w, r, requestID, &req) {
		return
	}

	if err := h.service.EditCategory(r.Context(), id, &req, requestID); err != nil {
		h.logger.Error("category_edit_failed", "Failed to edit category", requestID, err, map[string]interface{}{
			"category_id": id,
		})
		web.Fail(w, err)
		return
	}

	web.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// DeleteCategory handles POST /categories/{id}/delete.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	id, ok := h.pathID(w, r, requestID)
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(r.Context(), id, requestID); err != nil {
		h.logger.Error("category_delete_failed", "Failed to delete category", requestID, err, map[string]interface{}{
			"category_id": id,
		})
		web.Fail(w, err)
		return
	}

	web.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Reorder handles POST /categories/reorder.
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	var req models.ReorderRequest
	if !h.decode(w, r, requestID, &req) {
		return
	}

	if err := h.service.Reorder(r.Context(), &req, requestID); err != nil {
		h.logger.Error("category_reorder_failed", "Failed to reorder categories", requestID, err, nil)
		web.Fail(w, err)
		return
	}

	web.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// AddItem handles POST /items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	var req models.SaveItemRequest
	if !h.decode(w, r, requestID, &req) {
		return
	}

	item, err := h.service.AddItem(r.Context(), &req, requestID)
	if err != nil {
		h.logger.Error("item_add_failed", "Failed to add item", requestID, err, map[string]interface{}{
			"name": req.Name,
		})
		web.Fail(w, err)
		return
	}

	web.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"item":    item,
	})
}

// EditItem handles POST /items/{id}/edit.
func (h *Handler) EditItem(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	id, ok := h.pathID(w, r, requestID)
	if !ok {
		return
	}

	var req models.SaveItemRequest
	if !h.decode(w, r, requestID, &req) {
		return
	}

	if err := h.service.EditItem(r.Context(), id, &req, requestID); err != nil {
		h.logger.Error("item_edit_failed", "Failed to edit item", requestID, err, map[string]interface{}{
			"item_id": id,
		})
		web.Fail(w, err)
		return
	}

	web.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// DeleteItem handles POST /items/{id}/delete.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	id, ok := h.pathID(w, r, requestID)
	if !ok {
		return
	}

	if err := h.service.DeleteItem(r.Context(), id, requestID); err != nil {
		h.logger.Error("item_delete_failed", "Failed to delete item", requestID, err, map[string]interface{}{
			"item_id": id,
		})
		web.Fail(w, err)
		return
	}

	web.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// AddSetMeal handles POST /set-meals.
func (h *Handler) AddSetMeal(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	var req models.AddSetMealRequest
	if !h.decode(w, r, requestID, &req) {
		return
	}

	meal, err := h.service.AddSetMeal(r.Context(), &req, requestID)
	if err != nil {
		h.logger.Error("set_meal_add_failed", "Failed to add set meal", requestID, err, map[string]interface{}{
			"name": req.Name,
		})
		web.Fail(w, err)
		return
	}

	web.JSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"set_meal": meal,
	})
}

// GetSetMealItems handles GET /set-meals/{id}/items.
func (h *Handler) GetSetMealItems(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	id, ok := h.pathID(w, r, requestID)
	if !ok {
		return
	}

	constituents, err := h.service.GetSetMealItems(r.Context(), id)
	if err != nil {
		web.Fail(w, err)
		return
	}

	web.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"items":   constituents,
	})
}

// DeleteSetMeal handles POST /set-meals/{id}/delete.
func (h *Handler) DeleteSetMeal(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	id, ok := h.pathID(w, r, requestID)
	if !ok {
		return
	}

	if err := h.service.DeleteSetMeal(r.Context(), id, requestID); err != nil {
		h.logger.Error("set_meal_delete_failed", "Failed to delete set meal", requestID, err, map[string]interface{}{
			"set_meal_id": id,
		})
		web.Fail(w, err)
		return
	}

	web.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// decode parses a JSON request body, rejecting unknown fields.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, requestID string, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		web.Fail(w, models.ValidationError{Field: "body", Message: "invalid JSON"})
		return false
	}
	return true
}

// pathID parses the {id} path segment.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, requestID string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		h.logger.Error("validation_failed", "Invalid id in path", requestID, err, nil)
		web.Fail(w, models.ValidationError{Field: "id", Message: "invalid id"})
		return 0, false
	}
	return id, true
}

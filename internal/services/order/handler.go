package order

import (
	"encoding/json"
	"net/http"
	"strconv"

	"table-order-system/internal/database"
	"table-order-system/internal/logger"
	"table-order-system/internal/models"
	"table-order-system/internal/web"
)

// Handler handles HTTP requests for the order engine.
type Handler struct {
	service *Service
	db      *database.DB
	logger  *logger.Logger
}

// NewHandler creates a new order handler. db is used for health checks.
func NewHandler(service *Service, db *database.DB, log *logger.Logger) *Handler {
	return &Handler{service: service, db: db, logger: log}
}

// Register mounts the order routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders", h.SubmitOrder)
	mux.HandleFunc("GET /orders/{id}", h.GetOrder)
	mux.HandleFunc("POST /orders/{id}/status", h.UpdateStatus)
	mux.HandleFunc("GET /health", h.Health)
}

// SubmitOrder handles POST /orders.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	var req models.SubmitOrderRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		web.Fail(w, models.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}

	resp, err := h.service.Submit(r.Context(), &req, requestID)
	if err != nil {
		h.logger.Error("order_submit_failed", "Failed to submit order", requestID, err, map[string]interface{}{
			"table_number": req.TableNumber,
		})
		web.Fail(w, err)
		return
	}

	web.JSON(w, http.StatusCreated, resp)
}

// GetOrder handles GET /orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		web.Fail(w, models.ValidationError{Field: "id", Message: "invalid order id"})
		return
	}

	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		web.Fail(w, err)
		return
	}

	web.JSON(w, http.StatusOK, order)
}

// UpdateStatus handles POST /orders/{id}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		web.Fail(w, models.ValidationError{Field: "id", Message: "invalid order id"})
		return
	}

	var req models.UpdateStatusRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		web.Fail(w, models.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}

	if err := h.service.UpdateStatus(r.Context(), id, req.Status, requestID); err != nil {
		h.logger.Error("status_update_failed", "Failed to update order status", requestID, err, map[string]interface{}{
			"order_id": id,
			"status":   req.Status,
		})
		web.Fail(w, err)
		return
	}

	web.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Health handles GET /health, reporting database connectivity.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		web.JSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unhealthy",
			"error":  "database unreachable",
		})
		return
	}
	web.JSON(w, http.StatusOK, map[string]interface{}{"status": "healthy"})
}

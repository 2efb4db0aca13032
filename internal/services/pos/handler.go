package pos

import (
	"encoding/json"
	"net/http"

	"table-order-system/internal/logger"
	"table-order-system/internal/models"
	"table-order-system/internal/web"
)

// Handler handles HTTP requests for the POS bridge.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new POS handler.
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// Register mounts the POS routes on the mux. The routes exist even when the
// bridge is disabled; the service answers them with a feature-disabled error.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /pos/order/{order_number}", h.ExportOrder)
	mux.HandleFunc("POST /pos/payment/callback", h.PaymentCallback)
}

// ExportOrder handles GET /pos/order/{order_number}.
func (h *Handler) ExportOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	orderNumber := r.PathValue("order_number")
	if orderNumber == "" {
		web.Fail(w, models.ValidationError{Field: "order_number", Message: "order number is required"})
		return
	}

	out, err := h.service.Export(r.Context(), orderNumber)
	if err != nil {
		h.logger.Error("pos_export_failed", "Failed to export order", requestID, err, map[string]interface{}{
			"order_number": orderNumber,
		})
		web.Fail(w, err)
		return
	}

	web.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    out,
	})
}

// PaymentCallback handles POST /pos/payment/callback.
func (h *Handler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	var n models.PaymentNotification
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&n); err != nil {
		h.logger.Error("validation_failed", "Failed to parse callback body", requestID, err, nil)
		web.Fail(w, models.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}

	if err := h.service.ImportPayment(r.Context(), &n, requestID); err != nil {
		h.logger.Error("pos_callback_failed", "Failed to apply payment callback", requestID, err, map[string]interface{}{
			"order_number": n.OrderNo,
			"serial_no":    n.SerialNo,
		})
		web.Fail(w, err)
		return
	}

	web.JSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"table-order-system/internal/models"
)

// JSON writes data as a JSON response with the given status code.
func JSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// StatusFor maps the error taxonomy to HTTP status codes: validation and
// integrity conflicts are 400, authorization and disabled features 403,
// missing entities 404, lock timeouts 503, everything else 500.
func StatusFor(err error) int {
	switch {
	case models.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrCategoryInUse), errors.Is(err, models.ErrItemInUse):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrForbidden), errors.Is(err, models.ErrFeatureDisabled):
		return http.StatusForbidden
	case errors.Is(err, models.ErrStaleCallback):
		return http.StatusConflict
	case errors.Is(err, models.ErrBusy):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes a {success:false, message} response for err. Internal errors are
// masked with a generic message so persistence details never leak to clients.
func Fail(w http.ResponseWriter, err error) {
	code := StatusFor(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		message = "internal server error"
	}
	JSON(w, code, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

package utils

import (
	"encoding/json"
	"net/http"

	"github.com/msvee3/Interview-prep/internal/apperr"
	"github.com/msvee3/Interview-prep/internal/models"
)

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError reports err with the status its kind maps to. Server-side
// failures are reported with fallback instead of the internal error text.
func WriteError(w http.ResponseWriter, err error, fallback string) {
	status := apperr.HTTPStatus(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = fallback
	}
	JSON(w, status, models.ErrorResponse{
		Code:    apperr.Code(err),
		Message: message,
	})
}

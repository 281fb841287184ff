package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"

	"github.com/msvee3/Interview-prep/internal/models"
	"github.com/msvee3/Interview-prep/internal/utils"
)

type contextKey string

const validatedRequestKey contextKey = "validated_request"

// maximum accepted request body, in bytes
const maxBodyBytes = 1 << 20

// request models implement this interface
type Validator interface {
	Validate() error
}

// ValidateRequest decodes the JSON body into a fresh T, runs its Validate
// method and stores it in the request context for the handler. Invalid
// bodies are answered with 400 before the handler runs.
func ValidateRequest[T Validator]() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req T
			reqType := reflect.TypeOf(req)
			if reqType.Kind() == reflect.Ptr {
				req = reflect.New(reqType.Elem()).Interface().(T)
			} else {
				req = reflect.New(reqType).Interface().(T)
			}

			body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
			if err := json.NewDecoder(body).Decode(req); err != nil {
				message := "Invalid JSON in request body"
				if errors.Is(err, io.EOF) {
					message = "Request body is required"
				}
				utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
					Code:    "invalid_json",
					Message: message,
				})
				return
			}

			if err := req.Validate(); err != nil {
				var errResp *models.ErrorResponse
				if errors.As(err, &errResp) {
					utils.JSON(w, http.StatusBadRequest, *errResp)
				} else {
					utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
						Code:    "validation_error",
						Message: err.Error(),
					})
				}
				return
			}

			ctx := context.WithValue(r.Context(), validatedRequestKey, req)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetValidatedRequest retrieves the validated request from context
func GetValidatedRequest[T any](r *http.Request) T {
	return r.Context().Value(validatedRequestKey).(T)
}

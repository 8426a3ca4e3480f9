package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/stayops/stayops-backend/pkg/errors"
)

// ErrorBody is the JSON shape of every error response. The dashboard
// renders Message verbatim, so handlers keep it human-readable.
type ErrorBody struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// JSON writes the payload as-is with the given status code. List and
// write responses have fixed shapes (items/count/scannedCount/..., item,
// deleted), so there is no success envelope around them.
func JSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// Error sends an error response mapped from an AppError, or a generic 500
func Error(w http.ResponseWriter, err error) {
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		JSON(w, appErr.StatusCode, ErrorBody{
			Message: appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		})
		return
	}

	JSON(w, http.StatusInternalServerError, ErrorBody{
		Message: "an unexpected error occurred",
		Code:    "INTERNAL_ERROR",
	})
}

// NoContent sends a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// DecodeJSON decodes the request body into the provided struct
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.BadRequest("invalid JSON body")
	}
	return nil
}

package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"codeatlas/internal/errors"
)

// ErrorResponse represents an HTTP error response
type ErrorResponse struct {
	Error     string      `json:"error"`
	Code      string      `json:"code"`
	Details   interface{} `json:"details,omitempty"`
	Retryable bool        `json:"retryable,omitempty"`
}

// WriteError writes an error response with automatic status code mapping
func WriteError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}

	code := errors.InternalError
	var ae *errors.AtlasError
	if stderrors.As(err, &ae) {
		code = ae.Code
		resp.Details = ae.Details
	}
	resp.Code = string(code)
	resp.Retryable = errors.Retryable(code)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(MapErrorToStatus(code))
	json.NewEncoder(w).Encode(resp)
}

// MapErrorToStatus maps engine error codes to HTTP status codes
func MapErrorToStatus(code errors.ErrorCode) int {
	switch code {
	case errors.ScanTargetNotFound:
		return http.StatusBadRequest // 400
	case errors.ScanInProgress:
		return http.StatusConflict // 409
	case errors.ScanTimeout:
		return http.StatusGatewayTimeout // 504
	case errors.InvalidArgument:
		return http.StatusBadRequest // 400
	case errors.NotFound:
		return http.StatusNotFound // 404
	case errors.InternalError:
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// BadRequest writes a 400 Bad Request error
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, errors.New(errors.InvalidArgument, message))
}

// NotFound writes a 404 Not Found error
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, errors.New(errors.NotFound, message))
}

// InternalError writes a 500 Internal Server Error
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, errors.New(errors.InternalError, message))
}

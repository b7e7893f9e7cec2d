package httpapi

import (
	"encoding/json"
	"net/http"

	"mcpsolve/internal/instance"
	"mcpsolve/internal/solver"
	"mcpsolve/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case solver.IsTooBusy(err):
		return http.StatusTooManyRequests
	case solver.IsUnknownBackend(err), solver.IsInvalidOptions(err), instance.IsParseError(err):
		return http.StatusBadRequest
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

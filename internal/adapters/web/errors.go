package web

import (
	"encoding/json"
	"net/http"

	"bookstore-console/internal/apperr"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeAppError maps an error from the console onto its HTTP shape.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r,
		apperr.PublicMessage(err),
		string(apperr.KindOf(err)),
		apperr.HTTPStatus(err),
	)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

package utilities

import (
	"encoding/json"
	"net/http"
)

// Envelope is the response body shared by every endpoint.
type Envelope struct {
	Success      bool   `json:"success"`
	StatusCode   int    `json:"statusCode"`
	Message      string `json:"message,omitempty"`
	Data         any    `json:"data,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondOK wraps data in a successful envelope.
func RespondOK(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Envelope{Success: true, StatusCode: status, Message: message, Data: data})
}

// RespondError writes a failed envelope. data is kept so callers can send an
// explicit false/empty payload.
func RespondError(w http.ResponseWriter, status int, message, errMsg string, data any) {
	WriteJSON(w, status, Envelope{Success: false, StatusCode: status, Message: message, Data: data, ErrorMessage: errMsg})
}

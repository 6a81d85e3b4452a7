package api

import (
	"encoding/json"
	"net/http"
)

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the standard error envelope. ID is set once a payload
// has been assigned one.
type errorResponse struct {
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writePipelineError maps a parse error to its status and reports it for payload id.
func writePipelineError(w http.ResponseWriter, id string, err error) {
	writeJSON(w, statusFor(err), errorResponse{ID: id, Error: err.Error()})
}

// Package httperror simplifies returning an error as JSON from an HTTP handler
package httperror

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

type jsonError struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// Send writes message as a JSON error body with the given status and logs it.
func Send(w http.ResponseWriter, req *http.Request, status int, message string) {
	log.Warn().Str("Path", req.URL.Path).Int("Status", status).Msg(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Status: status, Error: message})
}

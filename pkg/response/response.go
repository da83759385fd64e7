// Package response writes JSON responses in the API's wire format.
//
// The product API predates this codebase and its body shapes are pinned:
// entities and listings are returned bare (no envelope), and every failure
// is `{"message": "..."}` with the appropriate status code.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/aabhushan/pkg/apperr"
)

func write(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// JSON sends data with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, data)
}

// Message sends {"message": msg} with the given status code.
func Message(w http.ResponseWriter, status int, msg string) {
	write(w, status, map[string]string{"message": msg})
}

// Error resolves err through the apperr taxonomy and sends the mapped
// status with the client-safe message.
func Error(w http.ResponseWriter, err error) {
	Message(w, apperr.Status(err), apperr.Message(err))
}

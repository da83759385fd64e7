// Package bind decodes a JSON request body into a struct and validates it.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shashiranjanraj/aabhushan/config"
	"github.com/shashiranjanraj/aabhushan/pkg/validate"
)

// JSON decodes r.Body into dest and runs struct-tag validation. The body is
// capped at config.MaxBodyBytes to bound memory per request.
//
// Validation failures come back as (errs, nil); a malformed or oversized
// body comes back as (nil, err).
func JSON(r *http.Request, dest interface{}) (map[string]string, error) {
	limit := config.MaxBodyBytes()
	r.Body = http.MaxBytesReader(nil, r.Body, limit)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("request body exceeds %d bytes", limit)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}

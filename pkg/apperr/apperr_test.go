package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Status(Validation("bad input")))
	assert.Equal(t, http.StatusBadRequest, Status(Conflict("already there")))
	assert.Equal(t, http.StatusUnauthorized, Status(Auth("nope")))
	assert.Equal(t, http.StatusNotFound, Status(NotFound("missing")))
	assert.Equal(t, http.StatusInternalServerError, Status(errors.New("db exploded")))
}

func TestStatusSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("service: %w", NotFound("Product not found"))
	assert.Equal(t, http.StatusNotFound, Status(err))
	assert.Equal(t, "Product not found", Message(err))
}

func TestMessageHidesInternals(t *testing.T) {
	assert.Equal(t, "Invalid credentials", Message(Auth("Invalid credentials")))
	assert.Equal(t, "Server error", Message(errors.New("pq: connection refused")))
}

func TestErrorsIsMatchesKind(t *testing.T) {
	err := Validation("x")
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrNotFound)
}

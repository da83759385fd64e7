package bind

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/aabhushan/config"
)

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func jsonRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestJSONDecodesValidBody(t *testing.T) {
	var form loginForm
	errs, err := JSON(jsonRequest(`{"email":"demo@aabhushan.local","password":"secret"}`), &form)

	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "demo@aabhushan.local", form.Email)
	assert.Equal(t, "secret", form.Password)
}

func TestJSONReturnsValidationErrors(t *testing.T) {
	var form loginForm
	errs, err := JSON(jsonRequest(`{"email":"not-an-email"}`), &form)

	require.NoError(t, err)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
}

func TestJSONRejectsMalformedBody(t *testing.T) {
	var form loginForm
	_, err := JSON(jsonRequest(`{"email":`), &form)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestJSONRejectsOversizedBody(t *testing.T) {
	config.Set("MAX_BODY_BYTES", "16")
	t.Cleanup(func() { config.Set("MAX_BODY_BYTES", strconv.Itoa(4<<20)) })

	var form loginForm
	_, err := JSON(jsonRequest(`{"email":"demo@aabhushan.local","password":"secret"}`), &form)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 16 bytes")
}

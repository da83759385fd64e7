package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/aabhushan/app/services"
	"github.com/shashiranjanraj/aabhushan/pkg/bind"
	"github.com/shashiranjanraj/aabhushan/pkg/response"
	"github.com/shashiranjanraj/aabhushan/pkg/validate"
)

// AuthController exposes signup and login over HTTP.
type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Signup registers a new account. POST /api/auth/signup
func (c *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	var in services.Credentials
	errs, err := bind.JSON(r, &in)
	if err != nil || validate.HasErrors(errs) {
		response.Message(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	if err := c.service.Signup(in); err != nil {
		response.Error(w, err)
		return
	}

	response.Message(w, http.StatusCreated, "User registered successfully")
}

// Login verifies credentials and returns a bearer token. POST /api/auth/login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in services.Credentials
	// Malformed bodies fall through with empty credentials and fail the
	// same way as wrong ones.
	bind.JSON(r, &in) //nolint:errcheck

	token, err := c.service.Login(in)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"token": token})
}

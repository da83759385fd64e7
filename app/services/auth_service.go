package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/aabhushan/app/models"
	"github.com/shashiranjanraj/aabhushan/app/repositories"
	"github.com/shashiranjanraj/aabhushan/pkg/apperr"
	"github.com/shashiranjanraj/aabhushan/pkg/auth"
	"github.com/shashiranjanraj/aabhushan/pkg/event"
	"github.com/shashiranjanraj/aabhushan/pkg/metrics"
	"github.com/shashiranjanraj/aabhushan/pkg/validate"
)

// Credentials is the body of both auth endpoints.
type Credentials struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthService registers accounts and issues bearer tokens.
type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(users *repositories.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Signup registers a new account. The email must be well formed and unused;
// the password is stored as a bcrypt hash. No token is issued here.
func (s *AuthService) Signup(in Credentials) error {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return apperr.Validation("Email and password are required")
	}

	exists, err := s.users.ExistsByEmail(in.Email)
	if err != nil {
		return fmt.Errorf("auth: check email: %w", err)
	}
	if exists {
		metrics.AuthAttempts.WithLabelValues("signup", "failure").Inc()
		return apperr.Conflict("User already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}

	user := models.User{Email: in.Email, Password: hash}
	if err := s.users.Create(&user); err != nil {
		return fmt.Errorf("auth: create user: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("signup", "success").Inc()
	event.FireAsync(event.UserSignedUp, user.Email)
	return nil
}

// Login verifies credentials and returns a signed token. An unknown email
// and a wrong password are indistinguishable to the caller so accounts
// cannot be enumerated.
func (s *AuthService) Login(in Credentials) (string, error) {
	user, err := s.users.FindByEmail(in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
			return "", apperr.Auth("Invalid credentials")
		}
		return "", fmt.Errorf("auth: find user: %w", err)
	}

	if !auth.CheckPassword(user.Password, in.Password) {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		return "", apperr.Auth("Invalid credentials")
	}

	token, err := auth.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	return token, nil
}

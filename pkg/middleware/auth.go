package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/aabhushan/pkg/auth"
	"github.com/shashiranjanraj/aabhushan/pkg/response"
)

type claimsKey struct{}

// Auth gates a route behind bearer-token verification. It fails closed:
// a missing, malformed, or expired token rejects the request with 401
// before the handler runs. On success the verified claims are stored in
// the request context.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == "" {
			response.Message(w, http.StatusUnauthorized, "No token, authorization denied")
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			response.Message(w, http.StatusUnauthorized, "Token is not valid")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromCtx returns the verified token claims stored by Auth, or nil.
func ClaimsFromCtx(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return c
}

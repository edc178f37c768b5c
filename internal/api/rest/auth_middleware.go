package rest

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	domainerrors "github.com/breachradar/breach-risk-backend/internal/domain/errors"
)

// authMiddleware validates bearer tokens signed with the configured secret.
// It is only installed when a JWT secret is configured.
func authMiddleware(secret string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, r, domainerrors.NewUnauthorizedError("missing authorization header"))
				return
			}

			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeError(w, r, domainerrors.NewUnauthorizedError("authorization header must use Bearer scheme"))
				return
			}

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, domainerrors.NewUnauthorizedError("unexpected signing method")
				}
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
			if err != nil || !token.Valid {
				writeError(w, r, domainerrors.NewUnauthorizedError("invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"net/http"
	"strings"

	"autoroom/internal/constant"
	"autoroom/internal/handler/auth"

	"go.uber.org/zap"
)

const tokenCookie = "token"

// AuthMiddleware — middleware for JWT authentication. The token comes from
// "Authorization: Bearer" or, failing that, the token cookie.
func AuthMiddleware(tm auth.TokenManager, log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if cookie, err := r.Cookie(tokenCookie); err == nil {
					token = cookie.Value
				}
			}

			if token == "" {
				log.Debug("Authorization token required", zap.String("path", r.URL.Path))
				http.Error(w, "Authorization token required", http.StatusUnauthorized)
				return
			}

			operator, err := tm.Validate(token)
			if err != nil {
				log.Warn("Invalid token", zap.String("path", r.URL.Path), zap.Error(err))
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(constant.SetOperator(r.Context(), operator)))
		},
	)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

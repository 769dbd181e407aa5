package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// APIKeyMiddleware guards routes with a shared key passed as the
// apiKey query parameter. An empty configured key disables the check
// (mock mode).
func APIKeyMiddleware(expected string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expected != "" && r.URL.Query().Get("apiKey") != expected {
				logger.Debug("API key rejected",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				RespondWithError(w, http.StatusUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

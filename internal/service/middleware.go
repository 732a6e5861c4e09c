package service

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/orionfin/orion/backend/internal/logger"
)

// WithRequestLogger attaches the logger to every request's context, so
// handlers retrieve it with logger.FromContext.
func WithRequestLogger(log zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), log)))
	})
}

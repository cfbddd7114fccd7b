package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// Gate: проверка доступа к админке (см. auth.Authenticator.RequireAuth).
type Gate interface {
	RequireAuth(next http.Handler) http.Handler
}

// AdminOnly: мидлварь для chi, g.Use(middleware.AdminOnly(gate)).
func AdminOnly(gate Gate) func(http.Handler) http.Handler {
	return gate.RequireAuth
}

// AdminOnlyFunc: обёртка для отдельных хендлеров:
// r.Get("/path", middleware.AdminOnlyFunc(gate, handler)).
func AdminOnlyFunc(gate Gate, next http.HandlerFunc) http.HandlerFunc {
	return gate.RequireAuth(next).ServeHTTP
}

// RequestLogger пишет одну строку zap на запрос.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				log.Info("http request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("remote_addr", r.RemoteAddr),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// RateLimit ограничивает число запросов с одного IP в минуту; 0 отключает лимит.
func RateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(requestsPerMinute, time.Minute)
}

package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// CORSMiddleware lets the admin console origins call the API. Development
// accepts any origin.
func CORSMiddleware(allowedOrigins []string, isDevelopment bool) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if isDevelopment {
		options.AllowOriginFunc = func(r *http.Request, origin string) bool { return true }
	}
	return cors.Handler(options)
}

// DefaultMiddlewareStack returns the middleware applied to every route.
// Forwarded client addresses are honored only when trustProxy is set.
func DefaultMiddlewareStack(trustProxy bool) []func(http.Handler) http.Handler {
	stack := []func(http.Handler) http.Handler{middleware.RequestID}
	if trustProxy {
		stack = append(stack, middleware.RealIP)
	}
	return append(stack,
		middleware.Compress(5),
		middleware.Timeout(30*time.Second),
	)
}

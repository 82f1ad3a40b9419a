// Package coursgen собирает HTTP-приложение: зависимости, маршруты и сервер.
package coursgen

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/coursgen/coursgen/internal/http/handlers/auth/google"
	"github.com/coursgen/coursgen/internal/http/handlers/auth/login"
	"github.com/coursgen/coursgen/internal/http/handlers/auth/logout"
	"github.com/coursgen/coursgen/internal/http/handlers/auth/register"
	"github.com/coursgen/coursgen/internal/http/handlers/auth/reset"
	"github.com/coursgen/coursgen/internal/http/handlers/course/generate"
	"github.com/coursgen/coursgen/internal/http/handlers/files/download"
	"github.com/coursgen/coursgen/internal/http/handlers/files/list"
	"github.com/coursgen/coursgen/internal/http/handlers/files/remove"
	"github.com/coursgen/coursgen/internal/http/handlers/health"
	"github.com/coursgen/coursgen/internal/http/handlers/session/refresh"
	"github.com/coursgen/coursgen/internal/http/handlers/session/show"
	"github.com/coursgen/coursgen/internal/http/handlers/session/view"
	"github.com/coursgen/coursgen/internal/http/middlewarectx"
	"github.com/coursgen/coursgen/internal/lib/jwt"
	sessionservice "github.com/coursgen/coursgen/internal/services/session"
	"github.com/coursgen/coursgen/internal/sessionstore"
	"github.com/coursgen/coursgen/internal/storage"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, service *sessionservice.Service, ledger *storage.Storage, store *sessionstore.Store, verifier jwt.Verifier) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, service).ServeHTTP)
		r.Post("/auth/login", login.New(logger, service).ServeHTTP)
		r.Get("/auth/google", google.New(logger, service).ServeHTTP)
		r.Post("/auth/reset", reset.New(logger, service).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(verifier, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/auth/logout", logout.New(logger, service).ServeHTTP)
			r.Get("/session", show.New(logger, service).ServeHTTP)
			r.Post("/session/refresh", refresh.New(logger, service).ServeHTTP)
			r.Post("/session/view", view.New(logger, service).ServeHTTP)
			r.Post("/courses/generate", generate.New(logger, service).ServeHTTP)
			r.Get("/files", list.New(logger, service).ServeHTTP)
			r.Get("/files/{id}/download", download.New(logger, service).ServeHTTP)
			r.Delete("/files/{id}", remove.New(logger, service).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, ledger, store).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

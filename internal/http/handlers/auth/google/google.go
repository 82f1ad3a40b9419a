// Package google реализует HTTP-обработчик начала OAuth-входа через Google.
package google

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/coursgen/coursgen/internal/http/response"
)

// Handler обрабатывает запрос на получение адреса OAuth-редиректа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс получения адреса авторизации.
type Service interface {
	GoogleAuth() string
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Вход через Google
// @Description Возвращает адрес OAuth-авторизации. Пользователь в ответе отсутствует:
// @Description успех входа наблюдается только после редиректа провайдера.
// @Tags Auth
// @Produce  json
// @Success 200 {object} map[string]any "Адрес авторизации"
// @Router /auth/google [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.google"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	url := h.service.GoogleAuth()

	log.Info("authorize url issued")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"url": url,
	}))
}

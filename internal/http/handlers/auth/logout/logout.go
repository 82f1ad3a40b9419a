// Package logout реализует HTTP-обработчик выхода из сессии.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/coursgen/coursgen/internal/http/middlewarectx"
	"github.com/coursgen/coursgen/internal/http/response"
	"github.com/coursgen/coursgen/internal/lib/sl"
)

// Handler обрабатывает запрос выхода из сессии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс операции выхода сессионного контроллера.
type Service interface {
	Logout(ctx context.Context, uid, accessToken string) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выход из сессии
// @Description Выходит у identity-провайдера и очищает снимок сессии.
// @Description Повторный вызов приводит к тому же конечному состоянию.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Выход выполнен"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || uid == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	accessToken, _ := r.Context().Value(middlewarectx.AccessToken).(string)

	if err := h.service.Logout(r.Context(), uid, accessToken); err != nil {
		log.Error("logout failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to log out"))
		return
	}

	log.Info("logout success", slog.String("uid", uid))
	render.JSON(w, r, response.OK())
}

// Package refresh реализует HTTP-обработчик принудительного обновления данных пользователя.
package refresh

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/coursgen/coursgen/internal/http/middlewarectx"
	"github.com/coursgen/coursgen/internal/http/response"
	"github.com/coursgen/coursgen/internal/lib/sl"
	"github.com/coursgen/coursgen/internal/models"
)

// Handler обрабатывает запрос обновления данных пользователя из леджера.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс обновления данных пользователя.
type Service interface {
	RefreshUserData(ctx context.Context, uid string) (*models.User, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Обновление данных пользователя
// @Description Перечитывает тариф и баланс из леджера кредитов и возвращает
// @Description замещённого пользователя. Без активной сессии возвращает null.
// @Tags Session
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Обновлённый пользователь"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 500 {object} response.ErrorResponse "Ошибка леджера"
// @Router /session/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.refresh"

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

	user, err := h.service.RefreshUserData(r.Context(), uid)
	if err != nil {
		log.Error("refresh failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to refresh user data"))
		return
	}

	log.Info("user data refreshed", slog.String("uid", uid))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": user,
	}))
}

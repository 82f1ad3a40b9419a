// Package show реализует HTTP-обработчик восстановления сессии на холодном старте.
package show

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/coursgen/coursgen/internal/http/middlewarectx"
	"github.com/coursgen/coursgen/internal/http/response"
	"github.com/coursgen/coursgen/internal/services/session"
)

// Handler обрабатывает запрос текущего состояния сессии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс восстановления сессии.
type Service interface {
	Bootstrap(ctx context.Context, uid string) session.Snapshot
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Текущее состояние сессии
// @Description Восстанавливает сессию из хранилища снимков. Повреждённый снимок
// @Description трактуется как отсутствующая сессия, ошибки при этом не возникает.
// @Tags Session
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Снимок сессии"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Router /session [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.show"

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

	snap := h.service.Bootstrap(r.Context(), uid)

	log.Info("session restored", slog.String("uid", uid), slog.String("view", string(snap.View)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"view":  snap.View,
		"user":  snap.User,
		"files": snap.Files,
	}))
}

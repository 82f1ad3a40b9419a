// Package list реализует HTTP-обработчик списка сгенерированных документов.
package list

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

// Handler обрабатывает запрос списка документов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения состояния сессии.
type Service interface {
	Snapshot(ctx context.Context, uid string) session.Snapshot
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список сгенерированных документов
// @Description Возвращает документы текущей сессии, новые пары стоят первыми.
// @Tags Files
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Список документов"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Router /files [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.files.list"

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

	snap := h.service.Snapshot(r.Context(), uid)

	log.Info("files listed", slog.String("uid", uid), slog.Int("count", len(snap.Files)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"files_count": len(snap.Files),
		"files":       snap.Files,
	}))
}

// Package download реализует HTTP-обработчик скачивания сгенерированного документа.
package download

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/coursgen/coursgen/internal/http/middlewarectx"
	"github.com/coursgen/coursgen/internal/http/response"
	"github.com/coursgen/coursgen/internal/lib/sl"
	"github.com/coursgen/coursgen/internal/models"
	"github.com/coursgen/coursgen/internal/services/session"
)

// Handler обрабатывает запрос скачивания документа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс получения готового документа.
type Service interface {
	Download(ctx context.Context, uid, fileID string) (*models.GeneratedFile, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Скачивание документа
// @Description Возвращает ссылку на документ, только если его статус ready.
// @Tags Files
// @Produce  json
// @Security BearerAuth
// @Param id path string true "Идентификатор документа"
// @Success 200 {object} map[string]any "Документ со ссылкой для скачивания"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 404 {object} response.ErrorResponse "Документ не найден"
// @Failure 409 {object} response.ErrorResponse "Документ ещё не готов"
// @Router /files/{id}/download [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.files.download"

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

	fileID := chi.URLParam(r, "id")

	file, err := h.service.Download(r.Context(), uid, fileID)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrFileNotFound):
			log.Info("file not found", slog.String("file_id", fileID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, session.ErrFileNotReady):
			log.Info("file not ready", slog.String("file_id", fileID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			log.Error("download failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to download file"))
		}
		return
	}

	log.Info("file download issued", slog.String("file_id", file.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"file": file,
	}))
}

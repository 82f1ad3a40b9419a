// Package remove реализует HTTP-обработчик удаления сгенерированного документа.
package remove

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
	"github.com/coursgen/coursgen/internal/services/session"
)

// Handler обрабатывает запрос удаления документа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс удаления документа.
type Service interface {
	Delete(ctx context.Context, uid, fileID string, confirmed bool) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удаление документа
// @Description Удаляет документ из списка после явного подтверждения (?confirm=true).
// @Description Удаление несуществующего идентификатора проходит без ошибки.
// @Tags Files
// @Produce  json
// @Security BearerAuth
// @Param id path string true "Идентификатор документа"
// @Param confirm query bool true "Подтверждение удаления"
// @Success 200 {object} response.Response "Удаление выполнено"
// @Failure 400 {object} response.ErrorResponse "Нет подтверждения"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 500 {object} response.ErrorResponse "Ошибка хранилища снимков"
// @Router /files/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.files.remove"

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
	confirmed := r.URL.Query().Get("confirm") == "true"

	if err := h.service.Delete(r.Context(), uid, fileID, confirmed); err != nil {
		if errors.Is(err, session.ErrConfirmationRequired) {
			log.Info("deletion rejected, confirmation missing", slog.String("file_id", fileID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		log.Error("failed to delete file", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to delete file"))
		return
	}

	log.Info("file deleted", slog.String("uid", uid), slog.String("file_id", fileID))
	render.JSON(w, r, response.OK())
}

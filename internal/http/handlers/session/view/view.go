// Package view реализует HTTP-обработчик перехода сессии между экранами.
//
// Переход на экран генератора или дашборда немедленно освежает тариф
// и баланс пользователя из леджера кредитов.
package view

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/coursgen/coursgen/internal/http/middlewarectx"
	"github.com/coursgen/coursgen/internal/http/response"
	"github.com/coursgen/coursgen/internal/lib/sl"
	"github.com/coursgen/coursgen/internal/services/session"
)

// Request — структура входных данных перехода на экран.
type Request struct {
	View string `json:"view" validate:"required,oneof=generator dashboard"`
}

// Handler обрабатывает запрос перехода на экран.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс перехода между экранами сессии.
type Service interface {
	EnterView(ctx context.Context, uid string, view session.View) (session.Snapshot, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Переход на экран генератора или дашборда
// @Description Переводит сессию на указанный экран и немедленно освежает
// @Description тариф и баланс из леджера кредитов.
// @Tags Session
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Целевой экран"
// @Success 200 {object} map[string]any "Снимок сессии после перехода"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Нет токена или сессии"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка леджера"
// @Router /session/view [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.view"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			render.JSON(w, r, response.ValidationError(validationErrs))
			return
		}
		render.JSON(w, r, response.Error("invalid request"))
		return
	}

	snap, err := h.service.EnterView(r.Context(), uid, session.View(req.View))
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			log.Info("view transition rejected, no session")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		log.Error("view transition failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to enter view"))
		return
	}

	log.Info("view entered", slog.String("uid", uid), slog.String("view", string(snap.View)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"view":  snap.View,
		"user":  snap.User,
		"files": snap.Files,
	}))
}

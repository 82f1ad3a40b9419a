// Package reset реализует HTTP-обработчик запроса восстановления пароля.
package reset

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/coursgen/coursgen/internal/http/response"
	"github.com/coursgen/coursgen/internal/lib/sl"
)

// Request — структура входных данных для восстановления пароля.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// Handler обрабатывает запрос восстановления пароля.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс запроса письма восстановления.
type Service interface {
	ResetPassword(ctx context.Context, email string) error
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
// @Summary Восстановление пароля
// @Description Запрашивает у identity-провайдера письмо со ссылкой восстановления.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Почта пользователя"
// @Success 200 {object} response.Response "Письмо отправлено"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /auth/reset [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.reset"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	if err := h.service.ResetPassword(r.Context(), req.Email); err != nil {
		log.Error("password reset failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	log.Info("password reset email requested", slog.String("email", req.Email))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "password reset email sent",
	}))
}

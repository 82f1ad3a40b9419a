// Package login реализует HTTP-обработчик для запросов аутентификации пользователей.
//
// В нём определяется структура Request для входных данных, выполняется декодирование JSON,
// проверка и валидация полей, а также делегирование операции входа сессионному контроллеру.
// При успешной аутентификации возвращается JSON с токенами и данными пользователя;
// в случае ошибок формируются соответствующие HTTP-ответы.
package login

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
	"github.com/coursgen/coursgen/internal/services/session"
)

// Request — структура входных данных для авторизации.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сессионный контроллер
	validate *validator.Validate // Валидатор для проверки входных данных
}

// Service описывает интерфейс операции входа сессионного контроллера.
type Service interface {
	Login(ctx context.Context, email, password string) (*session.LoginResult, error)
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
// @Summary Авторизация пользователя
// @Description Аутентифицирует пользователя через identity-провайдера и собирает
// @Description профиль из леджера кредитов. Возвращает access и refresh токены.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} map[string]any "Успешная авторизация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 403 {object} response.ErrorResponse "Почта не подтверждена"
// @Failure 409 {object} response.ErrorResponse "Вход уже выполняется"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrEmailNotConfirmed):
			log.Info("login rejected, email not confirmed")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, session.ErrLoginInFlight):
			log.Info("login rejected, another attempt in flight")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			// Текст ошибки identity-провайдера показывается как есть
			log.Error("login failed", sl.Err(err))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error(err.Error()))
		}
		return
	}

	log.Info("login success", slog.String("uid", result.User.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token":         result.AccessToken,
		"refresh_token": result.RefreshToken,
		"user":          result.User,
	}))
}

// Package generate реализует HTTP-обработчик платной генерации курса.
//
// Обработчик декодирует форму курса, валидирует формат по списку допустимых
// значений и делегирует протокол генерации сессионному контроллеру. Ошибки
// бизнес-правил отображаются в коды статусов: нехватка кредитов — 402,
// запрещённый формат — 403, уже идущая генерация — 409.
package generate

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
	"github.com/coursgen/coursgen/internal/models"
	"github.com/coursgen/coursgen/internal/services/session"
)

// Handler обрабатывает запрос генерации курса.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс протокола генерации.
type Service interface {
	Generate(ctx context.Context, uid, accessToken string, form models.CourseRequest) ([]models.GeneratedFile, error)
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
// @Summary Генерация материалов курса
// @Description Выполняет протокол платной генерации: проверка баланса по таблице
// @Description стоимости, вызов внешнего backend и вставка пары документов
// @Description (powerpoint + word) в начало списка.
// @Tags Courses
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.CourseRequest true "Параметры курса"
// @Success 200 {object} map[string]any "Пара сгенерированных документов"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 402 {object} response.ErrorResponse "Недостаточно кредитов"
// @Failure 403 {object} response.ErrorResponse "Формат недоступен на тарифе"
// @Failure 409 {object} response.ErrorResponse "Генерация уже выполняется"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Ошибка backend генерации"
// @Router /courses/generate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.generate"

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

	var form models.CourseRequest
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(form); err != nil {
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

	files, err := h.service.Generate(r.Context(), uid, accessToken, form)
	if err != nil {
		var insufficient *session.InsufficientCreditsError
		switch {
		case errors.Is(err, session.ErrNotAuthenticated):
			log.Info("generation rejected, no session")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, session.ErrGenerationInProgress):
			log.Info("generation rejected, another one in progress")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, session.ErrFormatNotAllowed):
			log.Info("generation rejected, format not allowed on plan")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.As(err, &insufficient):
			log.Info("generation rejected, insufficient credits",
				slog.Int("cost", insufficient.Cost), slog.Int("balance", insufficient.Balance))
			w.WriteHeader(http.StatusPaymentRequired)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, session.ErrUnknownCourseFormat):
			log.Error("unknown course format", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			log.Error("generation failed", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("generation failed"))
		}
		return
	}

	log.Info("generation success", slog.String("uid", uid), slog.Int("files", len(files)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"files": files,
	}))
}

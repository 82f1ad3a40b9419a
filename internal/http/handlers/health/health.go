// Package health реализует HTTP-обработчик проверки готовности сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/coursgen/coursgen/internal/http/response"
	"github.com/coursgen/coursgen/internal/lib/sl"
)

// Handler обрабатывает запрос проверки готовности.
type Handler struct {
	log      *slog.Logger
	ledger   Ledger
	sessions SessionStore
}

// Ledger описывает интерфейс проверки готовности леджера кредитов.
type Ledger interface {
	CheckDatabaseReady(ctx context.Context) error
}

// SessionStore описывает интерфейс проверки готовности хранилища сессий.
type SessionStore interface {
	CheckReady(ctx context.Context) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, ledger Ledger, sessions SessionStore) *Handler {
	return &Handler{
		log:      log,
		ledger:   ledger,
		sessions: sessions,
	}
}

// ServeHTTP godoc
// @Summary Проверка готовности
// @Description Проверяет доступность базы леджера кредитов и хранилища сессий.
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response "Сервис готов"
// @Failure 503 {object} response.ErrorResponse "Зависимость недоступна"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	if err := h.ledger.CheckDatabaseReady(r.Context()); err != nil {
		h.log.Error("database is not ready", slog.String("op", op), sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("database is not ready"))
		return
	}

	if err := h.sessions.CheckReady(r.Context()); err != nil {
		h.log.Error("session store is not ready", slog.String("op", op), sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("session store is not ready"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": "ok",
	}))
}

// Package session содержит бизнес-логику сессионного контроллера:
// согласование состояния аутентификации, баланса кредитов и списка
// сгенерированных документов.
package session

import (
	"errors"
	"fmt"

	"github.com/coursgen/coursgen/internal/models"
)

// Стоимость генерации по формату курса. Таблица не персистится,
// стоимость вычисляется заново на каждый запрос.
const (
	CourseFormatCourt         = "court"
	CourseFormatIntermediaire = "intermediaire"
	CourseFormatLong          = "long"
)

// Ошибки бизнес-правил контроллера.
var (
	// ErrNotAuthenticated возвращается операциями, требующими пользователя.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrEmailNotConfirmed жёсткий гейт входа: почта не подтверждена.
	ErrEmailNotConfirmed = errors.New("please verify your email before signing in")
	// ErrLoginInFlight попытка входа, пока предыдущая ещё выполняется.
	ErrLoginInFlight = errors.New("login already in progress")
	// ErrGenerationInProgress у пользователя уже выполняется генерация.
	ErrGenerationInProgress = errors.New("generation already in progress")
	// ErrUnknownCourseFormat формат курса вне таблицы стоимости.
	ErrUnknownCourseFormat = errors.New("unknown course format")
	// ErrFormatNotAllowed тариф free допускает только формат court.
	ErrFormatNotAllowed = errors.New("course format not allowed on free plan, only 'court' is available")
	// ErrFileNotFound документ с таким идентификатором отсутствует.
	ErrFileNotFound = errors.New("file not found")
	// ErrFileNotReady документ ещё не готов к скачиванию.
	ErrFileNotReady = errors.New("file is not ready for download")
	// ErrConfirmationRequired удаление требует явного подтверждения.
	ErrConfirmationRequired = errors.New("deletion requires confirmation")
)

// InsufficientCreditsError отказ по балансу с числовой нехваткой в сообщении.
type InsufficientCreditsError struct {
	Cost    int // Стоимость запрошенной генерации
	Balance int // Доступный остаток на момент проверки
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: generation costs %d, available %d", e.Cost, e.Balance)
}

// CreditCost возвращает стоимость генерации для формата курса.
func CreditCost(courseFormat string) (int, error) {
	switch courseFormat {
	case CourseFormatCourt:
		return 1, nil
	case CourseFormatIntermediaire:
		return 2, nil
	case CourseFormatLong:
		return 3, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCourseFormat, courseFormat)
	}
}

// checkCreditGate применяет бизнес-правила списания до обращения к backend:
// тариф free допускает только самый дешёвый формат и требует хотя бы 1 кредит,
// тариф premium требует баланс не меньше стоимости.
func checkCreditGate(plan string, balance, cost int, courseFormat string) error {
	if plan == models.PlanFree {
		if courseFormat != CourseFormatCourt {
			return ErrFormatNotAllowed
		}
		if balance < 1 {
			return &InsufficientCreditsError{Cost: cost, Balance: balance}
		}
		return nil
	}
	if balance < cost {
		return &InsufficientCreditsError{Cost: cost, Balance: balance}
	}
	return nil
}

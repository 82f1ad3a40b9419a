// Package sl содержит вспомогательные функции для работы с логгером slog,
// в первую очередь для единообразной передачи ошибок в структурированные поля лога.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to refresh user data", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Package models содержит доменные структуры сгенерированных документов
// и вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Типы сгенерированных документов.
const (
	FileTypePowerpoint = "powerpoint"
	FileTypeWord       = "word"
)

// Статусы сгенерированного документа.
const (
	FileStatusGenerating = "generating"
	FileStatusReady      = "ready"
	FileStatusError      = "error"
)

// PlaceholderFileURL подставляется вместо ссылки,
// когда backend генерации не вернул адрес документа.
const PlaceholderFileURL = "#"

// GeneratedFile представляет ссылку на один сгенерированный документ.
//
// CreatedAt сериализуется в строку ISO при записи снимка сессии
// и обязан восстанавливаться в time.Time при чтении.
type GeneratedFile struct {
	ID        string    `json:"id"`        // Локальный идентификатор на основе времени создания
	Title     string    `json:"title"`     // Название документа
	CreatedAt time.Time `json:"createdAt"` // Время создания
	Type      string    `json:"type"`      // powerpoint или word
	FileURL   string    `json:"fileUrl"`   // Ссылка на документ, "#" если недоступна
	Status    string    `json:"status"`    // generating, ready или error
}

// CourseRequest используется для приёма параметров курса из JSON-запроса.
// Формат курса валидируется по списку допустимых значений.
type CourseRequest struct {
	ModuleTitle  string `json:"module_title" validate:"required"`                              // Название модуля
	StudentLevel string `json:"student_level" validate:"required"`                             // Уровень студентов
	Chapters     string `json:"chapters" validate:"required"`                                  // Список глав
	Duration     string `json:"duration" validate:"required"`                                  // Длительность курса
	CourseFormat string `json:"course_format" validate:"required,oneof=court intermediaire long"` // Формат курса
	Email        string `json:"email" validate:"required,email"`                               // Почта для уведомления
}

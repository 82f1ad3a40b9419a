package models

// CourseReadyEvent публикуется после успешной генерации курса
// и потребляется сервисом почтовых уведомлений.
type CourseReadyEvent struct {
	Email       string          `json:"email"`        // Почта получателя из формы курса
	CourseTitle string          `json:"course_title"` // Название модуля курса
	Files       []GeneratedFile `json:"files"`        // Пара сгенерированных документов
}

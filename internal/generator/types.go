// Package generator содержит клиент внешнего webhook генерации документов.
package generator

// GenerateRequest тело запроса к webhook генерации.
type GenerateRequest struct {
	Title    string `json:"title"`
	Level    string `json:"level"`
	Chapters string `json:"chapters"`
	Duration string `json:"duration"`
	Format   string `json:"format"`
	Email    string `json:"email"`
	UserID   string `json:"user_id"`
	Token    string `json:"token"`
}

// GenerateResponse ответ webhook: ссылки на оба документа опциональны,
// отсутствие ссылки означает подстановку заглушки на стороне контроллера.
type GenerateResponse struct {
	PptxURL string `json:"pptx_url"`
	DocxURL string `json:"docx_url"`
}

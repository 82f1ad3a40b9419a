// Package models содержит доменную модель пользователя сервиса генерации курсов,
// включающую данные учётной записи, тариф и остаток кредитов генерации.
// Структуры используются в бизнес‑логике, сессионном хранилище и при работе с леджером.
package models

// Возможные тарифы пользователя.
const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// Возможные способы входа.
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

// User представляет аутентифицированного пользователя сервиса.
//
// CreditBalance равен nil, пока баланс ни разу не был прочитан из леджера.
// Контроллер никогда не вычисляет баланс локально, только перечитывает его.
type User struct {
	ID              string `json:"id"`                 // Идентификатор в identity-провайдере
	Email           string `json:"email"`              // Электронная почта
	Name            string `json:"name"`               // Имя
	Lastname        string `json:"lastname"`           // Фамилия
	Avatar          string `json:"avatar,omitempty"`   // Ссылка на аватар (опционально)
	Provider        string `json:"provider,omitempty"` // Способ входа: email или google
	Plan            string `json:"plan"`               // Тариф: free или premium
	CreditBalance   *int   `json:"credit_balance,omitempty"`
	GenerationCount int    `json:"generation_count"` // Количество генераций, только растёт
}

// Profile представляет проекцию строки леджера кредитов для пользователя.
type Profile struct {
	UserID          string // Идентификатор пользователя в identity-провайдере
	FirstName       string // Имя из леджера
	LastName        string // Фамилия из леджера
	Plan            string // Тариф: free или premium
	CreditBalance   int    // Остаток кредитов генерации, неотрицательный
	GenerationCount int    // Счётчик выполненных генераций
}

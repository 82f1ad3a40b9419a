// Package identity содержит клиент внешнего identity-провайдера и его типы данных.
package identity

// Principal представляет учётную запись, как её видит identity-провайдер.
type Principal struct {
	ID             string // Идентификатор учётной записи
	Email          string // Электронная почта
	EmailConfirmed bool   // Подтверждена ли почта
	Name           string // Имя из метаданных регистрации
	Lastname       string // Фамилия из метаданных регистрации
	Avatar         string // Ссылка на аватар, если провайдер её дал
	Provider       string // Способ входа: email или google
}

// Session представляет выданную провайдером сессию.
type Session struct {
	AccessToken  string
	RefreshToken string
	Principal    Principal
}

// Ответ провайдера на password-grant и signup.
type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         userResponse `json:"user"`
}

type userResponse struct {
	ID               string       `json:"id"`
	Email            string       `json:"email"`
	EmailConfirmedAt string       `json:"email_confirmed_at"`
	UserMetadata     userMetadata `json:"user_metadata"`
	AppMetadata      appMetadata  `json:"app_metadata"`
}

type userMetadata struct {
	Name      string `json:"name"`
	Lastname  string `json:"lastname"`
	AvatarURL string `json:"avatar_url"`
}

type appMetadata struct {
	Provider string `json:"provider"`
}

// errorResponse описывает тело ошибки провайдера; сообщение встречается
// в двух вариантах полей в зависимости от конечной точки.
type errorResponse struct {
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

func (e errorResponse) message() string {
	if e.ErrorDescription != "" {
		return e.ErrorDescription
	}
	return e.Msg
}

// Package jwt реализует проверку access-токенов, выданных внешним identity-провайдером.
//
// Сервис сам токены не выпускает: он только валидирует подпись HS256 секретом проекта
// и извлекает из claims идентификатор пользователя и email.
package jwt

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier описывает интерфейс для проверки access-токена.
type Verifier interface {
	// VerifyToken возвращает *SessionClaims, если токен корректен.
	VerifyToken(tokenStr string) (*SessionClaims, error)
}

// SessionClaims описывает данные пользователя, хранящиеся в access-токене провайдера.
type SessionClaims struct {
	Email                string `json:"email"` // Электронная почта пользователя
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (Subject, ExpiresAt и пр.)
}

// VerifierImpl реализует интерфейс Verifier с использованием секретного ключа проекта.
type VerifierImpl struct {
	secretKey string // Секретный ключ подписи токенов identity-провайдера.
}

// NewVerifier создаёт новый экземпляр VerifierImpl на основе секретного ключа.
func NewVerifier(secretKey string) *VerifierImpl {
	return &VerifierImpl{secretKey: secretKey}
}

// VerifyToken парсит токен, проверяет подпись и срок действия,
// возвращает SessionClaims с данными, если токен корректен.
func (v *VerifierImpl) VerifyToken(tokenStr string) (*SessionClaims, error) {
	const op = "jwt.VerifyToken"
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(v.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: token has no subject", op)
	}
	return claims, nil
}

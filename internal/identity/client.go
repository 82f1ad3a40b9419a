package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coursgen/coursgen/internal/config"
)

// Client клиент REST API identity-провайдера.
type Client struct {
	baseURL     string
	anonKey     string
	redirectURL string
	httpClient  *http.Client
}

// NewClient создаёт новый клиент identity-провайдера.
func NewClient(cfg config.Identity) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		anonKey:     cfg.AnonKey,
		redirectURL: cfg.RedirectURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	reqURL := c.baseURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// decodeError вытаскивает текст ошибки провайдера, чтобы показать его пользователю дословно.
func decodeError(resp *http.Response) error {
	var errResp errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.message() != "" {
		return errors.New(errResp.message())
	}
	return errors.New("unexpected status: " + resp.Status)
}

func principalFromResponse(u userResponse) Principal {
	provider := u.AppMetadata.Provider
	if provider == "" {
		provider = "email"
	}
	return Principal{
		ID:             u.ID,
		Email:          u.Email,
		EmailConfirmed: u.EmailConfirmedAt != "",
		Name:           u.UserMetadata.Name,
		Lastname:       u.UserMetadata.Lastname,
		Avatar:         u.UserMetadata.AvatarURL,
		Provider:       provider,
	}
}

// SignIn выполняет вход по email и паролю и возвращает сессию провайдера.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return nil, decodeError(resp)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, err
	}
	return &Session{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		Principal:    principalFromResponse(tokenResp.User),
	}, nil
}

// SignUp регистрирует учётную запись; имя и фамилия уходят в метаданные.
// Провайдер отправляет письмо подтверждения, автологина нет.
func (c *Client) SignUp(ctx context.Context, email, password, name, lastname string) (*Principal, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/signup", map[string]any{
		"email":    email,
		"password": password,
		"data": map[string]string{
			"name":     name,
			"lastname": lastname,
		},
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var userResp userResponse
	if err := json.NewDecoder(resp.Body).Decode(&userResp); err != nil {
		return nil, err
	}
	principal := principalFromResponse(userResp)
	return &principal, nil
}

// AuthorizeURL возвращает адрес OAuth-редиректа для входа через внешнего провайдера.
// Результат входа контроллер увидит только на следующем Bootstrap после редиректа.
func (c *Client) AuthorizeURL(provider string) string {
	return fmt.Sprintf("%s/auth/v1/authorize?provider=%s&redirect_to=%s",
		c.baseURL, url.QueryEscape(provider), url.QueryEscape(c.redirectURL))
}

// SignOut инвалидирует сессию по access-токену.
// Ответ 401 считается успехом: сессии уже нет.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent &&
		resp.StatusCode != http.StatusUnauthorized {
		return errors.New("unexpected status: " + resp.Status)
	}
	return nil
}

// ResetPassword запрашивает у провайдера письмо восстановления пароля.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/recover", map[string]string{
		"email": email,
	})
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

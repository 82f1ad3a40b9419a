package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coursgen/coursgen/internal/config"
)

// Client клиент webhook генерации документов.
//
// Backend списывает кредит атомарно на каждый принятый запрос;
// локальная проверка баланса в контроллере только сужает окно гонки,
// авторитетная проверка живёт на стороне backend.
type Client struct {
	webhookURL string
	httpClient *http.Client
}

// NewClient создаёт новый клиент webhook генерации.
func NewClient(cfg config.Generator) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		webhookURL: cfg.WebhookURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Generate отправляет параметры курса на webhook и возвращает ссылки на документы.
// Любой не-2xx ответ является жёсткой ошибкой с общим сообщением.
func (c *Client) Generate(ctx context.Context, reqParams GenerateRequest) (*GenerateResponse, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqParams); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+reqParams.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errors.New("generation backend request failed: " + resp.Status)
	}

	var genResp GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, err
	}
	return &genResp, nil
}

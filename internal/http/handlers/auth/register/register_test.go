package register

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Register(ctx context.Context, name, lastname, email, password string) error {
	args := m.Called(ctx, name, lastname, email, password)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		mockErr        error
		mockCalled     bool
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:           "valid registration",
			requestBody:    Request{Name: "Marie", Lastname: "Dupont", Email: "new@coursgen.fr", Password: "password123"},
			mockCalled:     true,
			wantStatusCode: http.StatusCreated,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid request body",
		},
		{
			name:           "validation error - bad email",
			requestBody:    Request{Name: "Marie", Lastname: "Dupont", Email: "not-an-email", Password: "password123"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
			wantError:      "field Email must be a valid email address",
		},
		{
			name:           "ledger provisioning failure fails whole registration",
			requestBody:    Request{Name: "Marie", Lastname: "Dupont", Email: "new@coursgen.fr", Password: "password123"},
			mockCalled:     true,
			mockErr:        errors.New("session.Register: connection refused"),
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			if tt.mockCalled {
				req := tt.requestBody.(Request)
				serviceMock.On("Register", mock.Anything, req.Name, req.Lastname, req.Email, req.Password).
					Return(tt.mockErr).Once()
			}

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(bodyBytes))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp["status"])
			if tt.wantError != "" {
				assert.Contains(t, resp["error"].(string), tt.wantError)
			}

			serviceMock.AssertExpectations(t)
		})
	}
}

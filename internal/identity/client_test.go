package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursgen/coursgen/internal/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.Identity{
		BaseURL:     baseURL,
		AnonKey:     "anon-key",
		RedirectURL: "https://coursgen.fr/auth/callback",
		Timeout:     5 * time.Second,
	})
}

func TestSignIn_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "prof@coursgen.fr", body["email"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"access_token": "tok",
			"refresh_token": "ref",
			"user": {
				"id": "uid-1",
				"email": "prof@coursgen.fr",
				"email_confirmed_at": "2026-01-10T12:00:00Z",
				"user_metadata": {"name": "Marie", "lastname": "Dupont"},
				"app_metadata": {"provider": "email"}
			}
		}`))
	}))
	defer srv.Close()

	session, err := newTestClient(srv.URL).SignIn(context.Background(), "prof@coursgen.fr", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "tok", session.AccessToken)
	assert.Equal(t, "ref", session.RefreshToken)
	assert.Equal(t, "uid-1", session.Principal.ID)
	assert.True(t, session.Principal.EmailConfirmed)
	assert.Equal(t, "Marie", session.Principal.Name)
	assert.Equal(t, "email", session.Principal.Provider)
}

func TestSignIn_ProviderErrorSurfacedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_description": "Invalid login credentials"}`))
	}))
	defer srv.Close()

	session, err := newTestClient(srv.URL).SignIn(context.Background(), "prof@coursgen.fr", "wrong")
	require.Error(t, err)
	assert.Nil(t, session)
	assert.Equal(t, "Invalid login credentials", err.Error())
}

func TestSignIn_UnconfirmedEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"access_token": "tok",
			"refresh_token": "ref",
			"user": {"id": "uid-1", "email": "prof@coursgen.fr", "email_confirmed_at": ""}
		}`))
	}))
	defer srv.Close()

	session, err := newTestClient(srv.URL).SignIn(context.Background(), "prof@coursgen.fr", "secret123")
	require.NoError(t, err)
	assert.False(t, session.Principal.EmailConfirmed)
}

func TestSignUp_SendsMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)

		var body struct {
			Email string            `json:"email"`
			Data  map[string]string `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Marie", body.Data["name"])
		assert.Equal(t, "Dupont", body.Data["lastname"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "uid-2", "email": "new@coursgen.fr", "email_confirmed_at": ""}`))
	}))
	defer srv.Close()

	principal, err := newTestClient(srv.URL).SignUp(context.Background(), "new@coursgen.fr", "secret123", "Marie", "Dupont")
	require.NoError(t, err)
	assert.Equal(t, "uid-2", principal.ID)
	assert.False(t, principal.EmailConfirmed)
}

func TestSignUp_ErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"msg": "User already registered"}`))
	}))
	defer srv.Close()

	principal, err := newTestClient(srv.URL).SignUp(context.Background(), "new@coursgen.fr", "secret123", "Marie", "Dupont")
	require.Error(t, err)
	assert.Nil(t, principal)
	assert.Equal(t, "User already registered", err.Error())
}

func TestAuthorizeURL(t *testing.T) {
	client := newTestClient("https://project.supabase.co")

	got := client.AuthorizeURL("google")
	assert.Equal(t,
		"https://project.supabase.co/auth/v1/authorize?provider=google&redirect_to=https%3A%2F%2Fcoursgen.fr%2Fauth%2Fcallback",
		got)
}

func TestSignOut_AlreadySignedOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	// Повторный выход не должен быть ошибкой
	err := newTestClient(srv.URL).SignOut(context.Background(), "stale-token")
	assert.NoError(t, err)
}

func TestResetPassword(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).ResetPassword(context.Background(), "prof@coursgen.fr")
	require.NoError(t, err)
	assert.Equal(t, "/auth/v1/recover", gotPath)
}

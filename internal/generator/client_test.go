package generator

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

func TestGenerate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Pharmacologie", body.Title)
		assert.Equal(t, "court", body.Format)
		assert.Equal(t, "uid-1", body.UserID)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pptx_url": "https://files/p.pptx", "docx_url": "https://files/p.docx"}`))
	}))
	defer srv.Close()

	client := NewClient(config.Generator{WebhookURL: srv.URL, Timeout: 5 * time.Second})
	resp, err := client.Generate(context.Background(), GenerateRequest{
		Title:    "Pharmacologie",
		Level:    "Semestre 3",
		Chapters: "Antalgiques; Antibiotiques",
		Duration: "2h",
		Format:   "court",
		Email:    "prof@coursgen.fr",
		UserID:   "uid-1",
		Token:    "tok-123",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://files/p.pptx", resp.PptxURL)
	assert.Equal(t, "https://files/p.docx", resp.DocxURL)
}

func TestGenerate_MissingURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(config.Generator{WebhookURL: srv.URL})
	resp, err := client.Generate(context.Background(), GenerateRequest{Format: "court"})
	require.NoError(t, err)
	assert.Empty(t, resp.PptxURL)
	assert.Empty(t, resp.DocxURL)
}

func TestGenerate_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(config.Generator{WebhookURL: srv.URL})
	resp, err := client.Generate(context.Background(), GenerateRequest{Format: "court"})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "generation backend request failed")
}

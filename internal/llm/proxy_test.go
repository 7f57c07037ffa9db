package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyClientGenerateContent(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"{\"monday\":{}}"}]}`))
	}))
	defer srv.Close()

	c := NewProxyClient(srv.URL, "sk-test", srv.Client())
	text, err := c.GenerateContent(context.Background(), "plan my week")
	require.NoError(t, err)
	assert.Equal(t, `{"monday":{}}`, text)
	assert.Equal(t, map[string]string{"prompt": "plan my week", "apiKey": "sk-test"}, got)
}

func TestProxyClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"relayed message", http.StatusUnauthorized, `{"error":"invalid x-api-key"}`, "Claude API error: invalid x-api-key"},
		{"already prefixed", http.StatusTooManyRequests, `{"error":"Claude API error: rate limited"}`, "Claude API error: rate limited"},
		{"no message", http.StatusBadGateway, `not json`, "Claude API error: Unknown error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewProxyClient(srv.URL, "k", nil).GenerateContent(context.Background(), "p")
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Error())
		})
	}
}

func TestProxyClientEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	_, err := NewProxyClient(srv.URL, "k", nil).GenerateContent(context.Background(), "p")
	assert.Error(t, err)
}

func TestProxyClientDefaultTimeout(t *testing.T) {
	c := NewProxyClient("http://localhost:3001/api/claude", "k", nil)
	assert.Equal(t, 100*time.Second, c.httpClient.Timeout)

	custom := &http.Client{Timeout: time.Second}
	assert.Same(t, custom, NewProxyClient("u", "k", custom).httpClient)
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", "gemini-1.5-flash")
	assert.Error(t, err)
}

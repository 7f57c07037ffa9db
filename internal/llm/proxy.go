package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const errPrefix = "Claude API error: "

// ProxyClient calls the Claude proxy, which forwards the prompt to the
// messages API with the caller's key.
type ProxyClient struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// NewProxyClient returns a client for the proxy at url. A nil httpClient gets
// one with a 100s timeout.
func NewProxyClient(url, apiKey string, httpClient *http.Client) *ProxyClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 100 * time.Second}
	}
	return &ProxyClient{url: url, apiKey: apiKey, httpClient: httpClient}
}

// GenerateContent posts {prompt, apiKey} and returns the first content block's
// text.
func (c *ProxyClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt, "apiKey": c.apiKey})
	if err != nil {
		return "", fmt.Errorf("marshal proxy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create proxy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call proxy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errBody)
		msg := errBody.Error
		if msg == "" {
			msg = "Unknown error"
		}
		// The proxy prefixes upstream failures itself.
		if !strings.HasPrefix(msg, errPrefix) {
			msg = errPrefix + msg
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var out struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode proxy response: %w", err)
	}
	if len(out.Content) == 0 {
		return "", errors.New("proxy response has no content")
	}
	return out.Content[0].Text, nil
}

// APIError is a non-2xx answer from an upstream model API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

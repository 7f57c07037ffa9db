// Package proxy forwards prompts to the Claude messages API on behalf of a
// browser that holds its own API key.
package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	DefaultUpstream = "https://api.anthropic.com/v1/messages"
	DefaultModel    = "claude-3-sonnet-20240229"

	anthropicVersion = "2023-06-01"
	maxTokens        = 2000
)

var errInvalidJSON = errors.New("upstream response is not JSON")

type Config struct {
	UpstreamURL string
	Model       string
	HTTPClient  *http.Client
}

type Handler struct {
	upstream string
	model    string
	client   *http.Client
	logger   *slog.Logger
}

func NewHandler(cfg Config, logger *slog.Logger) *Handler {
	if cfg.UpstreamURL == "" {
		cfg.UpstreamURL = DefaultUpstream
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 90 * time.Second}
	}
	return &Handler{
		upstream: cfg.UpstreamURL,
		model:    cfg.Model,
		client:   cfg.HTTPClient,
		logger:   logger,
	}
}

type claudeRequest struct {
	Prompt string `json:"prompt"`
	APIKey string `json:"apiKey"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

// ServeHTTP handles POST /api/claude.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req claudeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.APIKey == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "API key is required"})
		return
	}

	body, err := json.Marshal(messagesRequest{
		Model:     h.model,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		h.internalError(w, "marshal upstream request", err)
		return
	}

	upReq, err := http.NewRequestWithContext(r.Context(), http.MethodPost, h.upstream, bytes.NewReader(body))
	if err != nil {
		h.internalError(w, "create upstream request", err)
		return
	}
	upReq.Header.Set("Content-Type", "application/json")
	upReq.Header.Set("x-api-key", req.APIKey)
	upReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := h.client.Do(upReq)
	if err != nil {
		h.internalError(w, "call upstream", err)
		return
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		h.internalError(w, "read upstream response", err)
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(data, &errBody); err != nil {
			h.logger.Debug("upstream error body is not JSON", "status", resp.StatusCode, "error", err)
		}
		msg := errBody.Error.Message
		if msg == "" {
			msg = "Unknown error"
		}
		h.logger.Warn("upstream error", "status", resp.StatusCode, "message", msg)
		writeJSON(w, resp.StatusCode, map[string]string{"error": "Claude API error: " + msg})
		return
	}

	if !json.Valid(data) {
		h.internalError(w, "decode upstream response", errInvalidJSON)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	w.Write(data)
}

func (h *Handler) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

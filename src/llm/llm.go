// Package llm is a small OpenRouter (OpenAI-compatible) chat completion client.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"kairo/src/content"
)

// ErrNotConfigured is returned when no API key or model is set.
var ErrNotConfigured = errors.New("llm: client not configured (API key and model are required)")

const (
	maxRetries   = 3
	initialDelay = 1 * time.Second

	defaultTimeout = 45 * time.Second
	// One request per second with small bursts; a desktop user never needs more.
	defaultRateLimit = rate.Limit(1)
	defaultBurst     = 3

	temperature = 0.7
	maxTokens   = 2000
)

type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	Providers []string
	Timeout   time.Duration
}

// Role of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one earlier message of the conversation.
type Turn struct {
	Role Role
	Text string
}

// Request is one completion: a system prompt, the earlier turns, and the new
// user message with an optional image.
type Request struct {
	SystemPrompt string
	History      []Turn
	UserContent  string
	Image        *content.Image
}

// OpenRouter API structures
type Message struct {
	Role    string    `json:"role"`
	Content []Content `json:"content"`
}

type Content struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type ProviderPreferences struct {
	Order          []string `json:"order,omitempty"`
	AllowFallbacks *bool    `json:"allow_fallbacks,omitempty"`
}

type ChatRequest struct {
	Model       string               `json:"model"`
	Messages    []Message            `json:"messages"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens"`
	Provider    *ProviderPreferences `json:"provider,omitempty"`
}

type ChatResponse struct {
	Choices []Choice   `json:"choices"`
	Error   *errorBody `json:"error,omitempty"`
}

type Choice struct {
	Message ResponseMessage `json:"message"`
}

type ResponseMessage struct {
	Content string `json:"content"`
}

type errorBody struct {
	Message string      `json:"message"`
	Type    string      `json:"type"`
	Code    interface{} `json:"code"` // Can be string or number
}

// APIError is a non-2xx answer or an error object in the response body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// Retryable reports whether the request may succeed if sent again.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
	// backoff is the wait before attempt n (n >= 1).
	backoff func(n int) time.Duration
}

func New(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(defaultRateLimit, defaultBurst),
		log:     logger.With().Str("cmp", "llm").Logger(),
		backoff: func(n int) time.Duration {
			return time.Duration(float64(initialDelay) * (1.5 * float64(n)))
		},
	}
}

func (c *Client) Configured() bool {
	return strings.TrimSpace(c.cfg.APIKey) != "" && strings.TrimSpace(c.cfg.Model) != ""
}

func (c *Client) Model() string { return c.cfg.Model }

// providerPreferences pins the provider order when the user configured one.
func (c *Client) providerPreferences() *ProviderPreferences {
	if len(c.cfg.Providers) == 0 {
		return nil
	}
	allowFallbacks := false
	return &ProviderPreferences{
		Order:          c.cfg.Providers,
		AllowFallbacks: &allowFallbacks,
	}
}

// Messages converts a Request to the wire message list.
func Messages(req Request) []Message {
	msgs := make([]Message, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		msgs = append(msgs, textMessage(RoleSystem, req.SystemPrompt))
	}
	for _, t := range req.History {
		msgs = append(msgs, textMessage(t.Role, t.Text))
	}
	user := textMessage(RoleUser, req.UserContent)
	if req.Image != nil {
		user.Content = append(user.Content, Content{
			Type:     "image_url",
			ImageURL: &ImageURL{URL: req.Image.DataURL()},
		})
	}
	return append(msgs, user)
}

func textMessage(role Role, text string) Message {
	return Message{Role: string(role), Content: []Content{{Type: "text", Text: text}}}
}

// Complete sends req and returns the assistant's answer. Transport errors,
// 429 and 5xx answers are retried with backoff.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	body := ChatRequest{
		Model:       c.cfg.Model,
		Messages:    Messages(req),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Provider:    c.providerPreferences(),
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, c.backoff(attempt)); err != nil {
				return "", err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		resp, err := c.post(ctx, body)
		if err != nil {
			lastErr = err
			var apiErr *APIError
			if ctx.Err() != nil || (errors.As(err, &apiErr) && !apiErr.Retryable()) {
				return "", err
			}
			c.log.Warn().Err(err).Int("attempt", attempt+1).Msg("completion failed, retrying")
			continue
		}

		if len(resp.Choices) == 0 {
			lastErr = errors.New("no choices in API response")
			continue
		}
		text := strings.TrimSpace(resp.Choices[0].Message.Content)
		if text == "" {
			lastErr = errors.New("empty completion")
			continue
		}
		return text, nil
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

func (c *Client) post(ctx context.Context, body ChatRequest) (*ChatResponse, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()
	c.log.Debug().Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("completion response")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed ChatResponse
	decodeErr := json.Unmarshal(raw, &parsed)

	if parsed.Error != nil {
		status := resp.StatusCode
		if status == http.StatusOK {
			status = http.StatusBadGateway
		}
		return nil, &APIError{StatusCode: status, Message: parsed.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	return &parsed, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("HTTP-Referer", "https://github.com/kairo-app/kairo")
	req.Header.Set("X-Title", "Kairo")
}

// Ping checks that the endpoint accepts the configured key.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/models", nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

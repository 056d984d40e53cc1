// Package llm is a small client for OpenAI-compatible chat completion APIs.
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
)

const (
	DefaultEndpoint = "https://api.openai.com/v1/chat/completions"
	DefaultModel    = "gpt-4o-mini"
)

// maxResponseBytes bounds how much of a reply is read.
const maxResponseBytes = 1 << 20

// ErrUnavailable is returned when no API key is configured.
var ErrUnavailable = errors.New("llm unavailable")

// HTTPDoer allows tests to fake HTTP transport.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Completer turns a system and user prompt into the model's text reply.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// Prompt is one chat completion call.
type Prompt struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	// JSON asks the API for a JSON object reply.
	JSON bool
}

type Config struct {
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Client calls the Chat Completions endpoint.
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient HTTPDoer
	log        zerolog.Logger
}

// NewClient returns a client with defaults filled in. httpClient may be nil.
func NewClient(cfg Config, httpClient HTTPDoer, logger zerolog.Logger) *Client {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      cfg.Model,
		endpoint:   cfg.Endpoint,
		httpClient: httpClient,
		log:        logger.With().Str("module", "llm").Str("model", cfg.Model).Logger(),
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c != nil && c.apiKey != "" }

func (c *Client) Complete(ctx context.Context, p Prompt) (string, error) {
	if !c.Enabled() {
		return "", ErrUnavailable
	}

	req := chatCompletionsRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		},
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	}
	if p.JSON {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal llm request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+c.apiKey)
	request.Header.Set("Content-Type", "application/json")

	start := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read llm response: %w", err)
	}
	c.log.Debug().Int("status", response.StatusCode).Dur("took", time.Since(start)).Msg("chat completion")

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		var apiErr errorEnvelope
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("llm status %d: %s", response.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("llm status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed chatCompletionsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode llm response: %w", err)
	}
	if parsed.Error.Message != "" {
		return "", fmt.Errorf("llm error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("llm returned no choices")
	}

	message := parsed.Choices[0].Message
	if r := strings.TrimSpace(message.Refusal); r != "" {
		return "", fmt.Errorf("llm refusal: %s", r)
	}
	content, err := parseMessageContent(message.Content)
	if err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.New("llm returned empty content")
	}
	return content, nil
}

// DecodeJSON unmarshals a model reply into v, tolerating markdown code fences.
func DecodeJSON(content string, v any) error {
	if err := json.Unmarshal([]byte(StripFences(content)), v); err != nil {
		return fmt.Errorf("llm content is not valid json: %w", err)
	}
	return nil
}

// StripFences removes a surrounding ```json ... ``` block.
func StripFences(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func parseMessageContent(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, nil
	}

	var asParts []contentPart
	if err := json.Unmarshal(raw, &asParts); err == nil {
		var b strings.Builder
		for _, part := range asParts {
			if part.Type == "text" {
				b.WriteString(part.Text)
			}
		}
		return b.String(), nil
	}

	return "", fmt.Errorf("unsupported llm message content format: %s", string(raw))
}

type chatCompletionsRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
			Refusal string          `json:"refusal"`
		} `json:"message"`
	} `json:"choices"`
	Error errorBody `json:"error"`
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Message string `json:"message"`
}

// Package groq provides a chat-completions client for the Groq API, which
// speaks the OpenAI wire format.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bkyoung/code-refactor/internal/adapter/llm/httpx"
)

const (
	defaultBaseURL = "https://api.groq.com/openai"
	defaultTimeout = 60 * time.Second
	defaultModel   = "llama-3.3-70b-versatile"
)

// HTTPClient is an HTTP client for the Groq chat-completions API.
type HTTPClient struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	timeout     time.Duration
	retry       httpx.RetryConfig
	client      *http.Client
	logger      httpx.Logger
}

// NewHTTPClient creates a new Groq HTTP client. An empty model selects the
// default Llama model.
func NewHTTPClient(apiKey, model string) *HTTPClient {
	if model == "" {
		model = defaultModel
	}
	return &HTTPClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		timeout: defaultTimeout,
		retry:   httpx.DefaultRetryConfig(),
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// SetBaseURL sets a custom base URL (for testing).
func (c *HTTPClient) SetBaseURL(url string) {
	c.baseURL = url
}

// SetTimeout sets the HTTP timeout.
func (c *HTTPClient) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
	c.client.Timeout = timeout
}

// SetTemperature sets the sampling temperature for all calls.
func (c *HTTPClient) SetTemperature(temperature float64) {
	c.temperature = temperature
}

// SetRetryConfig overrides the default retry behavior.
func (c *HTTPClient) SetRetryConfig(config httpx.RetryConfig) {
	c.retry = config
}

// SetLogger wires up structured request/response logging.
func (c *HTTPClient) SetLogger(logger httpx.Logger) {
	c.logger = logger
}

// Model returns the configured model name.
func (c *HTTPClient) Model() string {
	return c.model
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Chat sends a single-turn user prompt and returns the assistant text.
func (c *HTTPClient) Chat(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/v1/chat/completions"
	start := time.Now()

	if c.logger != nil {
		c.logger.LogRequest(ctx, httpx.RequestLog{
			Provider:    "groq",
			Model:       c.model,
			Timestamp:   start,
			PromptChars: len(prompt),
			APIKey:      c.apiKey,
		})
	}

	var parsed chatResponse
	var statusCode int
	err = httpx.RetryWithBackoff(ctx, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if reqErr != nil {
			return &httpx.Error{Type: httpx.ErrTypeUnknown, Message: reqErr.Error(), Provider: "groq"}
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, callErr := c.client.Do(req)
		if callErr != nil {
			return httpx.NewTimeoutError("groq", callErr.Error())
		}
		defer resp.Body.Close()

		statusCode = resp.StatusCode
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return &httpx.Error{Type: httpx.ErrTypeUnknown, Message: readErr.Error(), Provider: "groq"}
		}

		if resp.StatusCode >= 400 {
			return classifyError(resp.StatusCode, body)
		}

		if unmarshalErr := json.Unmarshal(body, &parsed); unmarshalErr != nil {
			return &httpx.Error{Type: httpx.ErrTypeUnknown, Message: "malformed response body: " + unmarshalErr.Error(), Provider: "groq"}
		}
		return nil
	}, c.retry)
	if err != nil {
		if c.logger != nil {
			c.logger.LogError(ctx, httpx.ErrorLog{
				Provider:   "groq",
				Model:      c.model,
				Timestamp:  time.Now(),
				Duration:   time.Since(start),
				Error:      err,
				StatusCode: statusCode,
				Retryable:  httpx.ShouldRetry(err),
			})
		}
		return "", err
	}

	if len(parsed.Choices) == 0 {
		return "", &httpx.Error{Type: httpx.ErrTypeUnknown, Message: "response contained no choices", Provider: "groq"}
	}

	if c.logger != nil {
		c.logger.LogResponse(ctx, httpx.ResponseLog{
			Provider:     "groq",
			Model:        c.model,
			Timestamp:    time.Now(),
			Duration:     time.Since(start),
			TokensIn:     parsed.Usage.PromptTokens,
			TokensOut:    parsed.Usage.CompletionTokens,
			StatusCode:   statusCode,
			FinishReason: parsed.Choices[0].FinishReason,
		})
	}

	return parsed.Choices[0].Message.Content, nil
}

// classifyError maps an HTTP error status to a typed, retry-classified error.
func classifyError(statusCode int, body []byte) *httpx.Error {
	message := string(body)
	var apiErr errorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return httpx.NewAuthenticationError("groq", message)
	case statusCode == http.StatusTooManyRequests:
		return httpx.NewRateLimitError("groq", message)
	case statusCode == http.StatusNotFound:
		return httpx.NewModelNotFoundError("groq", message)
	case statusCode >= 500:
		return httpx.NewServiceUnavailableError("groq", message)
	default:
		return httpx.NewInvalidRequestError("groq", message)
	}
}

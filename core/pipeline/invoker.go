package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/pythagorakase/nexus-sub001/model"
)

const (
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"

	defaultTimeout = 2 * time.Minute
	maxRetries     = 3
)

// InvokerConfig holds configuration for the extraction client.
type InvokerConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Invoker sends assembled payloads to an OpenAI-compatible chat completions
// endpoint and decodes the structured answer. It performs no writes, the
// outbound call is its only side effect.
type Invoker struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewInvoker creates an invoker for the given model from the environment.
// Reads OPENAI_API_KEY, and OPENAI_BASE_URL for OpenAI-compatible services.
func NewInvoker(modelName string) (*Invoker, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY)")
	}

	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return NewInvokerWithConfig(InvokerConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   modelName,
	}), nil
}

// NewInvokerWithConfig creates an invoker with explicit configuration.
func NewInvokerWithConfig(config InvokerConfig) *Invoker {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	return &Invoker{
		apiKey:  config.APIKey,
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
		model:   config.Model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// chatRequest is the request body for the chat completions endpoint.
type chatRequest struct {
	Model          string                                   `json:"model"`
	Messages       []openai.ChatCompletionMessageParamUnion `json:"messages"`
	MaxTokens      int                                      `json:"max_tokens,omitempty"`
	Temperature    float64                                  `json:"temperature,omitempty"`
	ResponseFormat *ResponseFormat                          `json:"response_format,omitempty"`
}

// chatResponse is the subset of the chat completions response we read.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Extract sends the rendered payload and decodes the structured answer.
// Answers that do not decode against the extraction schema are a fatal
// error for the chunk, never coerced, and the raw body is included so the
// chunk can be re-run manually.
func (inv *Invoker) Extract(ctx context.Context, payload Payload) (*model.ExtractionResult, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.httpClient.Timeout)
		defer cancel()
	}

	reqBody := chatRequest{
		Model: inv.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(payload.Render()),
		},
		MaxTokens:      4096,
		Temperature:    0.1,
		ResponseFormat: ExtractionResponseFormat(),
	}

	content, err := inv.complete(ctx, reqBody)
	if err != nil {
		return nil, fmt.Errorf("extraction for %s failed: %w", payload.Context.Current.Label(), err)
	}

	result, err := decodeExtraction(content)
	if err != nil {
		return nil, fmt.Errorf("extraction for %s returned a malformed answer: %w\nraw answer: %s", payload.Context.Current.Label(), err, content)
	}
	return result, nil
}

// complete posts the request, retrying rate limits with backoff.
func (inv *Invoker) complete(ctx context.Context, reqBody chatRequest) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return "", fmt.Errorf("failed to marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", inv.baseURL+"/chat/completions", bytes.NewReader(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+inv.apiKey)

		resp, err := inv.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limit exceeded (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}

		var parsed chatResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return "", fmt.Errorf("failed to parse response: %w", err)
		}

		if parsed.Error != nil {
			return "", fmt.Errorf("API error: %s", parsed.Error.Message)
		}

		if len(parsed.Choices) == 0 {
			return "", fmt.Errorf("no completion returned")
		}

		return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

// decodeExtraction parses the service answer, rejecting unknown fields so
// schema drift surfaces as an error instead of silently dropped data.
func decodeExtraction(content string) (*model.ExtractionResult, error) {
	decoder := json.NewDecoder(strings.NewReader(content))
	decoder.DisallowUnknownFields()

	var result model.ExtractionResult
	if err := decoder.Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

package chatservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"NutriBuddy/internal/prompt"
)

// --- Chat Completion API Configuration ---
const (
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "gpt-4o-mini"
	completionPath = "/v1/chat/completions"

	maxRetries     = 3
	initialBackoff = 1 * time.Second
	requestTimeout = 30 * time.Second

	defaultTemperature = 0.4
)

// --- Structs for Chat Completion Request/Response ---

type ChatPayload struct {
	Model          string               `json:"model"`
	Messages       []prompt.ChatMessage `json:"messages"`
	Temperature    float64              `json:"temperature"`
	ResponseFormat *ResponseFormat      `json:"response_format,omitempty"`
}

type ResponseFormat struct {
	Type string `json:"type"` // "json_object"
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client calls the hosted chat-completions API. The interface exists so
// the orchestrator can be tested against a stub.
type Client interface {
	Complete(ctx context.Context, log *zerolog.Logger, messages []prompt.ChatMessage, requireJSON bool) (string, error)
}

type httpClient struct {
	apiKey  string
	baseURL string
	model   string
	hc      *http.Client
}

// NewClient reads the API configuration from the environment. The base
// URL and model have defaults; the key does not.
func NewClient() (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("NUTRIBUDDY_AI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("NUTRIBUDDY_AI_API_KEY environment variable is not set")
	}

	baseURL := strings.TrimSpace(os.Getenv("NUTRIBUDDY_AI_BASE_URL"))
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(os.Getenv("NUTRIBUDDY_AI_MODEL"))
	if model == "" {
		model = defaultModel
	}

	return &httpClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		hc:      &http.Client{Timeout: requestTimeout},
	}, nil
}

// Complete sends the built message sequence verbatim and returns the raw
// assistant text. Transient failures (network errors, 429, 5xx) retry
// with exponential backoff; anything else fails fast.
func (c *httpClient) Complete(ctx context.Context, log *zerolog.Logger, messages []prompt.ChatMessage, requireJSON bool) (string, error) {
	payload := ChatPayload{
		Model:       c.model,
		Messages:    messages,
		Temperature: defaultTemperature,
	}
	if requireJSON {
		payload.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	var lastErr error

	// Exponential backoff retry loop
	for i := 0; i < maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionPath, bytes.NewReader(payloadBytes))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		log.Info().Msgf("Attempt %d: Calling chat completion API...", i+1)

		resp, err := c.hc.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			log.Warn().Err(lastErr).Msgf("Attempt %d failed", i+1)

			if ctx.Err() != nil {
				return "", lastErr
			}
			time.Sleep(initialBackoff * time.Duration(math.Pow(2, float64(i))))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()

			lastErr = fmt.Errorf("API returned non-200 status: %s, Body: %s", resp.Status, apiErrorMessage(body))

			// Only rate limits and server errors are worth retrying.
			if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
				return "", lastErr
			}

			log.Warn().Err(lastErr).Msgf("Attempt %d failed", i+1)
			time.Sleep(initialBackoff * time.Duration(math.Pow(2, float64(i))))
			continue
		}

		var chatResp ChatResponse
		if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
			resp.Body.Close()
			return "", fmt.Errorf("failed to decode response: %w", err)
		}
		resp.Body.Close()

		if len(chatResp.Choices) > 0 && chatResp.Choices[0].Message.Content != "" {
			return chatResp.Choices[0].Message.Content, nil
		}

		return "", fmt.Errorf("no content found in chat completion response")
	}

	return "", fmt.Errorf("failed to call chat completion API after %d attempts: %w", maxRetries, lastErr)
}

// apiErrorMessage pulls the provider's error.message out of an error
// body, falling back to the raw body when it is not the usual envelope.
func apiErrorMessage(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return string(body)
}

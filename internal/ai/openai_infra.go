package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Vovarama1992/paper2deck/internal/domain"
	"github.com/Vovarama1992/paper2deck/internal/metrics"
)

const ProviderOpenAI = "openai"

// OpenAIClient talks to any OpenAI-compatible chat endpoint. The key comes
// with each request, so a client is built per call.
type OpenAIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOpenAIClient(baseURL string, timeout time.Duration) *OpenAIClient {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenAIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *OpenAIClient) Name() string { return ProviderOpenAI }

func (c *OpenAIClient) client(credential string) *openai.Client {
	cfg := openai.DefaultConfig(credential)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	cfg.HTTPClient = c.httpClient
	return openai.NewClientWithConfig(cfg)
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt, credential, modelID string) (json.RawMessage, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, domain.AuthError("API key is required", nil)
	}
	if strings.TrimSpace(modelID) == "" {
		return nil, domain.ValidationError("model is required")
	}

	resp, err := c.client(credential).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: modelID,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.5,
	})
	if err != nil {
		metrics.RecordAICall(ProviderOpenAI, "error")
		return nil, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.RecordAICall(ProviderOpenAI, "error")
		return nil, domain.UpstreamError("AI returned an empty response", nil)
	}

	raw, err := parseJSONText(resp.Choices[0].Message.Content)
	if err != nil {
		metrics.RecordAICall(ProviderOpenAI, "error")
		return nil, err
	}
	metrics.RecordAICall(ProviderOpenAI, "ok")
	return raw, nil
}

func (c *OpenAIClient) ListModels(ctx context.Context, credential string) ([]domain.AIModel, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, domain.AuthError("API key is required", nil)
	}

	list, err := c.client(credential).ListModels(ctx)
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	models := make([]domain.AIModel, 0, len(list.Models))
	for _, m := range list.Models {
		id := m.ID
		if strings.Contains(id, "embedding") || strings.Contains(id, "whisper") ||
			strings.Contains(id, "tts") || strings.Contains(id, "dall-e") {
			continue
		}
		models = append(models, domain.AIModel{ID: id, Name: id})
	}

	sort.SliceStable(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models, nil
}

func mapOpenAIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.UpstreamError("AI provider request timed out", err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return domain.AuthError(authMessage(apiErr.Message), err)
		default:
			return domain.UpstreamError(cleanUpstreamMessage(apiErr.Message), err)
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return domain.AuthError(authMessage(""), err)
		}
		return domain.UpstreamError("AI provider request failed", err)
	}

	return domain.UpstreamError("AI provider is unreachable", err)
}

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Vovarama1992/paper2deck/internal/domain"
	"github.com/Vovarama1992/paper2deck/internal/metrics"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	ProviderGemini       = "gemini"

	geminiKeyHeader = "x-goog-api-key"
)

type GeminiClient struct {
	baseURL string
	client  *http.Client
}

func NewGeminiClient(baseURL string, timeout time.Duration) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &GeminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *GeminiClient) Name() string { return ProviderGemini }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		ResponseMimeType string `json:"responseMimeType"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type geminiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Reason string `json:"reason"`
		} `json:"details"`
	} `json:"error"`
}

func (c *GeminiClient) Complete(ctx context.Context, prompt, credential, modelID string) (json.RawMessage, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, domain.AuthError("API key is required", nil)
	}
	if strings.TrimSpace(modelID) == "" {
		return nil, domain.ValidationError("model is required")
	}

	var reqBody geminiRequest
	reqBody.Contents = []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}}
	reqBody.GenerationConfig.ResponseMimeType = "application/json"

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent",
		c.baseURL, url.PathEscape(strings.TrimPrefix(modelID, "models/")))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(geminiKeyHeader, credential)

	body, status, err := c.do(req)
	if err != nil {
		metrics.RecordAICall(ProviderGemini, "error")
		return nil, err
	}
	if status != http.StatusOK {
		metrics.RecordAICall(ProviderGemini, "error")
		return nil, geminiStatusError(status, body)
	}

	var out geminiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		metrics.RecordAICall(ProviderGemini, "error")
		return nil, domain.UpstreamError("AI provider returned an unreadable response", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		metrics.RecordAICall(ProviderGemini, "error")
		if out.PromptFeedback.BlockReason != "" {
			return nil, domain.UpstreamError("AI provider blocked the prompt: "+out.PromptFeedback.BlockReason, nil)
		}
		return nil, domain.UpstreamError("AI returned an empty response", nil)
	}

	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}

	raw, err := parseJSONText(sb.String())
	if err != nil {
		metrics.RecordAICall(ProviderGemini, "error")
		return nil, err
	}
	metrics.RecordAICall(ProviderGemini, "ok")
	return raw, nil
}

type geminiModelList struct {
	Models []struct {
		Name                       string   `json:"name"`
		DisplayName                string   `json:"displayName"`
		SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
	} `json:"models"`
	NextPageToken string `json:"nextPageToken"`
}

func (c *GeminiClient) ListModels(ctx context.Context, credential string) ([]domain.AIModel, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, domain.AuthError("API key is required", nil)
	}

	var models []domain.AIModel
	seen := map[string]bool{}
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("pageSize", "1000")
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set(geminiKeyHeader, credential)

		body, status, err := c.do(req)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, geminiStatusError(status, body)
		}

		var page geminiModelList
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, domain.UpstreamError("AI provider returned an unreadable model list", err)
		}

		for _, m := range page.Models {
			if !supports(m.SupportedGenerationMethods, "generateContent") {
				continue
			}
			if strings.Contains(m.Name, "embedding") || !isGeminiFamily(m.Name, m.DisplayName) {
				continue
			}
			id := strings.TrimPrefix(m.Name, "models/")
			name := m.DisplayName
			if name == "" {
				name = id
			}
			models = append(models, domain.AIModel{ID: id, Name: name})
		}

		// a token seen before would loop forever
		if page.NextPageToken == "" || seen[page.NextPageToken] {
			break
		}
		seen[page.NextPageToken] = true
		pageToken = page.NextPageToken
	}

	sort.SliceStable(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models, nil
}

func (c *GeminiClient) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		timedOut := isTimeout(err)
		err = redactKey(err)
		if timedOut {
			return nil, 0, domain.UpstreamError("AI provider request timed out", err)
		}
		return nil, 0, domain.UpstreamError("AI provider is unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, domain.UpstreamError("AI provider response could not be read", err)
	}
	return body, resp.StatusCode, nil
}

func geminiStatusError(status int, body []byte) error {
	var eb geminiErrorBody
	_ = json.Unmarshal(body, &eb)
	msg := eb.Error.Message
	if msg == "" {
		msg = http.StatusText(status)
	}

	invalidKey := false
	for _, d := range eb.Error.Details {
		if d.Reason == "API_KEY_INVALID" {
			invalidKey = true
		}
	}

	cause := fmt.Errorf("gemini status %d: %s", status, eb.Error.Status)
	switch {
	case invalidKey, status == http.StatusUnauthorized, status == http.StatusForbidden:
		return domain.AuthError(authMessage(msg), cause)
	default:
		return domain.UpstreamError(cleanUpstreamMessage(msg), cause)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

func isGeminiFamily(name, displayName string) bool {
	return strings.Contains(strings.ToLower(name), "gemini") ||
		strings.Contains(strings.ToLower(displayName), "gemini")
}

// redactKey keeps the endpoint out of logs; url.Error prints the full URL.
func redactKey(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s %s: %w", ue.Op, "gemini endpoint", ue.Err)
	}
	return err
}

func supports(methods []string, want string) bool {
	for _, m := range methods {
		if m == want {
			return true
		}
	}
	return false
}

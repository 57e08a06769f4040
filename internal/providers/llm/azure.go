package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"

	"github.com/jjaspenextech/nextech-shannon-api/internal/core"
)

// AzureOpenAI talks to a chat completions deployment on Azure OpenAI.
type AzureOpenAI struct {
	baseProvider
	endpoint  string
	maxTokens int
}

type AzureOpenAIConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	APIVersion string
	MaxTokens  int
}

func NewAzureOpenAI(cfg AzureOpenAIConfig) *AzureOpenAI {
	return &AzureOpenAI{
		baseProvider: newBaseProvider(cfg.APIKey),
		endpoint:     deploymentURL(cfg.BaseURL, cfg.Model, cfg.APIVersion),
		maxTokens:    cfg.MaxTokens,
	}
}

func deploymentURL(baseURL, model, version string) string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(baseURL, "/"),
		url.PathEscape(model),
		url.QueryEscape(version),
	)
}

// Endpoint is the chat completions URL requests are sent to.
func (a *AzureOpenAI) Endpoint() string {
	return a.endpoint
}

type completionRequest struct {
	Messages    []core.Turn `json:"messages"`
	MaxTokens   int         `json:"max_tokens"`
	Temperature float64     `json:"temperature"`
	Stream      bool        `json:"stream,omitempty"`
}

func (a *AzureOpenAI) payload(turns []core.Turn, stream bool) completionRequest {
	return completionRequest{
		Messages:    turns,
		MaxTokens:   a.maxTokens,
		Temperature: 0,
		Stream:      stream,
	}
}

func (a *AzureOpenAI) headers() map[string]string {
	return map[string]string{"api-key": a.apiKey}
}

func (a *AzureOpenAI) Complete(ctx context.Context, turns []core.Turn) (string, error) {
	resp, err := a.doRequest(ctx, a.client, http.MethodPost, a.endpoint, a.payload(turns, false), a.headers())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return parseCompletion(resp)
}

func parseCompletion(resp *http.Response) (string, error) {
	if !isSuccess(resp.StatusCode) {
		return "", readUpstreamError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: string(data), Err: fmt.Errorf("decode: %w", err)}
	}
	if len(result.Choices) == 0 {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: string(data), Err: fmt.Errorf("empty choices")}
	}
	return result.Choices[0].Message.Content, nil
}

// Stream sends the request right away so that connection failures and
// error statuses surface before the first fragment. The returned sequence
// owns the response body and closes it when iteration stops.
func (a *AzureOpenAI) Stream(ctx context.Context, turns []core.Turn) (iter.Seq2[string, error], error) {
	resp, err := a.doRequest(ctx, a.stream, http.MethodPost, a.endpoint, a.payload(turns, true), a.headers())
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		defer resp.Body.Close()
		return nil, readUpstreamError(resp)
	}
	return streamFragments(ctx, resp.Body), nil
}

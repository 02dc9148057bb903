package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const anthropicBaseURL = "https://api.anthropic.com/v1"

// anthropicClient implements Summarizer over the messages API.
type anthropicClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

func newAnthropicClient(cfg Config) (*anthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}

	return &anthropicClient{
		httpClient:  newHTTPClient(cfg.Timeout),
		baseURL:     baseURLOr(cfg.BaseURL, anthropicBaseURL),
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: temperatureOr(cfg.Temperature),
		maxTokens:   maxTokensOr(cfg.MaxTokens),
	}, nil
}

func (c *anthropicClient) Summarize(ctx context.Context, req Request) (Response, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return Response{}, err
	}

	requestBody := map[string]any{
		"model":       c.model,
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
		"system":      systemPrompt,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	body, err := do(c.httpClient, httpReq, "anthropic")
	if err != nil {
		return Response{}, err
	}

	var response anthropicResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return Response{}, fmt.Errorf("failed to parse response: %w", err)
	}
	for _, block := range response.Content {
		if block.Type == "" || block.Type == "text" {
			return parseSummary(block.Text)
		}
	}
	return Response{}, fmt.Errorf("no content in response")
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/vietddude/chatpulse/internal/core/domain"
)

// HTTPProvider implements Provider over a JSON HTTP API.
type HTTPProvider struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewHTTPProvider creates a new HTTP-based AI provider.
func NewHTTPProvider(cfg Config, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type completeRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type completeResponse struct {
	Text string `json:"text"`
}

type analyzeRequest struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

// Complete returns the model's completion for a prompt.
func (p *HTTPProvider) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := p.post(ctx, "/v1/complete", completeRequest{Model: p.model, Prompt: prompt})
	if err != nil {
		return "", err
	}

	var out completeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	return out.Text, nil
}

// Analyze runs profanity analysis over a text.
func (p *HTTPProvider) Analyze(ctx context.Context, text string) (domain.Analysis, error) {
	body, err := p.post(ctx, "/v1/analyze", analyzeRequest{Model: p.model, Text: text})
	if err != nil {
		return domain.Analysis{}, err
	}

	var out domain.Analysis
	if err := json.Unmarshal(body, &out); err != nil {
		return domain.Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	return out, nil
}

// post sends one JSON request, retrying transient transport errors and 5xx
// responses with exponential backoff. Rate-limit and client errors are
// returned as-is so the caller's classifier and breaker see them.
func (p *HTTPProvider) post(ctx context.Context, path string, payload any) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var body []byte
	backoff := retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, "POST", p.endpoint+path, bytes.NewReader(jsonData))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if p.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+p.apiKey)
		}

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("ai call: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := resp.Header.Get("Retry-After")
			return fmt.Errorf("rate limited (429), retry after: %s", retryAfter)
		}
		if resp.StatusCode == http.StatusForbidden {
			return fmt.Errorf("access blocked (403)")
		}
		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("ai server error (%d)", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("read response: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embedding adapts an OpenAI-compatible embeddings API to a single
// normalized vector type. Ollama's compatibility endpoint works unchanged.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/privylens/internal/metrics"
)

// ErrEmbeddingFailed marks any embedding-service failure: unreachable
// service, API error, or malformed response. Callers decide whether to skip
// the enclosing candidate or abort the batch.
var ErrEmbeddingFailed = errors.New("embedding request failed")

// Embedder produces a fixed-dimension vector for a text string.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client is an Embedder backed by an OpenAI-compatible API.
type Client struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewClient creates an embedding client for the configured endpoint.
func NewClient(cfg Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(clientCfg),
		model:  openai.EmbeddingModel(cfg.Model),
	}
}

// Embed requests one embedding and normalizes the response to []float64.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          c.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}

	start := time.Now()
	resp, err := c.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(string(c.model), "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, apiErrorDetail(err))
	}
	if len(resp.Data) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(string(c.model), "error").Inc()
		return nil, fmt.Errorf("%w: empty response", ErrEmbeddingFailed)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(string(c.model), "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(string(c.model)).Observe(duration.Seconds())

	raw := resp.Data[0].Embedding
	vec := make([]float64, len(raw))
	for i, v := range raw {
		vec[i] = float64(v)
	}
	return vec, nil
}

// apiErrorDetail extracts a human-readable message from a go-openai error.
func apiErrorDetail(err error) string {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Sprintf("API error %d: %s", reqErr.HTTPStatusCode, string(reqErr.Body))
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	return err.Error()
}

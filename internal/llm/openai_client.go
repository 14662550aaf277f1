// ABOUTME: OpenAI client that turns item text into embedding vectors
// ABOUTME: Never fails loudly: errors degrade to an Unavailable embedding result
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/harper/pricewatch/internal/models"
	"github.com/harper/pricewatch/internal/util"
)

// DefaultEmbeddingModel is the default model for embeddings
const DefaultEmbeddingModel = openai.SmallEmbedding3

// Embedder produces embedding vectors for text
type Embedder interface {
	Embed(ctx context.Context, text string) models.EmbeddingResult
}

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel openai.EmbeddingModel
	MaxRetries     int
	RetryDelay     time.Duration
	Timeout        time.Duration
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:         apiKey,
		EmbeddingModel: DefaultEmbeddingModel,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
		Timeout:        30 * time.Second,
	}
}

// OpenAIClient wraps the OpenAI API client with retry logic
type OpenAIClient struct {
	client         *openai.Client
	embeddingModel openai.EmbeddingModel
	maxRetries     int
	retryDelay     time.Duration
	timeout        time.Duration
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom configuration
func NewOpenAIClientWithConfig(config *ClientConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	oc := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		oc.BaseURL = config.BaseURL
	}

	model := config.EmbeddingModel
	if model == "" {
		model = DefaultEmbeddingModel
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(oc),
		embeddingModel: model,
		maxRetries:     config.MaxRetries,
		retryDelay:     config.RetryDelay,
		timeout:        timeout,
	}, nil
}

// NewEmbedder returns an OpenAI-backed embedder, or a Disabled one when no
// API key is configured
func NewEmbedder(config *ClientConfig) Embedder {
	client, err := NewOpenAIClientWithConfig(config)
	if err != nil {
		return Disabled{Reason: "embedding provider not configured"}
	}
	return client
}

// Embed generates an embedding vector for text. Each attempt gets its own
// timeout; the whole call is bounded by ctx.
func (c *OpenAIClient) Embed(ctx context.Context, text string) models.EmbeddingResult {
	if strings.TrimSpace(text) == "" {
		return models.EmbeddingUnavailable("no text to embed")
	}

	var vector []float64
	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func(ctx context.Context, attempt int) error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateEmbeddings(attemptCtx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: c.embeddingModel,
		})
		if err != nil {
			if isPermanent(err) {
				return util.Permanent(err)
			}
			return err
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return errors.New("no embeddings returned")
		}

		// Convert []float32 to []float64
		embedding32 := resp.Data[0].Embedding
		vector = make([]float64, len(embedding32))
		for i, v := range embedding32 {
			vector[i] = float64(v)
		}
		return nil
	})
	if err != nil {
		return models.EmbeddingUnavailable(err.Error())
	}
	return models.EmbeddingOK(vector)
}

// isPermanent reports whether retrying the request cannot help
func isPermanent(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return true
		}
	}
	return false
}

// Disabled is an embedder that is always unavailable
type Disabled struct {
	Reason string
}

// Embed always reports unavailable
func (d Disabled) Embed(ctx context.Context, text string) models.EmbeddingResult {
	return models.EmbeddingUnavailable(d.Reason)
}

package embedding

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/hfakhoury/majalla-chat/internal/config"
	"github.com/hfakhoury/majalla-chat/internal/llm"
)

// Embedder turns text into vectors for the search index.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIEmbedder implements Embedder on the OpenAI embeddings API with the
// same bounded-retry rate-limit policy as the generation providers.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	maxRetries int
}

// NewOpenAIEmbedder creates an embedder from the OpenAI configuration.
func NewOpenAIEmbedder(cfg config.OpenAIConfig, maxRetries int) *OpenAIEmbedder {
	model := cfg.EmbeddingModel
	if model == "" {
		model = "text-embedding-3-small"
	}

	var clientCfg openai.ClientConfig
	if cfg.AzureEndpoint != "" {
		clientCfg = openai.DefaultAzureConfig(cfg.APIKey, cfg.AzureEndpoint)
		if cfg.AzureAPIVersion != "" {
			clientCfg.APIVersion = cfg.AzureAPIVersion
		}
	} else {
		clientCfg = openai.DefaultConfig(cfg.APIKey)
	}

	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(model),
		maxRetries: maxRetries,
	}
}

// Embed returns one vector per input text, in input order. Rate-limited
// calls are retried with exponential backoff and jitter up to the attempt
// cap; any other error fails immediately.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var lastErr error
	for attempt := 0; attempt < e.maxRetries; attempt++ {
		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts,
			Model: e.model,
		})
		if err == nil {
			vectors := make([][]float32, len(resp.Data))
			for i, d := range resp.Data {
				vectors[i] = d.Embedding
			}
			return vectors, nil
		}

		var apiErr *openai.APIError
		if !errors.As(err, &apiErr) || apiErr.HTTPStatusCode != 429 {
			return nil, err
		}

		lastErr = &llm.RateLimitError{Provider: "openai-embeddings", Err: err}
		if attempt < e.maxRetries-1 {
			wait := llm.Backoff(attempt)
			log.Warn().Dur("wait", wait).Int("attempt", attempt+1).Msg("embedding rate limit hit, backing off")
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, lastErr
}

package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hfakhoury/majalla-chat/internal/embedding"
)

// VectorCache caches query embeddings. A nil cache is valid and means
// every query hits the embedding service.
type VectorCache interface {
	Get(ctx context.Context, query string) ([]float32, error)
	Set(ctx context.Context, query string, vector []float32) error
}

// Gateway issues hybrid queries against the search index. Upstream
// failures are soft: the gateway returns an empty result set together with
// the error so the pipeline continues with zero candidates instead of
// aborting.
type Gateway struct {
	embedder embedding.Embedder
	index    Index
	cache    VectorCache
}

// NewGateway creates a retrieval gateway.
func NewGateway(embedder embedding.Embedder, index Index, cache VectorCache) *Gateway {
	return &Gateway{embedder: embedder, index: index, cache: cache}
}

// Search embeds the query and runs it against the index, returning
// candidates in the index's ranking order.
func (g *Gateway) Search(ctx context.Context, query string, topK int) ([]Document, error) {
	vector, err := g.queryVector(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	docs, err := g.index.Search(ctx, query, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("hybrid search failed: %w", err)
	}

	return docs, nil
}

func (g *Gateway) queryVector(ctx context.Context, query string) ([]float32, error) {
	if g.cache != nil {
		if cached, err := g.cache.Get(ctx, query); err == nil && cached != nil {
			return cached, nil
		}
	}

	vectors, err := g.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding service returned no vectors")
	}

	if g.cache != nil {
		if err := g.cache.Set(ctx, query, vectors[0]); err != nil {
			log.Warn().Err(err).Msg("failed to cache query embedding")
		}
	}

	return vectors[0], nil
}

// FormatContext concatenates results in ranking order into a grounding
// context for the generation prompt. Word count is used as a coarse proxy
// for tokens; a result that would push the running count over maxTokens
// stops the scan. Each included result carries an ordinal tag, its title,
// content and source url.
func FormatContext(results []Document, maxTokens int) string {
	if len(results) == 0 {
		return "No relevant information found."
	}

	var parts []string
	wordCount := 0

	for i, doc := range results {
		content := doc.Content
		if content == "" {
			content = doc.Summary
		}

		words := len(strings.Fields(content))
		if wordCount+words > maxTokens {
			break
		}

		parts = append(parts, fmt.Sprintf("[%d] %s\n%s\nSource: %s\n", i+1, doc.Title, content, doc.URL))
		wordCount += words
	}

	return strings.Join(parts, "\n")
}

package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

const (
	embedCachePrefix = "embed:"
	embedCacheTTL    = 24 * time.Hour
)

// EmbeddingCache caches query embeddings in Redis so repeated or
// reformulated questions skip the embedding service. Keys are hashes of the
// normalized query text.
type EmbeddingCache struct {
	client *Client
}

// NewEmbeddingCache creates a new embedding cache
func NewEmbeddingCache(client *Client) *EmbeddingCache {
	return &EmbeddingCache{client: client}
}

func embedKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return embedCachePrefix + hex.EncodeToString(sum[:])
}

// Get retrieves a cached embedding for a query. A miss returns nil, nil.
func (c *EmbeddingCache) Get(ctx context.Context, query string) ([]float32, error) {
	data, err := c.client.rdb.Get(ctx, embedKey(query)).Bytes()
	if err != nil {
		return nil, nil // Cache miss
	}

	var vector []float32
	if err := json.Unmarshal(data, &vector); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedding: %w", err)
	}

	return vector, nil
}

// Set caches an embedding for a query
func (c *EmbeddingCache) Set(ctx context.Context, query string, vector []float32) error {
	data, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}

	return c.client.rdb.Set(ctx, embedKey(query), data, embedCacheTTL).Err()
}

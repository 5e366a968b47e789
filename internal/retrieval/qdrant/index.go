package qdrant

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"github.com/hfakhoury/majalla-chat/internal/retrieval"
)

// Config holds Qdrant connection configuration.
type Config struct {
	// URL is the Qdrant server address (e.g., "https://example.qdrant.io:6334").
	URL string

	// CollectionName is the name of the collection to search.
	CollectionName string

	// APIKey is optional API key for authentication.
	APIKey string
}

// Index implements retrieval.Index on a Qdrant collection. Hybrid ranking
// fuses a plain dense query with a dense query restricted to full-text
// matches on the content field, using reciprocal rank fusion.
type Index struct {
	client         *qdrant.Client
	collectionName string
}

// New creates a new Qdrant-backed index.
func New(cfg Config) (*Index, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}

	parsedURL := cfg.URL
	if !strings.HasPrefix(parsedURL, "http://") && !strings.HasPrefix(parsedURL, "https://") {
		parsedURL = "https://" + parsedURL
	}

	u, err := url.Parse(parsedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse qdrant url: %w", err)
	}

	host := u.Hostname()
	port := 6334 // default gRPC port
	if u.Port() != "" {
		p, err := strconv.Atoi(u.Port())
		if err != nil {
			return nil, fmt.Errorf("invalid port: %w", err)
		}
		port = p
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &Index{
		client:         client,
		collectionName: cfg.CollectionName,
	}, nil
}

// Search implements retrieval.Index.
func (i *Index) Search(ctx context.Context, queryText string, queryVector []float32, topK int) ([]retrieval.Document, error) {
	limit := uint64(topK)

	points, err := i.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: i.collectionName,
		Prefetch: []*qdrant.PrefetchQuery{
			{
				Query: qdrant.NewQuery(queryVector...),
				Limit: &limit,
			},
			{
				Query: qdrant.NewQuery(queryVector...),
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						qdrant.NewMatchText("content", queryText),
					},
				},
				Limit: &limit,
			},
		},
		Query:       qdrant.NewQueryFusion(qdrant.Fusion_RRF),
		Limit:       &limit,
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}

	docs := make([]retrieval.Document, 0, len(points))
	for _, point := range points {
		doc := retrieval.Document{Score: float64(point.Score)}

		if point.Id != nil {
			if uuid := point.Id.GetUuid(); uuid != "" {
				doc.ID = uuid
			} else if num := point.Id.GetNum(); num != 0 {
				doc.ID = fmt.Sprintf("%d", num)
			}
		}

		for k, v := range point.Payload {
			switch k {
			case "title":
				doc.Title = v.GetStringValue()
			case "url":
				doc.URL = v.GetStringValue()
			case "summary":
				doc.Summary = v.GetStringValue()
			case "content":
				doc.Content = v.GetStringValue()
			}
		}

		docs = append(docs, doc)
	}

	return docs, nil
}

// Close releases the underlying gRPC connection.
func (i *Index) Close() error {
	return i.client.Close()
}

// Compile-time check that Index implements retrieval.Index.
var _ retrieval.Index = (*Index)(nil)

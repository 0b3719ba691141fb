package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Handit-AI/invoice-copilot/internal/logging"
)

const (
	// DefaultNamespace is used when a query does not name a namespace.
	DefaultNamespace = "example-namespace"

	// DefaultTopK is used when a query does not set a result count.
	DefaultTopK = 10

	// MaxTopK is the upper bound the search service accepts.
	MaxTopK = 10000

	apiVersion = "2025-01"
)

// Config holds the settings required to reach the vector index.
type Config struct {
	APIKey    string
	IndexHost string // Full index host URL, e.g. https://my-index-abc123.svc.pinecone.io
	IndexName string
	Namespace string        // Default namespace for queries that omit one
	Timeout   time.Duration // HTTP timeout (default: 30s)
}

// Client queries a Pinecone index with integrated embeddings. The index
// embeds query text server-side, so the client only sends text and filters.
type Client struct {
	cfg  Config
	http *http.Client
}

// Query describes a single search request.
type Query struct {
	Text      string
	Namespace string
	TopK      int
	Filter    map[string]any
}

// Match is a single search hit, best-first.
type Match struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

// New creates a search client. Configuration completeness is checked per
// request so a partially configured server can still serve file operations.
func New(cfg Config) *Client {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type searchRequest struct {
	Query  searchQuery `json:"query"`
	Fields []string    `json:"fields,omitempty"`
}

type searchQuery struct {
	Inputs map[string]string `json:"inputs"`
	TopK   int               `json:"top_k"`
	Filter map[string]any    `json:"filter,omitempty"`
}

type searchResponse struct {
	Result struct {
		Hits []struct {
			ID     string         `json:"_id"`
			Score  float64        `json:"_score"`
			Fields map[string]any `json:"fields"`
		} `json:"hits"`
	} `json:"result"`
}

// Search runs a semantic text search against the index and returns matches
// ordered best-first. A missing API key, index host or index name is a
// ConfigurationError. Transient upstream failures are retried exactly once
// before surfacing as an UpstreamError.
func (c *Client) Search(ctx context.Context, q Query) ([]Match, error) {
	if c.cfg.APIKey == "" {
		return nil, &ConfigurationError{Field: "api_key"}
	}
	if c.cfg.IndexHost == "" {
		return nil, &ConfigurationError{Field: "index_host"}
	}
	if c.cfg.IndexName == "" {
		return nil, &ConfigurationError{Field: "index_name"}
	}
	if strings.TrimSpace(q.Text) == "" {
		return nil, fmt.Errorf("query text is empty")
	}

	namespace := q.Namespace
	if namespace == "" {
		namespace = c.cfg.Namespace
	}
	topK := q.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}

	body := searchRequest{
		Query: searchQuery{
			Inputs: map[string]string{"text": q.Text},
			TopK:   topK,
			Filter: q.Filter,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/records/namespaces/%s/search",
		strings.TrimSuffix(c.cfg.IndexHost, "/"), namespace)

	// One immediate retry on transient failures
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		matches, retryable, err := c.doSearch(ctx, url, payload)
		if err == nil {
			logging.Debug("semantic search",
				"namespace", namespace,
				"top_k", topK,
				"matches", len(matches))
			return matches, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			break
		}
		logging.Warn("semantic search retrying", "error", err.Error())
	}

	if ue, ok := lastErr.(*UpstreamError); ok {
		return nil, ue
	}
	return nil, &UpstreamError{Message: lastErr.Error(), Err: lastErr}
}

// doSearch performs one HTTP round trip. The second return value reports
// whether the failure is worth retrying.
func (c *Client) doSearch(ctx context.Context, url string, payload []byte) ([]Match, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Api-Key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Pinecone-API-Version", apiVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, retryable, &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(data)),
		}
	}

	var parsed searchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, false, fmt.Errorf("failed to parse search response: %w", err)
	}

	matches := make([]Match, 0, len(parsed.Result.Hits))
	for _, hit := range parsed.Result.Hits {
		matches = append(matches, Match{
			ID:       hit.ID,
			Score:    hit.Score,
			Metadata: hit.Fields,
		})
	}
	return matches, false, nil
}

// SearchByCategory searches within a single document category.
func (c *Client) SearchByCategory(ctx context.Context, text, category string, topK int) ([]Match, error) {
	return c.Search(ctx, Query{
		Text: text,
		TopK: topK,
		Filter: map[string]any{
			"category": map[string]any{"$eq": category},
		},
	})
}

// SearchByFilename searches within a single source document.
func (c *Client) SearchByFilename(ctx context.Context, text, filename string, topK int) ([]Match, error) {
	return c.Search(ctx, Query{
		Text: text,
		TopK: topK,
		Filter: map[string]any{
			"original_filename": map[string]any{"$eq": filename},
		},
	})
}

// Package linkup provides a client for the Linkup web-search API.
package linkup

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.linkup.so/v1"

	// maxRetryAttempts bounds retries on 429/5xx responses.
	maxRetryAttempts = 3
)

// Depth selects how thorough a search is.
type Depth string

const (
	DepthStandard Depth = "standard"
	DepthDeep     Depth = "deep"
)

// OutputType selects the response shape.
type OutputType string

const (
	// OutputSearchResults returns ranked documents with snippets.
	OutputSearchResults OutputType = "searchResults"
	// OutputSourcedAnswer returns a synthesized answer plus its sources.
	OutputSourcedAnswer OutputType = "sourcedAnswer"
)

// Client performs web searches against the Linkup API.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest is the request body for POST /search.
type SearchRequest struct {
	Query      string     `json:"q"`
	Depth      Depth      `json:"depth,omitempty"`
	OutputType OutputType `json:"outputType,omitempty"`
	MaxResults int        `json:"maxResults,omitempty"`
}

// Result is a single ranked document or answer source.
type Result struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Snippet string `json:"content"`
}

// SearchResponse is the parsed API response. Answer is set for
// sourcedAnswer requests; Results is set for both output types (sources
// are folded into Results for sourcedAnswer).
type SearchResponse struct {
	Answer  string   `json:"answer,omitempty"`
	Results []Result `json:"results,omitempty"`
}

// rawResponse covers both wire shapes the API returns.
type rawResponse struct {
	Answer  string   `json:"answer"`
	Sources []Result `json:"sources"`
	Results []Result `json:"results"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) { c.baseURL = url }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRateLimit caps outbound searches at n requests per second.
func WithRateLimit(n float64) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(n), 1)
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Linkup API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// postWithRetry sends the payload with exponential backoff on transient
// failures. Returns the response body and status code of the final attempt.
func (c *httpClient) postWithRetry(ctx context.Context, url string, payload []byte) ([]byte, int, error) {
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxRetryAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, 0, eris.Wrap(err, "linkup: create request")
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxRetryAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "linkup: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxRetryAttempts {
			lastErr = eris.Errorf("linkup: status %d: %s", resp.StatusCode, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

func (c *httpClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if req.Query == "" {
		return nil, eris.New("linkup: query is required")
	}
	if req.Depth == "" {
		req.Depth = DepthStandard
	}
	if req.OutputType == "" {
		req.OutputType = OutputSearchResults
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "linkup: rate limiter")
		}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "linkup: marshal request")
	}

	body, statusCode, err := c.postWithRetry(ctx, c.baseURL+"/search", payload)
	if err != nil {
		return nil, eris.Wrap(err, "linkup: send request")
	}

	// Linkup returns 422 for queries it cannot answer. Treat as empty
	// results rather than an error.
	if statusCode == http.StatusUnprocessableEntity {
		return &SearchResponse{}, nil
	}

	if statusCode != http.StatusOK {
		return nil, eris.Errorf("linkup: unexpected status %d: %s", statusCode, string(body))
	}

	var raw rawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, eris.Wrap(err, "linkup: unmarshal response")
	}

	out := &SearchResponse{Answer: raw.Answer, Results: raw.Results}
	if len(out.Results) == 0 && len(raw.Sources) > 0 {
		out.Results = raw.Sources
	}
	if req.MaxResults > 0 && len(out.Results) > req.MaxResults {
		out.Results = out.Results[:req.MaxResults]
	}
	return out, nil
}

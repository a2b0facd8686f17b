// File: internal/osv/client.go
package osv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/cyberhealth-cli/internal/config"
	"github.com/xkilldash9x/cyberhealth-cli/internal/network"
)

// json handles the OSV payloads; advisory batches can run to megabytes, so
// the jsoniter decoder is worth having over encoding/json.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HTTPDoer is the minimal HTTP client surface the OSV client needs,
// satisfied by *network.Client and easy to fake in tests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries the OSV advisory service. It is safe for concurrent use.
type Client struct {
	cfg     config.OSVConfig
	httpc   HTTPDoer
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates an OSV client. A nil httpc falls back to the default
// tuned network client.
func NewClient(cfg config.OSVConfig, httpc HTTPDoer, logger *zap.Logger) *Client {
	if httpc == nil {
		httpc = network.NewClient(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 5.0
	}
	return &Client{
		cfg:     cfg,
		httpc:   httpc,
		limiter: rate.NewLimiter(rate.Limit(limit), 1),
		logger:  logger.Named("osv_client"),
	}
}

// QueryBatch looks up advisories for every item via /v1/querybatch and pairs
// the responses back to the queries by index. The returned slice preserves
// the input order, which the normalizer's dedup semantics rely on.
func (c *Client) QueryBatch(ctx context.Context, items []QueryItem) ([]BatchResult, error) {
	if len(items) == 0 {
		return nil, nil
	}

	req := batchRequest{Queries: make([]Query, len(items))}
	for i, it := range items {
		req.Queries[i] = Query{
			Package: Package{Name: it.Name, Ecosystem: c.cfg.Ecosystem},
			Version: it.Version,
		}
	}

	var resp batchResponse
	if err := c.postJSON(ctx, c.cfg.BatchEndpoint, req, &resp); err != nil {
		return nil, fmt.Errorf("osv batch query failed: %w", err)
	}

	results := make([]BatchResult, len(items))
	for i, it := range items {
		r := BatchResult{Name: it.Name, Version: it.Version}
		if i < len(resp.Results) {
			r.Vulns = resp.Results[i].Vulns
		}
		results[i] = r
	}

	c.logger.Debug("OSV batch query complete",
		zap.Int("queries", len(items)),
		zap.Int("results", len(resp.Results)))
	return results, nil
}

// Query looks up advisories for a single package version via /v1/query.
func (c *Client) Query(ctx context.Context, item QueryItem) (BatchResult, error) {
	req := Query{
		Package: Package{Name: item.Name, Ecosystem: c.cfg.Ecosystem},
		Version: item.Version,
	}

	var resp queryResponse
	if err := c.postJSON(ctx, c.cfg.QueryEndpoint, req, &resp); err != nil {
		return BatchResult{}, fmt.Errorf("osv query for %s %s failed: %w", item.Name, item.Version, err)
	}
	return BatchResult{Name: item.Name, Version: item.Version, Vulns: resp.Vulns}, nil
}

// postJSON posts the payload and decodes the response, retrying transient
// failures (network errors and 5xx/429 responses) with a doubling delay.
func (c *Client) postJSON(ctx context.Context, endpoint string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request payload: %w", err)
	}

	attempts := c.cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	delay := 500 * time.Millisecond
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		lastErr = c.doOnce(ctx, endpoint, body, out)
		if lastErr == nil {
			return nil
		}

		var re *retryableError
		if !errors.As(lastErr, &re) || attempt == attempts {
			break
		}

		c.logger.Warn("Transient OSV failure, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(lastErr))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, endpoint string, body []byte, out any) error {
	reqCtx := ctx
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return &retryableError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body for a useful error message.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("unexpected status %d from %s: %s", resp.StatusCode, endpoint, snippet)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return &retryableError{err: err}
		}
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// retryableError marks failures worth another attempt.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// File: internal/registry/registry.go

// Package registry looks up the latest published version of a package so
// report remediation lines can name a concrete upgrade target.
package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/cyberhealth-cli/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LatestPlaceholder is returned when a lookup fails. Report rendering
// treats it as "no concrete version known".
const LatestPlaceholder = "latest"

// HTTPDoer abstracts the HTTP client for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries the PyPI JSON API for package metadata.
type Client struct {
	cfg     config.RegistryConfig
	httpc   HTTPDoer
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewClient(cfg config.RegistryConfig, httpc HTTPDoer, logger *zap.Logger) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Limit(cfg.RateLimit)
	if limit <= 0 {
		limit = rate.Inf
	}
	return &Client{
		cfg:     cfg,
		httpc:   httpc,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// LatestVersion returns the newest published version of the package.
// Lookup failures degrade to LatestPlaceholder; version enrichment must
// never fail a scan.
func (c *Client) LatestVersion(ctx context.Context, name string) string {
	if err := c.limiter.Wait(ctx); err != nil {
		return LatestPlaceholder
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	endpoint := fmt.Sprintf("%s/%s/json", c.cfg.Endpoint, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return LatestPlaceholder
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Debug("Registry lookup failed", zap.String("package", name), zap.Error(err))
		return LatestPlaceholder
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("Registry lookup returned non-200",
			zap.String("package", name),
			zap.Int("status", resp.StatusCode))
		return LatestPlaceholder
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return LatestPlaceholder
	}

	var payload struct {
		Info struct {
			Version string `json:"version"`
		} `json:"info"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Info.Version == "" {
		return LatestPlaceholder
	}
	return payload.Info.Version
}

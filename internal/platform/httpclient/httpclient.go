// Package httpclient provides the HTTP client used to fetch tool releases.
// Requests are made once; a failed download is reported, never retried.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"pybaseline/internal/platform/errors"
	"pybaseline/internal/platform/logx"
)

// Client wraps http.Client with logging and GitHub authentication.
type Client struct {
	httpClient *http.Client
	logger     logx.Logger
	config     Config
}

// Config holds the configuration for the HTTP client.
type Config struct {
	// Timeout bounds a whole request including the body.
	// Default: 5 minutes
	Timeout time.Duration

	// UserAgent is the User-Agent header value.
	// Default: "pybaseline/<version>"
	UserAgent string

	// GitHubToken is sent as a bearer token to github.com hosts.
	// Default: $GITHUB_TOKEN
	GitHubToken string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:     5 * time.Minute,
		UserAgent:   "pybaseline/dev",
		GitHubToken: os.Getenv("GITHUB_TOKEN"),
	}
}

// New creates a client, filling zero values from DefaultConfig.
func New(config Config, logger logx.Logger) *Client {
	d := DefaultConfig()
	if config.Timeout == 0 {
		config.Timeout = d.Timeout
	}
	if config.UserAgent == "" {
		config.UserAgent = d.UserAgent
	}

	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger.With("component", "httpclient"),
		config:     config,
	}
}

// Get performs a single GET request. Non-2xx responses are errors.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request for %s", rawURL)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	if c.config.GitHubToken != "" && isGitHub(req.URL) {
		req.Header.Set("Authorization", "Bearer "+c.config.GitHubToken)
	}

	c.logger.Debug("HTTP request", "method", http.MethodGet, "url", rawURL)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDownload, "GET %s: %v", rawURL, err)
	}
	c.logger.Debug("HTTP response received",
		"url", rawURL,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if err := CheckStatus(resp); err != nil {
		resp.Body.Close()
		return nil, errors.Wrapf(err, "GET %s", rawURL)
	}
	return resp, nil
}

// Download streams the body of rawURL into w and returns the byte count.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, errors.Wrapf(errors.ErrDownload, "read %s: %v", rawURL, err)
	}
	return n, nil
}

// Fetch reads a small response body fully.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := c.Download(ctx, rawURL, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CheckStatus maps non-2xx responses to ErrDownload.
func CheckStatus(resp *http.Response) error {
	if resp == nil {
		return errors.New("response is nil")
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return errors.Wrapf(errors.ErrDownload, "HTTP %d", resp.StatusCode)
}

func isGitHub(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	return host == "github.com" || strings.HasSuffix(host, ".github.com") ||
		strings.HasSuffix(host, ".githubusercontent.com")
}

// String returns a human-readable representation of the client configuration.
func (c *Client) String() string {
	return fmt.Sprintf("HTTPClient{timeout=%s, auth=%t}", c.config.Timeout, c.config.GitHubToken != "")
}

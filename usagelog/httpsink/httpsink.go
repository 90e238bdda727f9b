// Package httpsink forwards usage entries to an HTTP analytics collector.
// It is activated by environment credentials (FromEnv); without them the
// usage log behaves identically, entries are just not forwarded.
package httpsink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/skosovsky/unversion/usagelog"
)

// Environment variables that activate and configure the sink.
const (
	EnvURL       = "UNVERSION_ANALYTICS_URL"
	EnvPublicKey = "UNVERSION_ANALYTICS_PUBLIC_KEY"
	EnvSecretKey = "UNVERSION_ANALYTICS_SECRET_KEY"
)

// Sentinel errors. Callers should use errors.Is.
var (
	// ErrHTTPStatus indicates the collector responded with a non-2xx status.
	ErrHTTPStatus = errors.New("httpsink: unexpected HTTP status")
)

const defaultUserAgent = "unversion-usagelog/1.0"

var _ usagelog.Sink = (*Sink)(nil)

// Sink POSTs each entry as a JSON document to a collector endpoint,
// authenticated with a public/secret key pair via HTTP basic auth.
type Sink struct {
	url        string
	httpClient *http.Client
	publicKey  string
	secretKey  string
}

// Option configures a Sink.
type Option func(*Sink)

// WithHTTPClient sets the HTTP client. Default has a 30s timeout.
// If c is nil, the default client is left unchanged.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Sink) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithCredentials sets the public/secret key pair sent as basic auth.
func WithCredentials(publicKey, secretKey string) Option {
	return func(s *Sink) {
		s.publicKey = publicKey
		s.secretKey = secretKey
	}
}

// New creates a Sink posting to endpoint. endpoint must be a valid URL.
func New(endpoint string, opts ...Option) (*Sink, error) {
	endpoint = strings.TrimSuffix(endpoint, "/")
	if endpoint == "" {
		return nil, fmt.Errorf("httpsink: endpoint must not be empty")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Scheme == "" {
		return nil, fmt.Errorf("httpsink: invalid endpoint %q", endpoint)
	}
	s := &Sink{
		url:        endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// FromEnv builds a Sink from environment credentials. Returns (nil, false)
// when the URL or either key is absent, which callers should treat as
// "forwarding disabled", not an error.
func FromEnv(opts ...Option) (*Sink, bool) {
	endpoint := os.Getenv(EnvURL)
	publicKey := os.Getenv(EnvPublicKey)
	secretKey := os.Getenv(EnvSecretKey)
	if endpoint == "" || publicKey == "" || secretKey == "" {
		return nil, false
	}
	s, err := New(endpoint, append([]Option{WithCredentials(publicKey, secretKey)}, opts...)...)
	if err != nil {
		return nil, false
	}
	return s, true
}

// Write posts one entry. Non-2xx responses return ErrHTTPStatus.
func (s *Sink) Write(ctx context.Context, e usagelog.Entry) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("httpsink: encode entry: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("httpsink: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)
	if s.publicKey != "" {
		req.SetBasicAuth(s.publicKey, s.secretKey)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpsink: post entry: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}
	return nil
}

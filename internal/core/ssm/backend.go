package ssm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
)

// SSM REST paths, relative to the session endpoint.
const (
	SetupPath    = "/v1/sessions/setup"
	TeardownPath = "/v1/sessions/teardown"
	RenewalPath  = "/v1/sessions/renewal-license-wv"
)

// DefaultTimeout bounds a single SSM call.
const DefaultTimeout = 10 * time.Second

// maxSetupBody caps the setup response we are willing to read.
const maxSetupBody = 64 << 10

// Backend performs the SSM lifecycle calls.
type Backend interface {
	// Setup opens a session and returns the backend-issued session token.
	Setup(ctx context.Context, endpoint, wholeToken string) (string, error)

	// Teardown closes the session identified by sessionToken.
	Teardown(ctx context.Context, endpoint, sessionToken string) error
}

// HTTPBackend talks to the SSM REST API over HTTP.
type HTTPBackend struct {
	client *http.Client
}

// BackendOption configures an HTTPBackend.
type BackendOption func(*HTTPBackend)

// WithHTTPClient sets the HTTP client used for SSM calls.
func WithHTTPClient(c *http.Client) BackendOption {
	return func(b *HTTPBackend) {
		if c != nil {
			b.client = c
		}
	}
}

// WithTimeout sets the per-call timeout on the default client.
func WithTimeout(d time.Duration) BackendOption {
	return func(b *HTTPBackend) {
		if d > 0 {
			b.client.Timeout = d
		}
	}
}

// NewHTTPBackend creates a new HTTP backend.
func NewHTTPBackend(opts ...BackendOption) *HTTPBackend {
	b := &HTTPBackend{
		client: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// setupResponse is the JSON body returned by a successful setup.
type setupResponse struct {
	SessionToken string `json:"sessionToken"`
}

// Setup issues POST {endpoint}/v1/sessions/setup with nv-authorizations set
// to the whole token. Anything but a 200 carrying a session token is
// reported as domain.ErrSetupFailed.
func (b *HTTPBackend) Setup(ctx context.Context, endpoint, wholeToken string) (string, error) {
	resp, err := b.post(ctx, JoinPath(endpoint, SetupPath), wholeToken)
	if err != nil {
		return "", domain.ErrSetupFailed.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxSetupBody))
		return "", domain.ErrSetupFailed.WithDetails(fmt.Sprintf("status %d", resp.StatusCode))
	}

	var body setupResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxSetupBody)).Decode(&body); err != nil {
		return "", domain.ErrSetupFailed.WithDetails("malformed setup response").WithCause(err)
	}
	if body.SessionToken == "" {
		return "", domain.ErrSetupFailed.WithDetails("setup response has no sessionToken")
	}

	return body.SessionToken, nil
}

// Teardown issues POST {endpoint}/v1/sessions/teardown with nv-authorizations
// set to the session token.
func (b *HTTPBackend) Teardown(ctx context.Context, endpoint, sessionToken string) error {
	resp, err := b.post(ctx, JoinPath(endpoint, TeardownPath), sessionToken)
	if err != nil {
		return domain.ErrTeardownFailed.WithCause(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxSetupBody))

	if resp.StatusCode != http.StatusOK {
		return domain.ErrTeardownFailed.WithDetails(fmt.Sprintf("status %d", resp.StatusCode))
	}
	return nil
}

func (b *HTTPBackend) post(ctx context.Context, url, authorization string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(domain.HeaderAuthorizations, authorization)
	return b.client.Do(req)
}

// JoinPath appends an SSM path to an endpoint, tolerating a trailing slash.
func JoinPath(endpoint, path string) string {
	return strings.TrimRight(endpoint, "/") + path
}

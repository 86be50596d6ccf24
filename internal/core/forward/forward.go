// Package forward sends decorated license requests to their target.
package forward

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
)

const (
	// DefaultTimeout bounds one license round trip.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxBody caps a license response body.
	DefaultMaxBody int64 = 1 << 20
)

// Forwarder executes license requests over HTTP.
type Forwarder struct {
	client  *http.Client
	maxBody int64
}

// Option configures a Forwarder.
type Option func(*Forwarder)

// WithTimeout sets the round-trip timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Forwarder) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithMaxBody sets the response body cap.
func WithMaxBody(n int64) Option {
	return func(f *Forwarder) {
		if n > 0 {
			f.maxBody = n
		}
	}
}

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Forwarder) {
		if rt != nil {
			f.client.Transport = rt
		}
	}
}

// New creates a Forwarder. Redirects are never followed.
func New(opts ...Option) *Forwarder {
	f := &Forwarder{
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		maxBody: DefaultMaxBody,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Forward POSTs req to req.URL and returns the raw response.
//
// Any HTTP status is returned as a response; only a missing target,
// a transport failure or an oversized body is an error.
func (f *Forwarder) Forward(ctx context.Context, req *domain.LicenseRequest) (*domain.LicenseResponse, error) {
	if req == nil || req.URL == "" {
		return nil, domain.ErrLicenseTargetUnknown
	}
	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, domain.ErrLicenseTargetUnknown.WithDetails(req.URL)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(req.Body))
	if err != nil {
		return nil, domain.ErrLicenseUpstream.WithCause(err)
	}
	CopyHeaders(httpReq.Header, req.Headers)

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, domain.ErrLicenseUpstream.WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, domain.ErrLicenseUpstream.WithCause(err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, domain.ErrLicenseUpstream.WithDetails(fmt.Sprintf("response exceeds %d bytes", f.maxBody))
	}

	out := &domain.LicenseResponse{
		StatusCode: resp.StatusCode,
		Headers:    make(http.Header),
		Body:       body,
	}
	CopyHeaders(out.Headers, resp.Header)
	return out, nil
}

// CopyHeaders copies HTTP headers, excluding hop-by-hop headers that
// must not be forwarded between connections.
func CopyHeaders(dst, src http.Header) {
	for k, vv := range src {
		if isHopByHop(k) {
			continue
		}
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

func isHopByHop(name string) bool {
	switch strings.ToLower(name) {
	case "connection", "keep-alive", "proxy-connection", "proxy-authenticate",
		"proxy-authorization", "transfer-encoding", "te", "trailer", "upgrade",
		"host", "content-length":
		return true
	}
	return false
}

// IsTimeout reports whether err came from a round trip that timed out.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

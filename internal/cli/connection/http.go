package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yndnr/ssmproxy-go/internal/infra/buildinfo"
)

// DefaultTimeout bounds a single CLI request.
const DefaultTimeout = 30 * time.Second

// HTTPClient talks to an ssmproxy server.
type HTTPClient struct {
	baseURL   string
	client    *http.Client
	userAgent string
}

// UnixScheme prefixes a server address naming the local admin socket,
// e.g. unix:///run/ssmproxy/admin.sock.
const UnixScheme = "unix://"

// NewHTTPClient creates a client for server. A missing scheme defaults to
// http://.
func NewHTTPClient(server string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &HTTPClient{
		client:    &http.Client{Timeout: timeout},
		userAgent: "ssmproxy-cli/" + buildinfo.Get().Version,
	}

	if socket, ok := strings.CutPrefix(server, UnixScheme); ok {
		c.baseURL = "http://localhost"
		c.client.Transport = &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socket)
			},
		}
		return c
	}

	c.baseURL = strings.TrimRight(server, "/")
	if !strings.HasPrefix(c.baseURL, "http://") && !strings.HasPrefix(c.baseURL, "https://") {
		c.baseURL = "http://" + c.baseURL
	}
	return c
}

// BaseURL returns the server base URL.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, nil)
}

// Delete performs a DELETE request.
func (c *HTTPClient) Delete(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Post performs a POST request with a JSON body. A nil body sends none.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	if body == nil {
		return c.do(ctx, http.MethodPost, path, nil, nil)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}
	h := http.Header{"Content-Type": {"application/json"}}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(data), h)
}

// Put performs a PUT request with a JSON body.
func (c *HTTPClient) Put(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}
	h := http.Header{"Content-Type": {"application/json"}}
	return c.do(ctx, http.MethodPut, path, bytes.NewReader(data), h)
}

// PostBytes performs a POST request with a raw body and extra headers.
func (c *HTTPClient) PostBytes(ctx context.Context, path string, body []byte, header http.Header) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(body), header)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// APIError is an error answer from the server.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// IsCode reports whether err is an APIError carrying code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

type envelope struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

// ParseResponse unwraps a response envelope and decodes its data into
// target. The body is always closed. target may be nil.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err == nil {
			apiErr.Code, apiErr.Message, apiErr.RequestID = env.Code, env.Message, env.RequestID
		}
		return apiErr
	}
	if resp.StatusCode == http.StatusNoContent || target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, target); err != nil {
		return fmt.Errorf("parse response data: %w", err)
	}
	return nil
}

// ReadRaw reads a non-envelope body such as a license. Error answers are
// still decoded as envelopes when possible. The body is always closed.
func ReadRaw(resp *http.Response, limit int64) ([]byte, error) {
	if resp.StatusCode >= 400 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		return nil, ParseResponse(resp, nil)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return data, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	return data, nil
}

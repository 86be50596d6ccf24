package domain

import "net/http"

// Header names and values set on outgoing license requests.
const (
	HeaderAuthorizations = "nv-authorizations"
	HeaderAccept         = "Accept"
	HeaderContentType    = "content-type"

	ContentTypeOctetStream = "application/octet-stream"
	ContentTypeJSON        = "application/json"
)

// LicenseRequest describes an outgoing license request issued by the player.
type LicenseRequest struct {
	URL     string
	Headers http.Header
	Body    []byte
}

// Clone returns a deep copy of the request.
func (r *LicenseRequest) Clone() *LicenseRequest {
	if r == nil {
		return nil
	}
	c := &LicenseRequest{
		URL:     r.URL,
		Headers: r.Headers.Clone(),
	}
	if c.Headers == nil {
		c.Headers = make(http.Header)
	}
	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}
	return c
}

// LicenseResponse is the raw response returned by a license server.
type LicenseResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// OK reports whether the license server answered with a 2xx status.
func (r *LicenseResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// RequestKind classifies how a license request was framed.
type RequestKind string

const (
	RequestPassthrough RequestKind = "passthrough"
	RequestDirect      RequestKind = "direct"
	RequestInitial     RequestKind = "initial"
	RequestRenewal     RequestKind = "renewal"
)

// ResponseKind classifies how a license response was interpreted.
type ResponseKind string

const (
	ResponseRaw      ResponseKind = "raw"
	ResponseEnvelope ResponseKind = "envelope"
)

package intercept

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
	"github.com/yndnr/ssmproxy-go/internal/core/ssm"
)

type stubBackend struct {
	token string
	err   error
}

func (b stubBackend) Setup(context.Context, string, string) (string, error) { return b.token, b.err }
func (b stubBackend) Teardown(context.Context, string, string) error        { return nil }

func newSession(t *testing.T, b ssm.Backend) *ssm.Session {
	t.Helper()
	s, err := ssm.NewSession(domain.Credentials{
		WholeToken:      "abc,def",
		LicenseURI:      "https://license.example.com/wv",
		SessionEndpoint: "https://ssm.example.com",
	}, 1, b)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return s
}

func licenseReq() *domain.LicenseRequest {
	return &domain.LicenseRequest{
		URL:     "https://license.example.com/wv",
		Headers: http.Header{"X-Player": []string{"cast"}},
		Body:    []byte{0x08, 0x04, 0xff, 0x00},
	}
}

func TestTransformRequest_Passthrough(t *testing.T) {
	req := licenseReq()
	rep := &recordingReporter{}

	for _, creds := range []*domain.Credentials{nil, {LicenseURI: "https://lic"}} {
		out, kind, err := TransformRequest(context.Background(), req, creds, nil, rep)
		if err != nil {
			t.Fatalf("TransformRequest() error = %v", err)
		}
		if kind != domain.RequestPassthrough {
			t.Errorf("kind = %s, want %s", kind, domain.RequestPassthrough)
		}
		if out.Headers.Get(domain.HeaderAuthorizations) != "" {
			t.Error("pass-through must not add nv-authorizations")
		}
		if len(out.Headers) != 1 || out.URL != req.URL || string(out.Body) != string(req.Body) {
			t.Errorf("pass-through changed the request: %+v", out)
		}
	}
	if rep.count() != 0 {
		t.Errorf("pass-through reported %d errors", rep.count())
	}
}

func TestTransformRequest_Direct(t *testing.T) {
	req := licenseReq()
	creds := &domain.Credentials{WholeToken: "abc,def", LicenseURI: "https://lic"}

	out, kind, err := TransformRequest(context.Background(), req, creds, nil, nil)
	if err != nil {
		t.Fatalf("TransformRequest() error = %v", err)
	}
	if kind != domain.RequestDirect {
		t.Errorf("kind = %s, want %s", kind, domain.RequestDirect)
	}
	if got := out.Headers.Get(domain.HeaderAuthorizations); got != "abc,def" {
		t.Errorf("nv-authorizations = %q, want %q", got, "abc,def")
	}
	// No session: no forced defaults.
	if out.Headers.Get(domain.HeaderAccept) != "" || out.Headers.Get(domain.HeaderContentType) != "" {
		t.Errorf("direct path must not force Accept/content-type: %v", out.Headers)
	}
	if out.Headers.Get("nv-authorisations") != "" {
		t.Error("misspelled header must never be emitted")
	}
}

func TestTransformRequest_MissingLicenseURI(t *testing.T) {
	rep := &recordingReporter{}
	creds := &domain.Credentials{WholeToken: "abc"}

	out, kind, err := TransformRequest(context.Background(), licenseReq(), creds, nil, rep)
	if err != nil {
		t.Fatalf("TransformRequest() error = %v", err)
	}
	if !rep.has(domain.ErrMissingLicenseURI) {
		t.Error("missing license uri should be reported")
	}
	if kind != domain.RequestDirect || out.Headers.Get(domain.HeaderAuthorizations) != "abc" {
		t.Errorf("request should still be decorated, kind=%s headers=%v", kind, out.Headers)
	}
}

func TestTransformRequest_InitialThenRenewal(t *testing.T) {
	sess := newSession(t, stubBackend{token: "xyz"})
	if err := sess.Setup(context.Background()); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	creds := &domain.Credentials{WholeToken: "abc,def", LicenseURI: "https://license.example.com/wv", SessionEndpoint: "https://ssm.example.com"}
	req := licenseReq()

	first, kind, err := TransformRequest(context.Background(), req, creds, sess, nil)
	if err != nil {
		t.Fatalf("first TransformRequest() error = %v", err)
	}
	if kind != domain.RequestInitial {
		t.Errorf("first kind = %s, want %s", kind, domain.RequestInitial)
	}
	if !sess.LicenseRequested() {
		t.Error("licenseRequested should be true after the first request")
	}
	assertHeaders(t, first.Headers, map[string]string{
		domain.HeaderAuthorizations: "abc,def,xyz",
		domain.HeaderAccept:         domain.ContentTypeOctetStream,
		domain.HeaderContentType:    domain.ContentTypeOctetStream,
	})
	if first.URL != req.URL || string(first.Body) != string(req.Body) {
		t.Error("first request must keep URL and body")
	}

	second, kind, err := TransformRequest(context.Background(), req, creds, sess, nil)
	if err != nil {
		t.Fatalf("second TransformRequest() error = %v", err)
	}
	if kind != domain.RequestRenewal {
		t.Errorf("second kind = %s, want %s", kind, domain.RequestRenewal)
	}
	if second.URL != "https://ssm.example.com/v1/sessions/renewal-license-wv" {
		t.Errorf("renewal URL = %q", second.URL)
	}
	assertHeaders(t, second.Headers, map[string]string{
		domain.HeaderAuthorizations: "abc,xyz",
		domain.HeaderAccept:         domain.ContentTypeOctetStream,
		domain.HeaderContentType:    domain.ContentTypeJSON,
	})

	var payload struct {
		Challenge string `json:"challenge"`
	}
	if err := json.Unmarshal(second.Body, &payload); err != nil {
		t.Fatalf("renewal body is not JSON: %v", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(payload.Challenge)
	if err != nil || string(decoded) != string(req.Body) {
		t.Errorf("challenge = %q, want base64 of the original body", payload.Challenge)
	}
}

func TestTransformRequest_DoesNotMutateInput(t *testing.T) {
	sess := newSession(t, stubBackend{token: "xyz"})
	_ = sess.Setup(context.Background())
	creds := &domain.Credentials{WholeToken: "abc,def", LicenseURI: "https://lic", SessionEndpoint: "https://ssm.example.com"}
	req := licenseReq()

	_, _, _ = TransformRequest(context.Background(), req, creds, sess, nil)
	_, _, _ = TransformRequest(context.Background(), req, creds, sess, nil)

	if req.URL != "https://license.example.com/wv" || len(req.Headers) != 1 || len(req.Body) != 4 {
		t.Errorf("input request was mutated: %+v", req)
	}
}

func TestTransformRequest_RenewalWithoutSessionToken(t *testing.T) {
	rep := &recordingReporter{}
	sess := newSession(t, stubBackend{err: domain.ErrSetupFailed})
	_ = sess.Setup(context.Background())
	creds := &domain.Credentials{WholeToken: "abc,def", LicenseURI: "https://lic", SessionEndpoint: "https://ssm.example.com"}
	req := licenseReq()

	first, _, _ := TransformRequest(context.Background(), req, creds, sess, rep)
	if got := first.Headers.Get(domain.HeaderAuthorizations); got != "abc,def," {
		t.Errorf("degraded first token = %q, want %q", got, "abc,def,")
	}

	second, kind, err := TransformRequest(context.Background(), req, creds, sess, rep)
	if err != nil {
		t.Fatalf("TransformRequest() error = %v", err)
	}
	if !rep.has(domain.ErrRenewalWithoutSession) {
		t.Error("renewal without a session token should be reported")
	}
	if kind != domain.RequestDirect {
		t.Errorf("kind = %s, want %s", kind, domain.RequestDirect)
	}
	if second.URL != req.URL {
		t.Errorf("fallback must keep the license URL, got %q", second.URL)
	}
	assertHeaders(t, second.Headers, map[string]string{
		domain.HeaderAuthorizations: "abc,def",
		domain.HeaderContentType:    domain.ContentTypeOctetStream,
	})
}

func TestTransformRequest_TornDownSession(t *testing.T) {
	sess := newSession(t, stubBackend{token: "xyz"})
	_ = sess.Setup(context.Background())
	_ = sess.Teardown(context.Background())
	creds := &domain.Credentials{WholeToken: "abc,def", LicenseURI: "https://lic", SessionEndpoint: "https://ssm.example.com"}

	_, _, err := TransformRequest(context.Background(), licenseReq(), creds, sess, nil)
	if !errors.Is(err, domain.ErrSessionTornDown) {
		t.Errorf("err = %v, want ErrSessionTornDown", err)
	}
}

func assertHeaders(t *testing.T, h http.Header, want map[string]string) {
	t.Helper()
	for k, v := range want {
		if got := h.Get(k); got != v {
			t.Errorf("header %s = %q, want %q", k, got, v)
		}
	}
}

package domain

import (
	"net/http"
	"testing"
)

func TestLicenseRequest_Clone(t *testing.T) {
	orig := &LicenseRequest{
		URL:     "https://lic",
		Headers: http.Header{"X-Test": []string{"a"}},
		Body:    []byte{1, 2, 3},
	}

	c := orig.Clone()
	c.Headers.Set("X-Test", "b")
	c.Body[0] = 9
	c.URL = "https://other"

	if orig.Headers.Get("X-Test") != "a" {
		t.Error("Clone() should deep copy headers")
	}
	if orig.Body[0] != 1 {
		t.Error("Clone() should deep copy body")
	}
	if orig.URL != "https://lic" {
		t.Error("Clone() should not alias URL")
	}
}

func TestLicenseRequest_CloneNilHeaders(t *testing.T) {
	c := (&LicenseRequest{URL: "u"}).Clone()
	if c.Headers == nil {
		t.Fatal("Clone() should allocate headers")
	}
	if c.Body != nil {
		t.Error("Clone() should keep a nil body nil")
	}

	var nilReq *LicenseRequest
	if nilReq.Clone() != nil {
		t.Error("Clone() of nil should be nil")
	}
}

func TestLicenseResponse_OK(t *testing.T) {
	for status, want := range map[int]bool{200: true, 204: true, 302: false, 403: false, 500: false} {
		r := &LicenseResponse{StatusCode: status}
		if got := r.OK(); got != want {
			t.Errorf("OK() for %d = %v, want %v", status, got, want)
		}
	}
}

package ssm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
)

func TestHTTPBackend_Setup(t *testing.T) {
	var gotAuth, gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("nv-authorizations")
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"sessionToken": "xyz"})
	}))
	defer srv.Close()

	b := NewHTTPBackend()
	token, err := b.Setup(context.Background(), srv.URL, "abc,def")
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if token != "xyz" {
		t.Errorf("token = %q, want %q", token, "xyz")
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if gotPath != "/v1/sessions/setup" {
		t.Errorf("path = %q, want %q", gotPath, "/v1/sessions/setup")
	}
	if gotAuth != "abc,def" {
		t.Errorf("nv-authorizations = %q, want %q", gotAuth, "abc,def")
	}
}

func TestHTTPBackend_SetupFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "status 500",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "status 201",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"sessionToken":"xyz"}`))
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
		},
		{
			name: "missing token",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewHTTPBackend().Setup(context.Background(), srv.URL, "abc")
			if !errors.Is(err, domain.ErrSetupFailed) {
				t.Errorf("Setup() err = %v, want ErrSetupFailed", err)
			}
		})
	}
}

func TestHTTPBackend_SetupUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPBackend(WithTimeout(time.Second)).Setup(context.Background(), url, "abc")
	if !errors.Is(err, domain.ErrSetupFailed) {
		t.Errorf("Setup() err = %v, want ErrSetupFailed", err)
	}
}

func TestHTTPBackend_Teardown(t *testing.T) {
	var gotAuth, gotPath string
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("nv-authorizations")
		gotPath = r.URL.Path
		w.WriteHeader(status)
	}))
	defer srv.Close()

	b := NewHTTPBackend(WithHTTPClient(srv.Client()))
	if err := b.Teardown(context.Background(), srv.URL+"/", "xyz"); err != nil {
		t.Fatalf("Teardown() error = %v", err)
	}
	if gotPath != "/v1/sessions/teardown" {
		t.Errorf("path = %q, want %q", gotPath, "/v1/sessions/teardown")
	}
	if gotAuth != "xyz" {
		t.Errorf("nv-authorizations = %q, want %q", gotAuth, "xyz")
	}

	status = http.StatusBadGateway
	err := b.Teardown(context.Background(), srv.URL, "xyz")
	if !errors.Is(err, domain.ErrTeardownFailed) {
		t.Errorf("Teardown() err = %v, want ErrTeardownFailed", err)
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("error %q should mention the status", err)
	}
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		endpoint, path, want string
	}{
		{"https://ssm", SetupPath, "https://ssm/v1/sessions/setup"},
		{"https://ssm/", SetupPath, "https://ssm/v1/sessions/setup"},
		{"https://ssm/base", RenewalPath, "https://ssm/base/v1/sessions/renewal-license-wv"},
	}
	for _, tt := range tests {
		if got := JoinPath(tt.endpoint, tt.path); got != tt.want {
			t.Errorf("JoinPath(%q, %q) = %q, want %q", tt.endpoint, tt.path, got, tt.want)
		}
	}
}

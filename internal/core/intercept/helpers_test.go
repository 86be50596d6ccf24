package intercept

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
)

// recordingReporter collects reported errors.
type recordingReporter struct {
	mu   sync.Mutex
	errs []error
}

func (r *recordingReporter) Report(_ context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recordingReporter) has(target *domain.DomainError) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, err := range r.errs {
		if domain.IsDomainError(err, target.Code) {
			return true
		}
	}
	return false
}

func (r *recordingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

// fakeSSM is an httptest SSM backend.
type fakeSSM struct {
	*httptest.Server

	mu          sync.Mutex
	setupStatus int
	token       string
	setupAuth   []string
	teardowns   []string
}

func newFakeSSM(t *testing.T, setupStatus int, token string) *fakeSSM {
	t.Helper()
	f := &fakeSSM{setupStatus: setupStatus, token: token}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sessions/setup", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.setupAuth = append(f.setupAuth, r.Header.Get(domain.HeaderAuthorizations))
		status, token := f.setupStatus, f.token
		f.mu.Unlock()

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"sessionToken": token})
	})
	mux.HandleFunc("POST /v1/sessions/teardown", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.teardowns = append(f.teardowns, r.Header.Get(domain.HeaderAuthorizations))
		f.mu.Unlock()
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeSSM) teardownTokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.teardowns...)
}

func loadRequest(custom map[string]any) *domain.LoadRequest {
	return &domain.LoadRequest{
		RequestID: 7,
		Media: &domain.MediaInfo{
			ContentID:  "movie-1",
			CustomData: custom,
		},
	}
}

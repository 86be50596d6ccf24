package metric

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
)

type staticStats struct {
	receivers int
	states    map[domain.SessionState]int
}

func (s staticStats) Len() int                                   { return s.receivers }
func (s staticStats) SessionStates() map[domain.SessionState]int { return s.states }

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.Failures == nil || r.LicenseRequests == nil || r.RequestsTotal == nil {
		t.Fatal("NewRegistry() left metrics nil")
	}

	r.Failures.WithLabelValues("SSM-SESS-5020").Inc()
	r.Failures.WithLabelValues("SSM-SESS-5020").Inc()
	if got := testutil.ToFloat64(r.Failures.WithLabelValues("SSM-SESS-5020")); got != 2 {
		t.Errorf("failures_total = %v, want 2", got)
	}
}

func TestRegistry_ObserveSSMCall(t *testing.T) {
	r := NewRegistry()
	r.ObserveSSMCall("setup", nil, 10*time.Millisecond)
	r.ObserveSSMCall("setup", errors.New("boom"), time.Millisecond)

	if got := testutil.ToFloat64(r.SSMCalls.WithLabelValues("setup", "ok")); got != 1 {
		t.Errorf("ok calls = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.SSMCalls.WithLabelValues("setup", "error")); got != 1 {
		t.Errorf("error calls = %v, want 1", got)
	}
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.LicenseRequests.WithLabelValues("renewal").Inc()

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), `ssmproxy_license_requests_total{kind="renewal"} 1`) {
		t.Errorf("metrics output missing license counter:\n%s", body)
	}
}

func TestCollector(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(NewCollector(staticStats{
		receivers: 2,
		states: map[domain.SessionState]int{
			domain.SessionEstablished: 1,
		},
	}))

	expected := `
# HELP ssmproxy_receivers Registered receivers.
# TYPE ssmproxy_receivers gauge
ssmproxy_receivers 2
# HELP ssmproxy_sessions Current playback sessions by state.
# TYPE ssmproxy_sessions gauge
ssmproxy_sessions{state="established"} 1
ssmproxy_sessions{state="torn_down"} 0
ssmproxy_sessions{state="unestablished"} 0
`
	if err := testutil.GatherAndCompare(r.Gatherer(), strings.NewReader(expected), "ssmproxy_receivers", "ssmproxy_sessions"); err != nil {
		t.Error(err)
	}
}

package intercept

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
	"github.com/yndnr/ssmproxy-go/internal/telemetry/logger"
	"github.com/yndnr/ssmproxy-go/internal/telemetry/metric"
)

func TestLogReporter(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantLevel string
		wantCode  string
		wantCause string
	}{
		{"setup failed", domain.ErrSetupFailed.WithDetails("status 500"), "ERROR", "SSM-SESS-5020", ""},
		{"empty teardown", domain.ErrTeardownOnEmptySession, "WARN", "SSM-SESS-4041", ""},
		{"foreign error", errors.New("boom"), "ERROR", "unknown", ""},
		{"orphan release failed",
			domain.ErrSessionSuperseded.WithCause(domain.ErrTeardownFailed.WithDetails("status 503")),
			"WARN", "SSM-SESS-4091",
			"[SSM-SESS-5021] ssm session teardown failed: status 503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := logger.New(logger.Config{Level: "debug", Format: "json", Output: &buf})
			if err != nil {
				t.Fatalf("logger.New() error = %v", err)
			}
			ctx := logger.WithLogger(context.Background(), l)
			ctx = logger.WithReceiverID(ctx, "kitchen")

			m := metric.NewRegistry()
			NewLogReporter(m).Report(ctx, tt.err)

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("Failed to parse JSON log: %v", err)
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry["code"] != tt.wantCode {
				t.Errorf("code = %v, want %s", entry["code"], tt.wantCode)
			}
			if tt.wantCause != "" && entry["cause"] != tt.wantCause {
				t.Errorf("cause = %v, want %s", entry["cause"], tt.wantCause)
			}
			if entry["receiver_id"] != "kitchen" {
				t.Errorf("receiver_id = %v, want kitchen", entry["receiver_id"])
			}
			if got := testutil.ToFloat64(m.Failures.WithLabelValues(tt.wantCode)); got != 1 {
				t.Errorf("failures_total{code=%s} = %v, want 1", tt.wantCode, got)
			}
		})
	}
}

func TestLogReporter_NilError(t *testing.T) {
	var buf bytes.Buffer
	l, _ := logger.New(logger.Config{Level: "debug", Format: "json", Output: &buf})
	NewLogReporter(nil).Report(logger.WithLogger(context.Background(), l), nil)
	if strings.TrimSpace(buf.String()) != "" {
		t.Errorf("nil error should not be logged, got %q", buf.String())
	}
}

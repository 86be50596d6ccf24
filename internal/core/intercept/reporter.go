package intercept

import (
	"context"
	"errors"

	"github.com/yndnr/ssmproxy-go/internal/core/domain"
	"github.com/yndnr/ssmproxy-go/internal/telemetry/logger"
	"github.com/yndnr/ssmproxy-go/internal/telemetry/metric"
)

// Reporter is the operator-visible channel for non-fatal failures.
type Reporter interface {
	Report(ctx context.Context, err error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, err error)

// Report implements Reporter.
func (f ReporterFunc) Report(ctx context.Context, err error) { f(ctx, err) }

// nopReporter discards reports.
type nopReporter struct{}

func (nopReporter) Report(context.Context, error) {}

// LogReporter logs failures and counts them by error code.
type LogReporter struct {
	metrics *metric.Registry
}

// NewLogReporter creates a reporter. metrics may be nil.
func NewLogReporter(metrics *metric.Registry) *LogReporter {
	return &LogReporter{metrics: metrics}
}

// Report implements Reporter.
func (r *LogReporter) Report(ctx context.Context, err error) {
	if err == nil {
		return
	}

	code := domain.GetErrorCode(err)
	if code == "" {
		code = "unknown"
	}
	if r.metrics != nil {
		r.metrics.Failures.WithLabelValues(code).Inc()
	}

	attrs := []any{"code", code, "error", err}
	var de *domain.DomainError
	if errors.As(err, &de) && de.Cause != nil {
		attrs = append(attrs, "cause", de.Cause.Error())
	}

	log := logger.L(ctx)
	if domain.SeverityOf(err) == domain.SeverityWarn {
		log.Warn("license proxy warning", attrs...)
		return
	}
	log.Error("license proxy failure", attrs...)
}

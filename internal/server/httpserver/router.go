package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/yndnr/ssmproxy-go/internal/server/httpserver/handler"
	"github.com/yndnr/ssmproxy-go/internal/telemetry/metric"
)

// DefaultRateLimitIdle is how long an idle client's bucket is kept.
const DefaultRateLimitIdle = 10 * time.Minute

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	Handler http.Handler
	Logger  *slog.Logger

	// Metrics enables per-route request metrics when set.
	Metrics *metric.Registry

	// CORSAllowedOrigins lists allowed origins; empty allows all.
	CORSAllowedOrigins []string

	// RateLimitRPS and RateLimitBurst enable per-IP limiting when positive.
	RateLimitRPS   float64
	RateLimitBurst int

	EnableAudit bool
}

// NewRouter wraps the API handler with the middleware chain:
// Recover, RequestID, CORS, RateLimit, Audit, Metrics, handler.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	mws := []Middleware{
		Recover(log),
		RequestID(),
		CORS(cfg.CORSAllowedOrigins),
	}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst > 0 {
		mws = append(mws, NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, DefaultRateLimitIdle).Middleware())
	}
	if cfg.EnableAudit {
		mws = append(mws, Audit(log))
	}
	if cfg.Metrics != nil {
		mws = append(mws, Metrics(cfg.Metrics))
	}
	return Chain(cfg.Handler, mws...)
}

// NewAPI builds the handler and router in one step.
func NewAPI(deps handler.Deps, cfg RouterConfig) http.Handler {
	cfg.Handler = handler.New(deps)
	if cfg.Logger == nil {
		cfg.Logger = deps.Logger
	}
	if cfg.Metrics == nil {
		cfg.Metrics = deps.Metrics
	}
	return NewRouter(&cfg)
}

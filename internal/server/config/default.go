package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:8480"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 15 * time.Second

	DefaultSSMTimeout      = 10 * time.Second
	DefaultLicenseTimeout  = 15 * time.Second
	DefaultMaxLicenseBytes = 1 << 20

	DefaultJournalBackend   = JournalMemory
	DefaultJournalRetention = 24 * time.Hour
	DefaultRedisAddr        = "127.0.0.1:6379"
	DefaultRedisKeyPrefix   = "ssmproxy"
	DefaultBadgerGCInterval = 10 * time.Minute

	DefaultRateLimitRPS   = 50
	DefaultRateLimitBurst = 100

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:            DefaultHTTPAddr,
				ReadTimeout:     DefaultReadTimeout,
				WriteTimeout:    DefaultWriteTimeout,
				ShutdownTimeout: DefaultShutdownTimeout,
			},
		},
		Upstream: UpstreamSection{
			SSMTimeout:      DefaultSSMTimeout,
			LicenseTimeout:  DefaultLicenseTimeout,
			MaxLicenseBytes: DefaultMaxLicenseBytes,
		},
		Journal: JournalSection{
			Backend:   DefaultJournalBackend,
			Retention: DefaultJournalRetention,
			Redis: RedisConfig{
				Addr:      DefaultRedisAddr,
				KeyPrefix: DefaultRedisKeyPrefix,
			},
			Badger: BadgerConfig{
				GCInterval: DefaultBadgerGCInterval,
			},
		},
		RateLimit: RateLimitSection{
			Enabled: true,
			RPS:     DefaultRateLimitRPS,
			Burst:   DefaultRateLimitBurst,
		},
		Metrics: MetricsSection{Enabled: true},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// DefaultMap returns Default() as dotted koanf keys, the lowest layer of
// the loader.
func DefaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"server.http.addr":             d.Server.HTTP.Addr,
		"server.http.read_timeout":     d.Server.HTTP.ReadTimeout.String(),
		"server.http.write_timeout":    d.Server.HTTP.WriteTimeout.String(),
		"server.http.shutdown_timeout": d.Server.HTTP.ShutdownTimeout.String(),
		"server.local.socket_path":     d.Server.Local.SocketPath,
		"upstream.ssm_timeout":         d.Upstream.SSMTimeout.String(),
		"upstream.license_timeout":     d.Upstream.LicenseTimeout.String(),
		"upstream.max_license_bytes":   d.Upstream.MaxLicenseBytes,
		"journal.backend":              d.Journal.Backend,
		"journal.retention":            d.Journal.Retention.String(),
		"journal.redis.addr":           d.Journal.Redis.Addr,
		"journal.redis.key_prefix":     d.Journal.Redis.KeyPrefix,
		"journal.badger.dir":           d.Journal.Badger.Dir,
		"journal.badger.gc_interval":   d.Journal.Badger.GCInterval.String(),
		"rate_limit.enabled":           d.RateLimit.Enabled,
		"rate_limit.rps":               d.RateLimit.RPS,
		"rate_limit.burst":             d.RateLimit.Burst,
		"metrics.enabled":              d.Metrics.Enabled,
		"log.level":                    d.Log.Level,
		"log.format":                   d.Log.Format,
	}
}

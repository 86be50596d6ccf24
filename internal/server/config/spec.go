package config

import "time"

// ServerConfig is the root configuration for ssmproxy-server.
type ServerConfig struct {
	Server    ServerSection    `koanf:"server"`
	Upstream  UpstreamSection  `koanf:"upstream"`
	Receiver  ReceiverSection  `koanf:"receiver"`
	Journal   JournalSection   `koanf:"journal"`
	RateLimit RateLimitSection `koanf:"rate_limit"`
	Metrics   MetricsSection   `koanf:"metrics"`
	Log       LogSection       `koanf:"log"`
}

// ServerSection configures the HTTP listener.
type ServerSection struct {
	HTTP  HTTPConfig  `koanf:"http"`
	CORS  CORSConfig  `koanf:"cors"`
	Local LocalConfig `koanf:"local"`
}

// LocalConfig configures the local admin listener. An empty SocketPath
// disables it.
type LocalConfig struct {
	SocketPath string `koanf:"socket_path"`
}

// HTTPConfig configures the HTTP server. TLS is enabled when both the
// certificate and key files are set.
type HTTPConfig struct {
	Addr            string        `koanf:"addr"`
	TLSCertFile     string        `koanf:"tls_cert_file"`
	TLSKeyFile      string        `koanf:"tls_key_file"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// TLSEnabled reports whether both TLS files are configured.
func (c HTTPConfig) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// CORSConfig configures cross-origin access for browser receivers.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// UpstreamSection configures outbound calls to SSM backends and license
// servers.
type UpstreamSection struct {
	SSMTimeout         time.Duration `koanf:"ssm_timeout"`
	LicenseTimeout     time.Duration `koanf:"license_timeout"`
	MaxLicenseBytes    int64         `koanf:"max_license_bytes"`
	TLSCAFile          string        `koanf:"tls_ca_file"`
	InsecureSkipVerify bool          `koanf:"insecure_skip_verify"`
}

// ReceiverSection configures receiver handling.
type ReceiverSection struct {
	// AllowedHosts restricts SSM and license endpoints. Entries are host
	// names or "*.example.com" wildcards; empty allows any host.
	AllowedHosts []string `koanf:"allowed_hosts"`
}

// Journal backends.
const (
	JournalNone   = "none"
	JournalMemory = "memory"
	JournalRedis  = "redis"
	JournalBadger = "badger"
)

// JournalSection configures the session journal.
type JournalSection struct {
	Backend   string        `koanf:"backend"`
	Retention time.Duration `koanf:"retention"`
	Redis     RedisConfig   `koanf:"redis"`
	Badger    BadgerConfig  `koanf:"badger"`
}

// RedisConfig configures the Redis journal backend.
type RedisConfig struct {
	Addr      string `koanf:"addr"`
	Username  string `koanf:"username"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"key_prefix"`
}

// BadgerConfig configures the embedded Badger journal backend.
type BadgerConfig struct {
	Dir        string        `koanf:"dir"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// RateLimitSection configures per-client request limiting.
type RateLimitSection struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool `koanf:"enabled"`
}

// LogSection configures logging. Level is reloaded when the file changes.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

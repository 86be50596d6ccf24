package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/ssmproxy-go/internal/infra/confloader"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.Server.HTTP.Addr, DefaultHTTPAddr)
	}
	if cfg.Server.HTTP.TLSEnabled() {
		t.Error("TLS should be disabled by default")
	}
	if cfg.Upstream.SSMTimeout != DefaultSSMTimeout {
		t.Errorf("SSMTimeout = %v", cfg.Upstream.SSMTimeout)
	}
	if cfg.Journal.Backend != JournalMemory {
		t.Errorf("Journal.Backend = %q, want memory", cfg.Journal.Backend)
	}
	if !cfg.RateLimit.Enabled || !cfg.Metrics.Enabled {
		t.Error("rate limiting and metrics should be on by default")
	}
	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) error = %v", err)
	}
}

func TestDefaultMap_LoadsToDefault(t *testing.T) {
	var cfg ServerConfig
	l := confloader.NewLoader(confloader.WithDefaults(DefaultMap()), confloader.WithEnvPrefix("SSMPROXY_TEST_UNSET_"))
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	if cfg.Server.HTTP != want.Server.HTTP {
		t.Errorf("HTTP = %+v, want %+v", cfg.Server.HTTP, want.Server.HTTP)
	}
	if cfg.Upstream != want.Upstream {
		t.Errorf("Upstream = %+v, want %+v", cfg.Upstream, want.Upstream)
	}
	if cfg.Journal != want.Journal {
		t.Errorf("Journal = %+v, want %+v", cfg.Journal, want.Journal)
	}
	if cfg.RateLimit != want.RateLimit || cfg.Log != want.Log {
		t.Errorf("RateLimit/Log = %+v/%+v", cfg.RateLimit, cfg.Log)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  http:
    addr: "0.0.0.0:9000"
receiver:
  allowed_hosts: ["ssm.example.com", "*.license.example.com"]
journal:
  backend: redis
  redis:
    addr: "redis:6379"
    password: "hunter2hunter2"
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	var cfg ServerConfig
	l := confloader.NewLoader(confloader.WithDefaults(DefaultMap()), confloader.WithConfigFile(path))
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTP.Addr != "0.0.0.0:9000" {
		t.Errorf("Addr = %q", cfg.Server.HTTP.Addr)
	}
	if cfg.Server.HTTP.ReadTimeout != DefaultReadTimeout {
		t.Errorf("ReadTimeout = %v, default should survive", cfg.Server.HTTP.ReadTimeout)
	}
	if len(cfg.Receiver.AllowedHosts) != 2 {
		t.Errorf("AllowedHosts = %v", cfg.Receiver.AllowedHosts)
	}
	if cfg.Journal.Redis.KeyPrefix != DefaultRedisKeyPrefix {
		t.Errorf("KeyPrefix = %q", cfg.Journal.Redis.KeyPrefix)
	}
	if err := Verify(&cfg); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr string
	}{
		{"bad addr", func(c *ServerConfig) { c.Server.HTTP.Addr = "nope" }, "server.http.addr"},
		{"half tls", func(c *ServerConfig) { c.Server.HTTP.TLSCertFile = "/tmp/x.crt" }, "set together"},
		{"missing tls files", func(c *ServerConfig) {
			c.Server.HTTP.TLSCertFile = "/nonexistent.crt"
			c.Server.HTTP.TLSKeyFile = "/nonexistent.key"
		}, "tls file"},
		{"relative socket", func(c *ServerConfig) { c.Server.Local.SocketPath = "run/ssmproxy.sock" }, "socket_path"},
		{"zero ssm timeout", func(c *ServerConfig) { c.Upstream.SSMTimeout = 0 }, "ssm_timeout"},
		{"zero license cap", func(c *ServerConfig) { c.Upstream.MaxLicenseBytes = 0 }, "max_license_bytes"},
		{"missing ca", func(c *ServerConfig) { c.Upstream.TLSCAFile = "/nonexistent/ca.pem" }, "tls_ca_file"},
		{"bad host", func(c *ServerConfig) { c.Receiver.AllowedHosts = []string{"https://x"} }, "allowed_hosts"},
		{"unknown journal", func(c *ServerConfig) { c.Journal.Backend = "etcd" }, "unknown backend"},
		{"badger without dir", func(c *ServerConfig) { c.Journal.Backend = JournalBadger }, "journal.badger.dir"},
		{"redis without addr", func(c *ServerConfig) {
			c.Journal.Backend = JournalRedis
			c.Journal.Redis.Addr = ""
		}, "journal.redis.addr"},
		{"zero retention", func(c *ServerConfig) { c.Journal.Retention = 0 }, "retention"},
		{"zero burst", func(c *ServerConfig) { c.RateLimit.Burst = 0 }, "rate_limit"},
		{"bad level", func(c *ServerConfig) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *ServerConfig) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Verify(cfg)
			if err == nil {
				t.Fatal("Verify() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Verify() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestVerify_Relaxed(t *testing.T) {
	cfg := Default()
	cfg.RateLimit = RateLimitSection{Enabled: false}
	cfg.Journal = JournalSection{Backend: JournalNone}
	cfg.Server.HTTP.ShutdownTimeout = 5 * time.Second
	if err := Verify(cfg); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

func TestVerify_ReportsAll(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Upstream.SSMTimeout = 0

	err := Verify(cfg)
	if err == nil || !strings.Contains(err.Error(), "log.level") || !strings.Contains(err.Error(), "ssm_timeout") {
		t.Errorf("Verify() error = %v, want both problems", err)
	}
}

func TestSanitize(t *testing.T) {
	cfg := Default()
	cfg.Journal.Redis.Password = "super-secret-password"
	cfg.Receiver.AllowedHosts = []string{"a.example.com"}

	sanitized := Sanitize(cfg)

	if cfg.Journal.Redis.Password != "super-secret-password" {
		t.Error("original config should not be modified")
	}
	got := sanitized.Journal.Redis.Password
	if got == cfg.Journal.Redis.Password || !strings.HasPrefix(got, "su") || !strings.HasSuffix(got, "rd") {
		t.Errorf("masked password = %q", got)
	}
	if len(got) != len(cfg.Journal.Redis.Password) {
		t.Errorf("masked length = %d, want %d", len(got), len(cfg.Journal.Redis.Password))
	}

	sanitized.Receiver.AllowedHosts[0] = "changed"
	if cfg.Receiver.AllowedHosts[0] != "a.example.com" {
		t.Error("Sanitize should copy slices")
	}
}

func TestSanitize_ShortAndEmpty(t *testing.T) {
	cfg := Default()
	if got := Sanitize(cfg).Journal.Redis.Password; got != "" {
		t.Errorf("empty password masked to %q", got)
	}
	cfg.Journal.Redis.Password = "abc"
	if got := Sanitize(cfg).Journal.Redis.Password; got != "****" {
		t.Errorf("short password masked to %q", got)
	}
}

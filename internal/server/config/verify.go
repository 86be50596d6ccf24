package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/yndnr/ssmproxy-go/internal/telemetry/logger"
)

// Verify validates the configuration and returns every problem found.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyServer(&cfg.Server),
		verifyUpstream(&cfg.Upstream),
		verifyReceiver(&cfg.Receiver),
		verifyJournal(&cfg.Journal),
		verifyRateLimit(&cfg.RateLimit),
		verifyLog(&cfg.Log),
	)
}

func verifyServer(cfg *ServerSection) error {
	var errs []error
	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		errs = append(errs, fmt.Errorf("server.http.addr %q: %w", cfg.HTTP.Addr, err))
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.http.tls_cert_file and tls_key_file must be set together"))
	}
	for _, f := range []string{cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			errs = append(errs, fmt.Errorf("server.http tls file: %w", err))
		}
	}
	if p := cfg.Local.SocketPath; p != "" && !filepath.IsAbs(p) {
		errs = append(errs, fmt.Errorf("server.local.socket_path %q must be absolute", p))
	}
	if cfg.HTTP.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.http.shutdown_timeout must not be negative"))
	}
	return errors.Join(errs...)
}

func verifyUpstream(cfg *UpstreamSection) error {
	var errs []error
	if cfg.SSMTimeout <= 0 {
		errs = append(errs, errors.New("upstream.ssm_timeout must be positive"))
	}
	if cfg.LicenseTimeout <= 0 {
		errs = append(errs, errors.New("upstream.license_timeout must be positive"))
	}
	if cfg.MaxLicenseBytes <= 0 {
		errs = append(errs, errors.New("upstream.max_license_bytes must be positive"))
	}
	if cfg.TLSCAFile != "" {
		if _, err := os.Stat(cfg.TLSCAFile); err != nil {
			errs = append(errs, fmt.Errorf("upstream.tls_ca_file: %w", err))
		}
	}
	return errors.Join(errs...)
}

func verifyReceiver(cfg *ReceiverSection) error {
	for _, h := range cfg.AllowedHosts {
		if h == "" || strings.ContainsAny(h, "/: ") {
			return fmt.Errorf("receiver.allowed_hosts: invalid host %q", h)
		}
	}
	return nil
}

func verifyJournal(cfg *JournalSection) error {
	switch cfg.Backend {
	case JournalNone, JournalMemory:
	case JournalRedis:
		if cfg.Redis.Addr == "" {
			return errors.New("journal.redis.addr is required for the redis backend")
		}
	case JournalBadger:
		if cfg.Badger.Dir == "" {
			return errors.New("journal.badger.dir is required for the badger backend")
		}
		if cfg.Badger.GCInterval <= 0 {
			return errors.New("journal.badger.gc_interval must be positive")
		}
	default:
		return fmt.Errorf("journal.backend: unknown backend %q", cfg.Backend)
	}
	if cfg.Backend != JournalNone && cfg.Retention <= 0 {
		return errors.New("journal.retention must be positive")
	}
	return nil
}

func verifyRateLimit(cfg *RateLimitSection) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.RPS <= 0 || cfg.Burst <= 0 {
		return errors.New("rate_limit.rps and rate_limit.burst must be positive")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("log.level: unknown level %q", cfg.Level)
	}
	switch cfg.Format {
	case "json", "text":
		return nil
	}
	return fmt.Errorf("log.format: unknown format %q", cfg.Format)
}

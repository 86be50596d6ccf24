// Package main provides the entry point for ssmproxy-server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yndnr/ssmproxy-go/internal/core/forward"
	"github.com/yndnr/ssmproxy-go/internal/core/intercept"
	"github.com/yndnr/ssmproxy-go/internal/core/receiver"
	"github.com/yndnr/ssmproxy-go/internal/core/ssm"
	"github.com/yndnr/ssmproxy-go/internal/infra/buildinfo"
	"github.com/yndnr/ssmproxy-go/internal/infra/confloader"
	"github.com/yndnr/ssmproxy-go/internal/infra/shutdown"
	"github.com/yndnr/ssmproxy-go/internal/infra/tlsroots"
	"github.com/yndnr/ssmproxy-go/internal/server/config"
	"github.com/yndnr/ssmproxy-go/internal/server/httpserver"
	"github.com/yndnr/ssmproxy-go/internal/server/httpserver/handler"
	"github.com/yndnr/ssmproxy-go/internal/server/localserver"
	"github.com/yndnr/ssmproxy-go/internal/storage/journal"
	"github.com/yndnr/ssmproxy-go/internal/telemetry/logger"
	"github.com/yndnr/ssmproxy-go/internal/telemetry/metric"
)

const program = "ssmproxy-server"

// journalSweepInterval is how often the memory journal drops expired records.
const journalSweepInterval = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
		addr        = flag.String("addr", "", "Listen address (overrides server.http.addr)")
		logLevel    = flag.String("log-level", "", "Log level (overrides log.level)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(buildinfo.String(program))
		return nil
	}

	overrides := map[string]any{}
	if *addr != "" {
		overrides["server.http.addr"] = *addr
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}

	loader := confloader.NewLoader(
		confloader.WithDefaults(config.DefaultMap()),
		confloader.WithConfigFile(*configFile),
		confloader.WithOverrides(overrides),
	)
	cfg, err := loadConfig(loader)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  os.Stdout,
		Service: program,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)
	slogLogger := log.Slog()

	info := buildinfo.Get()
	log.Info("starting "+program,
		"version", info.Version,
		"commit", info.Commit,
		"config", loader.FilePath())
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Outbound TLS, shared by SSM and license calls.
	clientTLS, err := tlsroots.ClientTLSConfig(tlsroots.ClientOptions{
		CAFile:             cfg.Upstream.TLSCAFile,
		InsecureSkipVerify: cfg.Upstream.InsecureSkipVerify,
	})
	if err != nil {
		return fmt.Errorf("upstream tls: %w", err)
	}
	if cfg.Upstream.InsecureSkipVerify {
		log.Warn("upstream certificate verification disabled")
	}
	transport := tlsroots.Transport(clientTLS)

	var metrics *metric.Registry
	if cfg.Metrics.Enabled {
		metrics = metric.NewRegistry()
	}

	var backend ssm.Backend = ssm.NewHTTPBackend(ssm.WithHTTPClient(&http.Client{
		Transport: transport,
		Timeout:   cfg.Upstream.SSMTimeout,
	}))
	if metrics != nil {
		backend = ssm.Instrument(backend, metrics.ObserveSSMCall)
	}

	store, err := openJournal(ctx, cfg.Journal, slogLogger)
	if err != nil {
		return fmt.Errorf("init journal: %w", err)
	}

	coordOpts := []intercept.Option{
		intercept.WithReporter(intercept.NewLogReporter(metrics)),
		intercept.WithMetrics(metrics),
	}
	if store != nil {
		coordOpts = append(coordOpts, intercept.WithObserver(journal.NewObserver(store)))
	}
	registry := receiver.NewRegistry(backend, receiver.Config{AllowedHosts: cfg.Receiver.AllowedHosts}, coordOpts...)
	if metrics != nil {
		metrics.MustRegister(metric.NewCollector(registry))
	}

	forwarder := forward.New(
		forward.WithTransport(transport),
		forward.WithTimeout(cfg.Upstream.LicenseTimeout),
		forward.WithMaxBody(cfg.Upstream.MaxLicenseBytes),
	)

	deps := handler.Deps{
		Receivers: registry,
		Forwarder: forwarder,
		Journal:   store,
		Metrics:   metrics,
		Logger:    slogLogger,
	}
	api := httpserver.NewAPI(deps, httpserver.RouterConfig{
		Logger:             slogLogger,
		Metrics:            metrics,
		CORSAllowedOrigins: cfg.Server.CORS.AllowedOrigins,
		RateLimitRPS:       rateLimitRPS(cfg.RateLimit),
		RateLimitBurst:     cfg.RateLimit.Burst,
		EnableAudit:        true,
	})

	opts := httpserver.Options{
		Addr:         cfg.Server.HTTP.Addr,
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
	}
	var certs *tlsroots.CertReloader
	if cfg.Server.HTTP.TLSEnabled() {
		certs, err = tlsroots.NewCertReloader(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile, slogLogger)
		if err != nil {
			return fmt.Errorf("server tls: %w", err)
		}
		opts.TLSConfig = certs.ServerTLSConfig()
	}
	httpServer := httpserver.New(opts, api)

	reload := reloadFunc(loader, slogLogger)

	var local *localserver.Server
	if path := cfg.Server.Local.SocketPath; path != "" {
		// Same API, no rate limit, plus the admin routes.
		localAPI := httpserver.NewAPI(deps, httpserver.RouterConfig{
			Logger:      slogLogger,
			EnableAudit: true,
		})
		adminOpts := localserver.Options{
			Status: func() map[string]any {
				return map[string]any{
					"version":   info.Version,
					"receivers": registry.Len(),
					"sessions":  registry.SessionStates(),
				}
			},
		}
		if loader.FilePath() != "" {
			adminOpts.Reload = reload
		}
		local = localserver.New(path, localserver.NewHandler(localAPI, adminOpts))
		if err := local.Listen(); err != nil {
			return fmt.Errorf("local socket: %w", err)
		}
	}

	watcher, err := startWatcher(loader, certs, reload, slogLogger)
	if err != nil {
		// Reload is a convenience; the server runs without it.
		log.Warn("file watcher disabled", "error", err)
	}

	if mem, ok := store.(*journal.MemoryStore); ok {
		go sweepJournal(ctx, mem, journalSweepInterval)
	}

	// Hooks run in reverse order: the listener closes first.
	shutdownHandler := shutdown.NewHandler(cfg.Server.HTTP.ShutdownTimeout).WithLogger(slogLogger)
	if watcher != nil {
		shutdownHandler.OnShutdown("watcher", func(context.Context) error {
			return watcher.Stop()
		})
	}
	if store != nil {
		shutdownHandler.OnShutdown("journal", func(context.Context) error {
			return store.Close()
		})
	}
	shutdownHandler.OnShutdown("receivers", func(ctx context.Context) error {
		log.Info("tearing down ssm sessions", "receivers", registry.Len())
		return registry.Close(ctx)
	})
	if local != nil {
		shutdownHandler.OnShutdown("local", func(ctx context.Context) error {
			return local.Shutdown(ctx)
		})
	}
	shutdownHandler.OnShutdown("http", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", opts.Addr, "tls", httpServer.TLS())
		if err := httpServer.ListenAndServe(); err != nil {
			log.Error("HTTP server error", "error", err)
			serveErr <- err
			cancel()
		}
	}()

	if local != nil {
		go func() {
			log.Info("local admin socket listening", "path", local.Path())
			if err := local.Serve(); err != nil {
				log.Error("local server error", "error", err)
			}
		}()
	}

	log.Info("server started, press Ctrl+C to stop")
	err = shutdownHandler.Wait(ctx)
	select {
	case startErr := <-serveErr:
		return errors.Join(fmt.Errorf("http server: %w", startErr), err)
	default:
	}
	if err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads and verifies the configuration.
func loadConfig(loader *confloader.Loader) (*config.ServerConfig, error) {
	cfg := &config.ServerConfig{}
	if err := loader.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openJournal opens the configured journal store. It returns nil for the
// "none" backend.
func openJournal(ctx context.Context, cfg config.JournalSection, log *slog.Logger) (journal.Store, error) {
	switch cfg.Backend {
	case config.JournalNone:
		return nil, nil
	case config.JournalRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := journal.NewRedisStore(client,
			journal.WithKeyPrefix(cfg.Redis.KeyPrefix),
			journal.WithRedisRetention(cfg.Retention),
		)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	case config.JournalBadger:
		store, err := journal.OpenBadgerStore(cfg.Badger.Dir,
			journal.WithBadgerRetention(cfg.Retention),
			journal.WithGCInterval(cfg.Badger.GCInterval),
			journal.WithBadgerLogger(log),
		)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return journal.NewMemoryStore(journal.WithMemoryRetention(cfg.Retention)), nil
	}
}

func rateLimitRPS(cfg config.RateLimitSection) float64 {
	if !cfg.Enabled {
		return 0
	}
	return cfg.RPS
}

// reloadFunc re-reads the configuration file and applies the settings that
// can change at runtime. Only the log level does today.
func reloadFunc(loader *confloader.Loader, log *slog.Logger) func() error {
	return func() error {
		cfg, err := loadConfig(loader)
		if err != nil {
			return err
		}
		logger.SetLevel(cfg.Log.Level)
		log.Info("configuration reloaded", "log_level", cfg.Log.Level)
		return nil
	}
}

// startWatcher watches the configuration file and the TLS key pair. A
// changed configuration file triggers reload; a changed key pair is
// reloaded into the listener.
func startWatcher(loader *confloader.Loader, certs *tlsroots.CertReloader, reload func() error, log *slog.Logger) (*confloader.Watcher, error) {
	var files []string
	if p := loader.FilePath(); p != "" {
		files = append(files, p)
	}
	if certs != nil {
		files = append(files, certs.Files()...)
	}
	if len(files) == 0 {
		return nil, nil
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if err := w.Watch(f); err != nil {
			_ = w.Stop()
			return nil, err
		}
	}

	configPath := ""
	if p := loader.FilePath(); p != "" {
		configPath, _ = filepath.Abs(p)
	}
	w.OnChange(func(path string) {
		if path != configPath {
			return
		}
		if err := reload(); err != nil {
			log.Warn("configuration reload rejected", "error", err)
		}
	})
	if certs != nil {
		w.OnChange(certs.OnFileChange)
	}
	w.StartAsync()
	return w, nil
}

func sweepJournal(ctx context.Context, store *journal.MemoryStore, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.DeleteExpired(ctx); n > 0 {
				logger.L(ctx).Debug("expired journal records removed", "count", n)
			}
		}
	}
}

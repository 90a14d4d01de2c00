package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/yndnr/fxgallery/internal/core/service"
	"github.com/yndnr/fxgallery/internal/infra/buildinfo"
	"github.com/yndnr/fxgallery/internal/infra/confloader"
	"github.com/yndnr/fxgallery/internal/infra/shutdown"
	"github.com/yndnr/fxgallery/internal/infra/tlsroots"
	"github.com/yndnr/fxgallery/internal/server/config"
	"github.com/yndnr/fxgallery/internal/server/httpserver"
	"github.com/yndnr/fxgallery/internal/storage"
	"github.com/yndnr/fxgallery/internal/telemetry/logger"
	"github.com/yndnr/fxgallery/internal/telemetry/metric"
	"github.com/yndnr/fxgallery/pkg/crypto/aead"
	"github.com/yndnr/fxgallery/pkg/fxtoken"
)

const (
	shutdownTimeout = 30 * time.Second
	pruneInterval   = 5 * time.Minute
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("fxgallery-server", flag.ContinueOnError)
	var (
		configFile  = flags.String("config", "", "Path to configuration file")
		showVersion = flags.Bool("version", false, "Show version information")
	)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if *showVersion {
		fmt.Printf("fxgallery-server %s\n", buildinfo.String())
		return nil
	}

	loader := newLoader(*configFile)
	cfg, err := loadConfig(loader)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slogLogger := logger.Slog(log)

	info := buildinfo.Get()
	log.Info("starting fxgallery-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile)

	// Hooks are registered as resources open, so a failed startup releases
	// what it already holds. They run in reverse order: the server stops
	// before storage closes.
	shutdownHandler := shutdown.NewHandler(shutdownTimeout, shutdown.WithLogger(slogLogger))
	abort := func(err error) error {
		shutdownHandler.Shutdown("startup failed")
		return err
	}

	metrics := metric.NewRegistry()

	engine, err := storage.NewBadgerEngine(cfg.Access.KVConfig(), slogLogger)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	shutdownHandler.OnShutdown("access store", func(context.Context) error {
		return engine.Close()
	})
	engine.RegisterMetrics(metrics.Registerer())
	store := storage.NewAccessStore(engine)
	metrics.Registerer().MustRegister(metric.NewCollector(store))

	services, err := initServices(cfg, store, metrics)
	if err != nil {
		return abort(fmt.Errorf("init services: %w", err))
	}

	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(slogLogger))
	if err != nil {
		return abort(fmt.Errorf("init watcher: %w", err))
	}
	shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
		return watcher.Stop()
	})

	serverOpts := []httpserver.Option{
		httpserver.WithTimeouts(cfg.Server.HTTP.ReadTimeout, cfg.Server.HTTP.WriteTimeout),
		httpserver.WithErrorLog(logger.StdLogger(log)),
	}
	if cfg.Server.HTTP.TLSEnabled() {
		certs, err := tlsroots.NewCertReloader(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile, slogLogger)
		if err != nil {
			return abort(fmt.Errorf("load tls certificate: %w", err))
		}
		if err := certs.Watch(watcher); err != nil {
			log.Warn("certificate hot reload disabled", "error", err)
		}
		serverOpts = append(serverOpts, httpserver.WithTLS(certs))
	}

	if path := loader.FilePath(); path != "" {
		if err := watcher.Watch(path); err != nil {
			log.Warn("config hot reload disabled", "error", err)
		}
		watcher.OnChange(func(changed string) {
			reloadLogLevel(loader, changed, log)
		})
	}
	watcher.StartAsync()

	// Verify has already parsed the list.
	trustedProxies, _ := cfg.Server.HTTP.TrustedProxyPrefixes()

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		CodecService:       services.Codec,
		AccessService:      services.Access,
		PaymentService:     services.Payments,
		AdminAuth:          services.Admin,
		RateLimiter:        services.Limiter,
		Metrics:            metrics,
		Ready:              storeReady(store),
		Logger:             slogLogger,
		CORSAllowedOrigins: cfg.Server.HTTP.CORSAllowedOrigins,
		TrustedProxies:     trustedProxies,
	})
	httpServer := httpserver.New(cfg.Server.HTTP.Addr, router, serverOpts...)

	if services.Limiter != nil {
		stopPrune := startPruning(services.Limiter, slogLogger)
		shutdownHandler.OnShutdown("rate limiter", func(context.Context) error {
			stopPrune()
			return nil
		})
	}
	shutdownHandler.OnShutdown("http server", httpServer.Shutdown)

	go func() {
		log.Info("HTTP server listening",
			"addr", cfg.Server.HTTP.Addr,
			"tls", httpServer.TLS())
		if err := httpServer.ListenAndServe(); err != nil {
			log.Error("HTTP server error", "error", err)
			shutdownHandler.Trigger("http server failed")
		}
	}()

	if err := shutdownHandler.Wait(context.Background()); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

func newLoader(configFile string) *confloader.Loader {
	opts := []confloader.Option{confloader.WithDotEnv(".env")}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	return confloader.NewLoader(opts...)
}

// loadConfig loads configuration from file and environment over the defaults.
func loadConfig(loader *confloader.Loader) (*config.ServerConfig, error) {
	cfg := config.Default()
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger creates the redacting logger and installs it as the default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	slog.SetDefault(logger.Slog(log))
	return log, nil
}

// Services holds all initialized services.
type Services struct {
	Codec    *service.CodecService
	Access   *service.AccessService
	Payments *service.PaymentService
	Admin    *service.AdminAuthenticator
	Limiter  *service.RateLimiterRegistry
}

// initServices builds the domain services over the access store.
func initServices(cfg *config.ServerConfig, repo service.AccessRepository, metrics *metric.Registry) (*Services, error) {
	codec, err := newCodec(&cfg.Codec)
	if err != nil {
		return nil, err
	}

	admin, err := service.NewAdminAuthenticator(cfg.Admin.APIKey)
	if err != nil {
		return nil, fmt.Errorf("admin.api_key: %w", err)
	}

	access := service.NewAccessService(repo, metrics)
	svc := &Services{
		Codec:  service.NewCodecService(codec, access, metrics),
		Access: access,
		Payments: service.NewPaymentService(access, &service.PaymentServiceConfig{
			WebhookSecret: cfg.Payments.WebhookSecret,
			Tolerance:     cfg.Payments.Tolerance,
		}, metrics),
		Admin: admin,
	}
	if cfg.Server.HTTP.RateLimit > 0 {
		svc.Limiter = service.NewRateLimiterRegistry(cfg.Server.HTTP.RateLimit, cfg.Server.HTTP.RateBurst)
	}

	slog.Info("services initialized",
		"sealing", codec.CanSeal(),
		"admin", admin.Enabled(),
		"payments", cfg.Payments.WebhookSecret != "",
		"rate_limit", cfg.Server.HTTP.RateLimit)
	return svc, nil
}

// newCodec returns a codec that seals with the export passphrase, or a
// plain codec when none is configured.
func newCodec(cfg *config.CodecSection) (*fxtoken.Codec, error) {
	limit := fxtoken.WithMaxDecodedLength(cfg.MaxDecodedLength)
	if cfg.ExportPassphrase == "" {
		return fxtoken.NewCodec(limit), nil
	}
	cipherType, err := aead.ParseCipherType(cfg.Cipher)
	if err != nil {
		return nil, fmt.Errorf("codec.cipher: %w", err)
	}
	c, err := aead.NewFromPassphrase(cfg.ExportPassphrase, cipherType)
	if err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}
	return fxtoken.NewCodec(fxtoken.WithCipher(c), limit), nil
}

// storeReady reports the access store as ready when it answers a count.
func storeReady(store *storage.AccessStore) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := store.Count(ctx)
		return err
	}
}

// reloadLogLevel applies the log level from a changed config file. Other
// settings need a restart.
func reloadLogLevel(loader *confloader.Loader, path string, log logger.Logger) {
	cfg, err := func() (*config.ServerConfig, error) {
		cfg := config.Default()
		if err := loader.Reload(cfg); err != nil {
			return nil, err
		}
		return cfg, config.Verify(cfg)
	}()
	if err != nil {
		log.Error("config reload failed", "path", path, "error", err)
		return
	}
	if cfg.Log.Level == logger.GetLevel() {
		return
	}
	logger.SetLevel(cfg.Log.Level)
	log.Info("log level changed", "level", cfg.Log.Level)
}

// startPruning drops idle rate limiter buckets until the returned func is
// called.
func startPruning(limiter *service.RateLimiterRegistry, log *slog.Logger) func() {
	ticker := time.NewTicker(pruneInterval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				if n := limiter.Prune(); n > 0 {
					log.Debug("pruned idle rate limiters", "count", n)
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}

// Package main provides the entry point for companylock-devserver.
//
// companylock-devserver is an in-memory CompanyLock backend for local
// development and demos. State is lost on restart.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/NDP4/CompanyLock-Manager/internal/infra/buildinfo"
	"github.com/NDP4/CompanyLock-Manager/internal/infra/confloader"
	"github.com/NDP4/CompanyLock-Manager/internal/infra/shutdown"
	"github.com/NDP4/CompanyLock-Manager/internal/infra/tlsroots"
	"github.com/NDP4/CompanyLock-Manager/internal/server/config"
	"github.com/NDP4/CompanyLock-Manager/internal/server/devserver"
	"github.com/NDP4/CompanyLock-Manager/internal/server/httpserver"
	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/logger"
	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		addr        = flag.String("addr", "", "Listen address (overrides http.addr)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("companylock-devserver %s\n", buildinfo.String())
		return nil
	}

	flags := map[string]any{}
	if *addr != "" {
		flags["http.addr"] = *addr
	}
	cfg, err := config.Load(*configFile, flags)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	log.Info("starting companylock-devserver",
		"version", buildinfo.Version,
		"config", *configFile)
	log.Debug("resolved configuration", "config", config.Sanitize(cfg))
	if cfg.Security.AdminPassword == config.DefaultAdminPassword {
		log.Warn("administrator uses the default password")
	}

	reg := metric.NewRegistry().WithProcessCollectors()
	srv, err := devserver.New(devserver.Options{
		Config:  cfg,
		Logger:  log,
		Metrics: reg,
	})
	if err != nil {
		return fmt.Errorf("init devserver: %w", err)
	}

	httpServer := httpserver.New(cfg.HTTP.Addr, srv.Handler())
	shutdownHandler := shutdown.NewHandler(shutdownTimeout)

	// Hooks run in reverse order of registration.
	shutdownHandler.OnShutdown(func(context.Context) error {
		log.Info("stopping background sweeper")
		srv.Close()
		return nil
	})
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	if *configFile != "" {
		stop, err := watchLogLevel(*configFile, log)
		if err != nil {
			log.Warn("config watch disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				stop()
				return nil
			})
		}
	}

	useTLS := cfg.HTTP.TLSCertFile != ""
	if useTLS {
		certs, err := tlsroots.NewCertReloader(cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile, tlsroots.WithLogger(log))
		if err != nil {
			return fmt.Errorf("load TLS certificate: %w", err)
		}
		httpServer.SetTLSConfig(certs.ServerConfig())
		certs.StartAsync()
		shutdownHandler.OnShutdown(func(context.Context) error {
			certs.Stop()
			return nil
		})
	}

	go func() {
		log.Info("HTTP server listening", "addr", cfg.HTTP.Addr, "api_base", cfg.HTTP.APIBase, "tls", useTLS)

		var err error
		if useTLS {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			_ = shutdownHandler.Shutdown()
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// watchLogLevel applies log.level changes from the config file while
// the server runs. Other settings need a restart.
func watchLogLevel(path string, log logger.Logger) (func(), error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}
	w.OnChange(func(string) {
		loader := confloader.NewLoader(
			confloader.WithEnvPrefix(config.EnvPrefix),
			confloader.WithConfigFile(path),
		)
		next := config.Default()
		if err := loader.Load(next); err != nil {
			log.Warn("config reload failed", "error", err)
			return
		}
		if next.Log.Level == logger.GetLevel() {
			return
		}
		if err := logger.SetLevel(next.Log.Level); err != nil {
			log.Warn("log level not changed", "error", err)
			return
		}
		log.Info("log level changed", "level", next.Log.Level)
	})
	w.StartAsync()
	return func() { _ = w.Stop() }, nil
}

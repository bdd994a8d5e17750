package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lastcallsoftware/trackeats/internal/application/account"
	"github.com/lastcallsoftware/trackeats/internal/application/catalog"
	"github.com/lastcallsoftware/trackeats/internal/application/editor"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/apiclient"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/config"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/http/webserver"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/monitoring"
	"github.com/lastcallsoftware/trackeats/internal/infrastructure/session"
	"github.com/lastcallsoftware/trackeats/pkg/healthcheck"
	"github.com/lastcallsoftware/trackeats/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web frontend",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	app := fx.New(
		fx.NopLogger,

		fx.Provide(func() (*config.Config, error) {
			return config.Load(configPath)
		}),
		fx.Provide(newLogger),
		fx.Provide(monitoring.NewMetrics),
		fx.Provide(newHealthCheck),
		fx.Provide(newSessionStore),
		fx.Provide(func(cfg *config.Config, log *zap.Logger, m *monitoring.Metrics) *apiclient.Client {
			return apiclient.New(cfg, log, apiclient.WithObserver(m))
		}),
		fx.Provide(func(c *apiclient.Client, log *zap.Logger) *catalog.Service {
			return catalog.NewService(c, log)
		}),
		fx.Provide(func(c *apiclient.Client, store session.Store, m *monitoring.Metrics, log *zap.Logger) *editor.Service {
			return editor.NewService(c, store, m, log)
		}),
		fx.Provide(func(c *apiclient.Client, store session.Store, m *monitoring.Metrics, log *zap.Logger) *account.Service {
			return account.NewService(c, store, m, log)
		}),
		fx.Provide(newWebServer),

		fx.Invoke(startTracing),
		fx.Invoke(registerHealthChecks),
		fx.Invoke(watchConfig),
		fx.Invoke(registerLifecycleHooks),
	)
	if err := app.Err(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	return app.Stop(stopCtx)
}

func newLogger(cfg *config.Config) (*zap.Logger, zap.AtomicLevel, error) {
	return logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Development: cfg.App.Debug,
	})
}

func newHealthCheck(cfg *config.Config, log *zap.Logger) *healthcheck.HealthCheck {
	hc := healthcheck.New(cfg.App.Version, log.Named("health"))
	hc.SetCacheTTL(cfg.Monitoring.HealthCacheTTL)
	return hc
}

func newSessionStore(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, hc *healthcheck.HealthCheck) (session.Store, error) {
	log = log.Named("sessions")
	switch cfg.Session.Store {
	case "redis":
		client := session.NewRedisClient(cfg)
		store := session.NewRedisStore(client, cfg.Redis.KeyPrefix, log)
		hc.Register("redis", healthcheck.NewRedisChecker(client))
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := store.Ping(ctx); err != nil {
					return fmt.Errorf("redis session store unreachable: %w", err)
				}
				return nil
			},
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		return store, nil
	case "memory":
		store := session.NewMemoryStore(log)
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				store.StartCleanup(cfg.Session.CleanupInterval)
				return nil
			},
			OnStop: func(context.Context) error {
				return store.Close()
			},
		})
		return store, nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}

func newWebServer(
	cfg *config.Config,
	log *zap.Logger,
	cat *catalog.Service,
	ed *editor.Service,
	acc *account.Service,
	store session.Store,
	metrics *monitoring.Metrics,
	hc *healthcheck.HealthCheck,
) (*webserver.WebServer, error) {
	return webserver.NewWebServer(cfg, webserver.Deps{
		Catalog:  cat,
		Editor:   ed,
		Accounts: acc,
		Sessions: store,
		Metrics:  metrics,
		Health:   hc,
	}, log)
}

func startTracing(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) error {
	tp, err := monitoring.NewTracerProvider(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{OnStop: tp.Shutdown})
	return nil
}

func registerHealthChecks(hc *healthcheck.HealthCheck, client *apiclient.Client) {
	hc.Register("api_backend", healthcheck.NewPingChecker(client, false))
}

// watchConfig applies log level edits without a restart. Other settings
// need one.
func watchConfig(cfg *config.Config, log *zap.Logger, level zap.AtomicLevel) error {
	return config.Watch(configPath, func(next *config.Config) {
		var l zapcore.Level
		if err := l.UnmarshalText([]byte(next.App.LogLevel)); err != nil {
			log.Warn("Ignoring invalid log level", zap.String("level", next.App.LogLevel))
			return
		}
		if l != level.Level() {
			level.SetLevel(l)
			log.Info("Log level changed", zap.Stringer("level", l))
		}
	}, func(err error) {
		log.Warn("Ignoring invalid config change", zap.Error(err))
	})
}

func registerLifecycleHooks(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, server *webserver.WebServer) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("Starting TrackEats",
				zap.String("address", cfg.Addr()),
				zap.String("environment", cfg.App.Environment),
				zap.String("api_url", cfg.API.BaseURL),
				zap.String("session_store", cfg.Session.Store),
			)
			go func() {
				if err := server.Start(); err != nil {
					log.Error("Web server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cfg.Server.ShutdownTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
				defer cancel()
			}
			if err := server.Shutdown(ctx); err != nil {
				return err
			}
			_ = log.Sync()
			return nil
		},
	})
}

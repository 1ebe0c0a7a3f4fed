package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ray-remotestate/toomburg/config"
	"github.com/ray-remotestate/toomburg/database"
	"github.com/ray-remotestate/toomburg/database/dbhelper"
	"github.com/ray-remotestate/toomburg/handlers"
	"github.com/ray-remotestate/toomburg/metrics"
	"github.com/ray-remotestate/toomburg/middlewares"
	"github.com/ray-remotestate/toomburg/server"
	"github.com/ray-remotestate/toomburg/services"
	"github.com/ray-remotestate/toomburg/sessions"
)

const (
	shutdownTimeOut = 10 * time.Second
	limiterIdle     = 10 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the database and start the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cfg)
	},
}

func serve(cfg *config.Config) (err error) {
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	db, err := database.ConnectAndMigrate(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	closers := []func() error{db.Close}
	defer func() {
		err = multierror.Append(err, closeAll(closers)).ErrorOrNil()
	}()

	store, closeStore, err := newSessionStore(cfg)
	if err != nil {
		return err
	}
	if closeStore != nil {
		closers = append(closers, closeStore)
	}

	admin, err := services.NewAdministrativeIdentity(cfg.AdminEmail, cfg.AdminPasswordHash, cfg.AdminPassword)
	if err != nil {
		return err
	}

	svr, limiter, err := buildServer(cfg, db, store, admin)
	if err != nil {
		return err
	}
	closers = append(closers, func() error {
		limiter.Stop()
		return nil
	})

	runErr := make(chan error, 1)
	go func() {
		logrus.Infof("server listening on %s", cfg.Port)
		if err := svr.Run(cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr <- err
		}
		close(runErr)
	}()

	select {
	case <-done:
		logrus.Info("shutting down...")
	case err := <-runErr:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
	}

	if err := svr.Shutdown(shutdownTimeOut); err != nil {
		return fmt.Errorf("failed to shut down server gracefully: %w", err)
	}
	logrus.Info("system is shut ..zzz")
	return nil
}

func buildServer(cfg *config.Config, db *sql.DB, store sessions.Store, admin services.AdministrativeIdentity) (*server.Server, *middlewares.RateLimiter, error) {
	repo := dbhelper.NewRepository(db)
	ledger := services.NewLedger(repo)
	verifier := services.NewCredentialVerifier(repo, admin)
	m := metrics.NewCollector(prometheus.DefaultRegisterer)
	sm := middlewares.NewSessionManager(store, cfg.SessionSecret, time.Now, cfg.CookieSecure)

	h, err := handlers.New(handlers.Deps{
		Sessions:  sm,
		Verifier:  verifier,
		Directory: services.NewUserDirectory(repo, verifier),
		Ledger:    ledger,
		Checkout:  services.NewCheckout(ledger),
		Admin:     services.NewAdminViewAggregator(repo),
		Metrics:   m,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load templates: %w", err)
	}

	limiter := middlewares.NewRateLimiter(cfg.LoginRatePerMinute, limiterIdle)
	return server.SetupRoutes(h, sm, limiter, m), limiter, nil
}

// newSessionStore returns the configured store and, for redis, its close func.
func newSessionStore(cfg *config.Config) (sessions.Store, func() error, error) {
	if cfg.SessionBackend != config.SessionBackendRedis {
		return sessions.NewMemoryStore(cfg.SessionTTL, time.Now), nil, nil
	}

	store := sessions.NewRedisStore(redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}), cfg.SessionTTL, time.Now)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		return nil, nil, multierror.Append(fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err), store.Close())
	}
	logrus.Infof("session store: redis at %s", cfg.RedisAddr)
	return store, store.Close, nil
}

// closeAll runs every closer in reverse order and collects their errors.
func closeAll(closers []func() error) error {
	var result *multierror.Error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

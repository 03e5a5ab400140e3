// cmd/leflow/main.go - Entry point for the client portal
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/studioleflow/portal/internal/api"
	"github.com/studioleflow/portal/internal/config"
	"github.com/studioleflow/portal/internal/gate"
	"github.com/studioleflow/portal/internal/handlers"
	"github.com/studioleflow/portal/internal/logging"
	"github.com/studioleflow/portal/internal/payments"
	"github.com/studioleflow/portal/internal/querycache"
	"github.com/studioleflow/portal/internal/store"
)

const (
	sweepInterval = time.Minute
	toastMaxAge   = time.Hour
)

func main() {
	cfg, err := config.Load(getEnv("LEFLOW_CONFIG", "config.yaml"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("portal stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// Session store
	st, expire, err := openStore(ctx, cfg.Session)
	if err != nil {
		return err
	}
	defer st.Close()
	logger.Info("session store ready", zap.String("driver", cfg.Session.Driver))

	cache := querycache.New(querycache.Options{
		StaleTime:    cfg.Cache.StaleTime,
		FetchTimeout: cfg.Backend.Timeout,
		Logger:       logger.Named("cache"),
	})
	go sweep(ctx, cache, expire, logger)

	opts := handlers.Options{
		RenderWait: cfg.Cache.RenderWait,
		PublicURL:  cfg.Server.PublicURL,
		Logger:     logger,
	}
	if cfg.StripeEnabled() {
		sp := payments.NewStripe(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
		opts.Checkout = sp
		opts.Webhooks = sp
		logger.Info("[STRIPE] payments enabled")
	}

	backend := api.New(cfg.Backend.BaseURL, cfg.Backend.SessionCookie, cfg.Backend.Timeout)
	g := gate.New(cfg.Maintenance, st, logger.Named("gate"))
	h := handlers.New(backend, cache, st, g, opts)

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: h.Router(handlers.RouterOptions{
			StaticDir: cfg.Server.StaticDir,
			AssetRoot: cfg.Server.AssetRoot,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("🚀 Studio LeFlow portal starting on %s", cfg.Server.Addr),
			zap.Bool("maintenance", cfg.Maintenance))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore returns the configured store and, for SQLite, the toast expiry
// job. Redis expires toasts by key TTL.
func openStore(ctx context.Context, cfg config.SessionConfig) (store.Store, func(context.Context) (int64, error), error) {
	switch cfg.Driver {
	case "redis":
		rs, err := store.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return rs, nil, nil
	default:
		db, err := store.New(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		expire := func(ctx context.Context) (int64, error) { return db.ExpireToasts(ctx, toastMaxAge) }
		return db, expire, nil
	}
}

// sweep drops cache entries and toasts nobody came back for
func sweep(ctx context.Context, cache *querycache.Cache, expire func(context.Context) (int64, error), logger *zap.Logger) {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		if n := cache.Sweep(10 * sweepInterval); n > 0 {
			logger.Debug("cache swept", zap.Int("entries", n), zap.Int("remaining", cache.Len()))
		}
		if expire == nil {
			continue
		}
		if n, err := expire(ctx); err != nil {
			logger.Warn("expire toasts", zap.Error(err))
		} else if n > 0 {
			logger.Debug("toasts expired", zap.Int64("count", n))
		}
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

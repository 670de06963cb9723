package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"fake-store/go-client/internal/config"
	"fake-store/go-client/internal/domains/cart"
	"fake-store/go-client/internal/domains/catalog"
	"fake-store/go-client/internal/domains/orders"
	"fake-store/go-client/internal/domains/session"
	"fake-store/go-client/internal/lifecycle"
	"fake-store/go-client/internal/platform/privacylog"
	"fake-store/go-client/internal/platform/ratelimiter"
	"fake-store/go-client/internal/remote"
	"fake-store/go-client/internal/securestore"
)

const (
	hubHistoryLimit = 512
	sessionDirName  = "session"
)

type Options struct {
	Config config.Config
	// Logger defaults to JSON on stderr at the configured level.
	Logger     *slog.Logger
	HTTPClient *http.Client
	// Registry defaults to a private registry.
	Registry *prometheus.Registry
	// KV overrides the encrypted session directory.
	KV securestore.KV
}

// Runtime is the composed client: one remote client shared by every store.
type Runtime struct {
	Config   config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Hub      *lifecycle.Hub
	Remote   *remote.Client

	Session *session.Service
	Cart    *cart.Service
	Sync    *cart.SyncScheduler
	Orders  *orders.Service
	Catalog *catalog.Service
}

func DefaultLogger(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return privacylog.NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func Build(opts Options) (*Runtime, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		level, _ := config.ParseLevel(cfg.Log.Level)
		logger = DefaultLogger(os.Stderr, level)
	} else {
		logger = slog.New(privacylog.WrapHandler(logger.Handler()))
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	namespace := cfg.Metrics.Namespace

	kv, err := buildKV(cfg, opts.KV)
	if err != nil {
		return nil, err
	}

	client, err := remote.NewClient(remote.Options{
		BaseURL:    cfg.Remote.BaseURL,
		HTTPClient: opts.HTTPClient,
		Timeout:    cfg.Remote.Timeout,
		Limiter:    ratelimiter.New(cfg.Remote.RateLimitRPS, cfg.Remote.RateLimitBurst, 0),
		Metrics:    remote.NewMetrics(registry, namespace),
		Logger:     logger.With("component", "remote"),
	})
	if err != nil {
		return nil, err
	}

	hub := lifecycle.NewHub(hubHistoryLimit, lifecycle.WithRegisterer(registry, namespace))
	rt := &Runtime{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Hub:      hub,
		Remote:   client,
	}
	rt.Session = session.NewService(session.Options{
		Remote:      client,
		Credentials: client,
		Persistence: session.NewStateStore(kv),
		Hub:         hub,
		Logger:      logger.With("store", session.StoreName),
	})
	rt.Orders = orders.NewService(orders.Options{
		Remote:     client,
		Hub:        hub,
		Logger:     logger.With("store", orders.StoreName),
		Registerer: registry,
		Namespace:  namespace,
	})
	rt.Cart = cart.NewService(cart.Options{
		Remote: client,
		Orders: rt.Orders,
		Hub:    hub,
		Logger: logger.With("store", cart.StoreName),
		Gauges: cart.NewGauges(registry, namespace),
	})
	rt.Sync = cart.NewSyncScheduler(rt.Cart, cfg.Sync.PushDebounce, logger.With("component", "cart_sync"))
	rt.Catalog = catalog.NewService(catalog.Options{
		Remote: client,
		Hub:    hub,
		Logger: logger.With("store", "catalog"),
	})

	client.SetUnauthorizedHandler(rt.handleUnauthorized)
	return rt, nil
}

func buildKV(cfg config.Config, override securestore.KV) (securestore.KV, error) {
	if override != nil {
		return override, nil
	}
	if !cfg.PersistenceEnabled() {
		return securestore.NewMemoryKV(), nil
	}
	return securestore.NewFileKV(filepath.Join(cfg.Storage.DataDir, sessionDirName), cfg.Storage.Secret)
}

// Start restores a persisted session before anything else runs.
func (r *Runtime) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	restored, err := r.Session.RestoreSession()
	if err != nil {
		r.Logger.Warn("starting anonymous", "error", err)
		return nil
	}
	if restored {
		r.Logger.Debug("session restored at startup")
	}
	return nil
}

// SignOut ends the session and drops every store's user-scoped state.
func (r *Runtime) SignOut() {
	r.Sync.Cancel()
	r.Session.SignOut()
	r.Orders.Clear()
	r.Cart.Clear()
}

func (r *Runtime) handleUnauthorized(token string) {
	if !r.Session.HandleUnauthorized(token) {
		return
	}
	r.Sync.Cancel()
	r.Orders.Clear()
}

// Close sends a pending cart push, if any, and stops the scheduler.
func (r *Runtime) Close(ctx context.Context) error {
	var err error
	if r.Session.IsAuthenticated() {
		err = r.Sync.Flush(ctx)
	}
	r.Sync.Stop()
	if err != nil {
		return fmt.Errorf("flush cart: %w", err)
	}
	return nil
}

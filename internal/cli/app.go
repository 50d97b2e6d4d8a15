package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/racketbot"
	"github.com/aretw0/racketbot/internal/catalog"
	"github.com/aretw0/racketbot/internal/config"
	"github.com/aretw0/racketbot/internal/logging"
	"github.com/aretw0/racketbot/pkg/adapters/file"
	"github.com/aretw0/racketbot/pkg/adapters/memory"
	"github.com/aretw0/racketbot/pkg/adapters/recommend"
	"github.com/aretw0/racketbot/pkg/adapters/redis"
	"github.com/aretw0/racketbot/pkg/domain"
	"github.com/aretw0/racketbot/pkg/persistence/middleware"
	"github.com/aretw0/racketbot/pkg/ports"
	"github.com/aretw0/racketbot/pkg/runner"
	"github.com/aretw0/racketbot/pkg/session"
)

// GlobalOptions are the flags shared by every command.
type GlobalOptions struct {
	ConfigFile string
	EnvFile    string
	Debug      bool
	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// App holds the resolved configuration and builds the components commands need.
type App struct {
	Config config.Config
	Logger *slog.Logger
	Debug  bool
	Stdout io.Writer
	Stderr io.Writer
}

// Setup loads the configuration and creates the logger.
func Setup(opts GlobalOptions) (*App, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	cfg, err := config.Load(config.Options{File: opts.ConfigFile, EnvFile: opts.EnvFile})
	if err != nil {
		return nil, err
	}
	logger, err := createLogger(cfg.Log, opts.Debug, opts.Stderr)
	if err != nil {
		return nil, err
	}

	return &App{
		Config: cfg,
		Logger: logger,
		Debug:  opts.Debug,
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	}, nil
}

// newCatalog builds the catalogue service from the configured file, or the embedded
// sample when no path is set. Explanations come from OpenAI when a key is configured.
func (a *App) newCatalog() (*catalog.Catalog, error) {
	rackets := catalog.Default()
	if a.Config.Catalog.Path != "" {
		loaded, err := catalog.Load(a.Config.Catalog.Path)
		if err != nil {
			return nil, err
		}
		rackets = loaded
	}

	opts := []catalog.Option{catalog.WithLogger(a.Logger)}
	if a.Config.Catalog.Limit > 0 {
		opts = append(opts, catalog.WithLimit(a.Config.Catalog.Limit))
	}
	if a.Config.OpenAI.Enabled() {
		a.Logger.Info("Using OpenAI explanations", "model", a.Config.OpenAI.Model)
		opts = append(opts, catalog.WithExplainer(catalog.NewOpenAIExplainer(catalog.OpenAIConfig{
			APIKey:  a.Config.OpenAI.APIKey,
			BaseURL: a.Config.OpenAI.BaseURL,
			Model:   a.Config.OpenAI.Model,
		}, a.Logger)))
	}
	return catalog.New(rackets, opts...), nil
}

// newRecommender returns the in-process catalogue when inProcess is set,
// otherwise an HTTP client for the configured endpoint.
func (a *App) newRecommender(inProcess bool) (ports.Recommender, error) {
	if inProcess {
		return a.newCatalog()
	}
	return recommend.NewClient(a.Config.Endpoint,
		recommend.WithHTTPClient(&http.Client{Timeout: a.Config.Timeout}),
		recommend.WithLogger(a.Logger),
	), nil
}

// newEngine wires the configured script and texts. Debug hooks are added in debug mode.
func (a *App) newEngine(rec ports.Recommender, hooks ...domain.LifecycleHooks) (*racketbot.Engine, error) {
	if a.Debug {
		hooks = append(hooks, logging.DebugHooks(a.Logger))
	}
	engine, err := racketbot.New(
		racketbot.WithScript(a.Config.Script),
		racketbot.WithMessages(a.Config.Messages),
		racketbot.WithRecommender(rec),
		racketbot.WithLogger(a.Logger),
		racketbot.WithLifecycleHooks(logging.ChainHooks(hooks...)),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// storeKind selects the fallback store when Redis is not configured.
type storeKind int

const (
	storeMemory storeKind = iota
	storeFile
)

// newSessions builds the session manager. Redis wins when configured; otherwise
// fallback decides between process memory and the session directory.
// The returned close function releases the backing connection.
func (a *App) newSessions(fallback storeKind) (*session.Manager, func() error, error) {
	noop := func() error { return nil }
	opts := []session.Option{session.WithLogger(a.Logger)}

	if a.Config.Redis.Enabled() {
		store, err := redis.New(a.Config.Redis.URL,
			redis.WithPrefix(a.Config.Redis.Prefix),
			redis.WithTTL(a.Config.Redis.TTL),
		)
		if err != nil {
			return nil, noop, err
		}
		opts = append(opts,
			session.WithLocker(redis.NewLocker(store.Client(), a.Config.Redis.Prefix)),
			session.WithLockTTL(a.Config.Redis.LockTTL),
		)
		a.Logger.Info("Using Redis session store", "prefix", a.Config.Redis.Prefix)
		sealed, err := a.seal(store)
		if err != nil {
			_ = store.Close()
			return nil, noop, err
		}
		return session.NewManager(sealed, opts...), store.Close, nil
	}

	if fallback == storeMemory {
		return session.NewManager(memory.NewStore(), opts...), noop, nil
	}

	a.Logger.Debug("Using file session store", "dir", a.Config.SessionDir)
	sealed, err := a.seal(file.NewStore(a.Config.SessionDir))
	if err != nil {
		return nil, noop, err
	}
	return session.NewManager(sealed, opts...), noop, nil
}

// seal wraps a persistent store with encryption when a key is configured.
func (a *App) seal(store ports.StateStore) (ports.StateStore, error) {
	if !a.Config.Crypto.Enabled() {
		return store, nil
	}
	active, err := middleware.ParseKey(a.Config.Crypto.Key)
	if err != nil {
		return nil, err
	}
	cfg := middleware.EncryptionConfig{ActiveKey: active}
	for _, encoded := range a.Config.Crypto.FallbackKeys {
		key, err := middleware.ParseKey(encoded)
		if err != nil {
			return nil, fmt.Errorf("fallback key: %w", err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	if err != nil {
		return nil, err
	}
	return middleware.Chain(store, mw), nil
}

func (a *App) sanitizer() runner.Sanitizer {
	s := runner.NewSanitizer()
	if a.Config.MaxInputSize > 0 {
		s.MaxSize = a.Config.MaxInputSize
	}
	return s
}

// listenAndServe runs srv until ctx is cancelled, then shuts it down gracefully.
func (a *App) listenAndServe(ctx context.Context, srv *http.Server, name string) error {
	serverErrors := make(chan error, 1)
	go func() {
		a.Logger.Info("Starting "+name, "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%s error: %w", name, err)

	case <-ctx.Done():
		a.Logger.Info("Shutting down "+name)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("Graceful shutdown did not complete", "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		a.Logger.Info(name + " stopped gracefully")
		return nil
	}
}

package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/aretw0/racketbot/internal/catalog"
	"github.com/aretw0/racketbot/internal/metrics"
	httpapi "github.com/aretw0/racketbot/pkg/adapters/http"
)

// ServeOptions configures the session API server.
type ServeOptions struct {
	Addr      string // defaults to the configured http.addr
	InProcess bool
}

// Serve exposes conversations over the HTTP session API until ctx is done.
// Without Redis the sessions live in process memory.
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	handler, closeStore, err := a.apiHandler(opts)
	if err != nil {
		return err
	}
	defer closeStore()

	addr := opts.Addr
	if addr == "" {
		addr = a.Config.HTTP.Addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a.listenAndServe(ctx, srv, "racketbot API server")
}

func (a *App) apiHandler(opts ServeOptions) (http.Handler, func() error, error) {
	noop := func() error { return nil }

	rec, err := a.newRecommender(opts.InProcess)
	if err != nil {
		return nil, noop, err
	}
	collectors := metrics.New()
	engine, err := a.newEngine(rec, collectors.Hooks())
	if err != nil {
		return nil, noop, err
	}
	sessions, closeStore, err := a.newSessions(storeMemory)
	if err != nil {
		return nil, noop, err
	}

	handler, err := httpapi.NewHandler(engine, sessions,
		httpapi.WithLogger(a.Logger),
		httpapi.WithMetricsHandler(collectors.Handler()),
		httpapi.WithSanitizer(a.sanitizer()),
	)
	if err != nil {
		_ = closeStore()
		return nil, noop, err
	}
	return handler, closeStore, nil
}

// ServeCatalog runs the bundled recommendation service until ctx is done.
func (a *App) ServeCatalog(ctx context.Context, addr string) error {
	c, err := a.newCatalog()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = a.Config.Catalog.Addr
	}
	a.Logger.Info("Catalogue loaded", "rackets", len(c.Rackets()))

	srv := &http.Server{
		Addr:              addr,
		Handler:           catalog.NewHandler(c, a.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a.listenAndServe(ctx, srv, "catalogue service")
}

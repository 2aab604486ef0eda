package cli

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/ecoscore/internal/adapters/export"
	"github.com/okian/ecoscore/internal/adapters/http/api"
	"github.com/okian/ecoscore/internal/adapters/http/site"
	"github.com/okian/ecoscore/internal/adapters/http/swagger"
	"github.com/okian/ecoscore/internal/adapters/repository"
	"github.com/okian/ecoscore/internal/config"
	"github.com/okian/ecoscore/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Preview the published site with its JSON API",
		Long: `Serve output_dir at /, the products API at /api/products and
Prometheus metrics at /healthz. Run 'ecoscore build' first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			handler, err := newHandler(ctx, a.cfg)
			if err != nil {
				return err
			}
			return serve(ctx, a.cfg.Addr, handler)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default from config)")
	return cmd
}

// newHandler wires the preview routes over the published output directory.
func newHandler(ctx context.Context, cfg *config.Config) (http.Handler, error) {
	m, err := export.ReadManifest(filepath.Join(cfg.OutputDir, export.ManifestJSON))
	if err != nil {
		return nil, err
	}
	store := repository.NewMemoryStore(m.Records, repository.WithMaxLimit(cfg.MaxSearchLimit))

	mux := http.NewServeMux()
	if err := site.Register(ctx, mux, cfg.OutputDir); err != nil {
		return nil, err
	}
	swagger.Register(ctx, mux)
	api.NewServer(store, cfg.MaxSearchLimit).Register(ctx, mux)

	logger.Get().Named("serve").Info(ctx, "catalog loaded",
		logger.String("build_id", m.BuildID),
		logger.Int("products", store.Count(ctx)))
	return mux, nil
}

// serve runs the server until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, addr string, handler http.Handler) error {
	log := logger.Get().Named("serve")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", addr))
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
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}

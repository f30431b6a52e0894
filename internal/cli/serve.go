package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/aerogramlab/aerogram/internal/api"
	"github.com/aerogramlab/aerogram/pkg/cache"
	"github.com/aerogramlab/aerogram/pkg/pipeline"
	"github.com/aerogramlab/aerogram/pkg/store"
)

const defaultAddr = ":8080"

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
		redisAddr  string
		mongoURI   string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the diagram HTTP API",
		Long: `Run the diagram HTTP API.

The serve command starts an HTTP server exposing diagram computation
and archive endpoints. Redis is used for geometry caching when
configured, otherwise a local file cache. MongoDB is used for the
archive when configured, otherwise an in-memory store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			serveCfg := cfg.Serve
			if addr != "" {
				serveCfg.Addr = addr
			}
			if serveCfg.Addr == "" {
				serveCfg.Addr = defaultAddr
			}
			if redisAddr != "" {
				serveCfg.Redis.Addr = redisAddr
			}
			if mongoURI != "" {
				serveCfg.Mongo.URI = mongoURI
			}
			return c.runServe(cmd.Context(), serveCfg, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: ./aerogram.toml, then XDG config dir)")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for geometry caching")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "mongodb connection URI for the archive")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable geometry caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg ServeConfig, noCache bool) error {
	cch, err := c.serveCache(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(cch, nil, c.Logger)
	defer runner.Close()

	st, err := c.serveStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(shutdownCtx); err != nil {
			c.Logger.Warn("closing archive store", "error", err)
		}
	}()

	server := api.NewServer(runner, st, c.Logger)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// serveCache picks the cache backend: redis when configured, otherwise the
// local file cache, otherwise nothing.
func (c *CLI) serveCache(ctx context.Context, cfg ServeConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.Logger.Info("using redis cache", "addr", cfg.Redis.Addr)
		return rc, nil
	}
	return newCache(false)
}

// serveStore picks the archive backend: mongo when configured, otherwise
// an in-memory store.
func (c *CLI) serveStore(ctx context.Context, cfg ServeConfig) (store.Store, error) {
	if cfg.Mongo.URI != "" {
		ms, err := store.NewMongoStore(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		c.Logger.Info("using mongodb archive")
		return ms, nil
	}
	c.Logger.Info("using in-memory archive")
	return store.NewMemoryStore(), nil
}

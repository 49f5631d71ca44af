package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reflow/pkg/observability"
	"github.com/matzehuels/reflow/pkg/pipeline"
	"github.com/matzehuels/reflow/pkg/server"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath   string
		addr         string
		cacheBackend string
		storeBackend string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Settings come from an optional TOML file (--config, or
~/.config/reflow/config.toml when present), then the environment
(REFLOW_ADDR, REFLOW_REDIS_ADDR, REFLOW_MONGO_URI), then flags. Without any
of them the server listens on :8080 with a local file cache and an
in-memory document store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = defaultConfigPath()
			}
			cfg, err := loadServerConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if cacheBackend != "" {
				cfg.Cache.Backend = cacheBackend
			}
			if storeBackend != "" {
				cfg.Store.Backend = storeBackend
			}
			if err := cfg.validate(); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML config file (default ~/.config/reflow/config.toml)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+server.DefaultAddr+")")
	cmd.Flags().StringVar(&cacheBackend, "cache", "", "cache backend: none, file, redis")
	cmd.Flags().StringVar(&storeBackend, "store", "", "document store: memory, file, mongo")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg *serverConfig) error {
	cache, err := cfg.openCache(ctx)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	runner := pipeline.NewRunner(cache, nil, c.Logger)
	defer runner.Close()

	st, err := cfg.openStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	c.Logger.Info("starting server",
		"addr", cfg.Addr,
		"cache", cfg.Cache.Backend,
		"store", cfg.Store.Backend)

	stats := observability.NewStats()
	defer observability.Register(stats)()

	srv := server.New(runner, st, c.Logger,
		server.WithMaxBodyBytes(cfg.MaxBodyBytes),
		server.WithStats(stats))
	return srv.ListenAndServe(ctx, cfg.Addr)
}

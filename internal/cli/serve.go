package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/matzehuels/strata/pkg/observability/otelhooks"
	"github.com/matzehuels/strata/pkg/pipeline"
	"github.com/matzehuels/strata/pkg/server"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr        string
	redisURL    string
	noCache     bool
	timeout     time.Duration
	maxBodySize int64
}

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:        ":8080",
		timeout:     server.DefaultTimeout,
		maxBodySize: server.DefaultMaxBodySize,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Serve layouts over HTTP.

POST a {"diagram": ..., "config": ...} body to /v1/layout for layout JSON,
or to /v1/layout/dot and /v1/layout/svg for renderings. With --redis-url
the layout cache is shared between server instances.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if opts.redisURL != "" {
				cfg.Cache.Backend = pipeline.CacheRedis
				cfg.Cache.RedisURL = opts.redisURL
			}
			return c.runServe(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisURL, "redis-url", "", "Redis URL for a shared layout cache (e.g. redis://localhost:6379/0)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request timeout")
	cmd.Flags().Int64Var(&opts.maxBodySize, "max-body-size", opts.maxBodySize, "maximum request body size in bytes")

	return cmd
}

// runServe wires metrics, builds the runner and serves until ctx ends.
func (c *CLI) runServe(ctx context.Context, cfg pipeline.FileConfig, opts serveOpts) error {
	hooks, err := otelhooks.New(otel.Meter("strata"))
	if err != nil {
		return fmt.Errorf("initialize metrics: %w", err)
	}
	hooks.Install()

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := server.New(runner, c.Logger,
		server.WithTimeout(opts.timeout),
		server.WithMaxBodySize(opts.maxBodySize),
	)

	backend := cfg.Cache.Backend
	if opts.noCache {
		backend = pipeline.CacheNone
	}
	printInfo("Listening on %s", StyleHighlight.Render(opts.addr))
	printDetail("cache: %s", backend)
	return srv.ListenAndServe(ctx, opts.addr)
}

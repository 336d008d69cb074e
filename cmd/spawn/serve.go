package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/spawn/internal/config"
	"github.com/vango-dev/spawn/pkg/metrics"
	"github.com/vango-dev/spawn/pkg/render"
	"github.com/vango-dev/spawn/pkg/server"
)

func serveCmd(g *globals) *cobra.Command {
	var (
		port       int
		host       string
		noReload   bool
		watchPaths []string
	)

	cmd := &cobra.Command{
		Use:   "serve FILE",
		Short: "Preview a descriptor document in the browser",
		Long: `Serve FILE as a page with live reload.

Saving FILE, or any extra --watch path, reloads connected browsers.
A document that no longer decodes shows its error in the browser
console instead.

Routes:
  GET  /         the rendered page
  GET  /outline  the element tree
  GET  /query    ?q=QUERY, matches as JSON
  POST /render   render a posted document
  GET  /metrics  Prometheus metrics (server.metrics)

Examples:
  spawn serve page.yaml
  spawn serve page.yaml --port=8080 --watch=styles.css`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if noReload {
				cfg.Server.LiveReload = false
			}
			cfg.Server.Watch = append(cfg.Server.Watch, watchPaths...)

			if _, err := os.Stat(args[0]); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := cmd.OutOrStdout()
			printBanner(w)
			fmt.Fprintln(w, "  serve")
			fmt.Fprintln(w)
			success(w, "Serving %s on %s", args[0], cfg.ServerURL())
			if cfg.Server.LiveReload {
				info(w, "Live reload on")
			}

			return newServer(g, cfg, args[0]).ListenAndServe(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config: 3000)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config: localhost)")
	cmd.Flags().BoolVar(&noReload, "no-reload", false, "Disable live reload")
	cmd.Flags().StringSliceVarP(&watchPaths, "watch", "w", nil, "Extra paths that trigger a reload")

	return cmd
}

// newServer wires a preview server from the loaded configuration.
func newServer(g *globals, cfg *config.Config, path string) *server.Server {
	logger := g.logger(cfg)

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithCache(g.cache(cfg, logger)),
	}
	if cfg.Server.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, server.WithMetrics(metrics.New(metrics.WithRegistry(reg)), reg))
	}
	if cfg.Server.Tracing {
		opts = append(opts, server.WithTracing())
	}

	return server.New(path, server.Config{
		Address: cfg.ServerAddress(),
		Render: render.RendererConfig{
			Pretty: cfg.Render.Pretty,
			Indent: cfg.Render.Indent,
		},
		Lang:       cfg.Render.Lang,
		LiveReload: cfg.Server.LiveReload,
		Watch:      cfg.Server.Watch,
	}, opts...)
}

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/studio/internal/config"
	"github.com/vango-dev/studio/internal/server"
	"github.com/vango-dev/studio/internal/telemetry"
	"github.com/vango-dev/studio/pkg/editor"
)

type serveOptions struct {
	port          int
	host          string
	buildServer   string
	noBuildServer bool
	workspace     string
	watch         bool
	original      string
	noHotReload   bool
}

// apply overrides cfg with the flags that were set.
func (o serveOptions) apply(cfg *config.Config) {
	if o.port > 0 {
		cfg.Server.Port = o.port
	}
	if o.host != "" {
		cfg.Server.Host = o.host
	}
	if o.buildServer != "" {
		cfg.BuildServer.URL = o.buildServer
		cfg.BuildServer.Disabled = false
	}
	if o.noBuildServer {
		cfg.BuildServer.Disabled = true
	}
	if o.workspace != "" {
		cfg.Workspace.Dir = o.workspace
	}
	if o.watch {
		cfg.Workspace.Watch = true
	}
	if o.original != "" {
		cfg.Loader.Original.Dir = o.original
	}
	if o.noHotReload {
		off := false
		cfg.Preview.HotReload = &off
	}
}

func serveCmd(flags *globalFlags) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the studio server",
		Long: `Start the studio server.

The server joins the build server's session, scans the component catalog,
renders the app and serves the studio API, the preview page and the host
event stream until interrupted.

Examples:
  studio serve
  studio serve --port=4200
  studio serve --no-build-server --workspace=./app --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.configPath, flags.logger)
			if err != nil {
				return err
			}
			opts.apply(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, cfg, flags)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.port, "port", "p", 0, "Port to listen on (default from studio.json)")
	f.StringVarP(&opts.host, "host", "H", "", "Host to bind to (default from studio.json)")
	f.StringVar(&opts.buildServer, "build-server", "", "Build server URL")
	f.BoolVar(&opts.noBuildServer, "no-build-server", false, "Work offline against the local workspace")
	f.StringVarP(&opts.workspace, "workspace", "w", "", "Local workspace directory")
	f.BoolVar(&opts.watch, "watch", false, "Watch the local workspace for changes")
	f.StringVar(&opts.original, "original", "", "Directory of the original app package")
	f.BoolVar(&opts.noHotReload, "no-hot-reload", false, "Do not reload the preview on changes")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config, flags *globalFlags) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics(telemetry.WithRegistry(reg))

	ed, err := editor.New(cfg, editor.Deps{Logger: flags.logger, Metrics: metrics})
	if err != nil {
		return err
	}
	if err := ed.Init(ctx); err != nil {
		return err
	}
	defer ed.Dispose()

	srv := server.New(ed, server.WithLogger(flags.logger), server.WithMetrics(metrics, reg))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n  studio %s\n\n", version)
	fmt.Fprintf(out, "  Preview:    http://%s/preview\n", cfg.Address())
	fmt.Fprintf(out, "  API:        http://%s/api\n", cfg.Address())
	if cfg.BuildServerEnabled() {
		fmt.Fprintf(out, "  Build:      %s\n", cfg.BuildServer.URL)
	} else {
		fmt.Fprintf(out, "  Workspace:  %s\n", cfg.WorkspacePath())
	}
	fmt.Fprintf(out, "  Components: %d\n\n", ed.Registry().Len())

	return srv.ListenAndServe(ctx, cfg.Address())
}

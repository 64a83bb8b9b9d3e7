package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	ssr "github.com/vango-dev/ssr"
	"github.com/vango-dev/ssr/internal/config"
	ssrerrors "github.com/vango-dev/ssr/internal/errors"
	"github.com/vango-dev/ssr/pkg/render"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the render server",
		Long: `Start the render server.

Every GET request that does not hit a static file is rendered:
matched views prefetch their data, the markup is injected into the
page template and the store snapshot is embedded for hydration.

Examples:
  ssrd serve
  ssrd serve --port=8080 --dev
  SSR_SOURCE_KIND=http SSR_SOURCE_BASE_URL=https://hacker-news.firebaseio.com/v0 ssrd serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, cfg)
		},
	}
	config.RegisterServeFlags(cmd.Flags())
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	logger := cfg.Log.NewLogger(cmd.ErrOrStderr())
	f, err := newFactory(cfg, logger)
	if err != nil {
		return err
	}

	template, manifest := bundlePaths(cfg)
	sc := ssr.Config{
		Addr:     cfg.Addr(),
		Title:    cfg.Server.Title,
		Template: template,
		Manifest: manifest,
		Static: ssr.StaticConfig{
			Dir:    cfg.Static.Dir,
			Prefix: cfg.Static.Prefix,
		},
		DevMode: cfg.Dev,
		Metrics: cfg.Metrics,
		Tracing: cfg.Tracing,
		Logger:  logger,
	}
	if cfg.Static.Cache {
		sc.Static.CacheControl = ssr.CacheControlProduction
	}
	if !exists(sc.Static.Dir) {
		logger.Warn("static directory unavailable, serving pages only", "dir", sc.Static.Dir)
		sc.Static.Dir = ""
	}

	srv, err := ssr.NewServer(f, sc)
	if err != nil {
		return bundleError(err, cfg.Bundle.Template)
	}

	success(cmd.OutOrStdout(), "Listening on http://%s", sc.Addr)
	return srv.Run(ctx)
}

// bundlePaths returns the configured template and manifest. A missing
// template at the default path selects the built-in page.
func bundlePaths(cfg *config.Config) (template, manifest string) {
	template = cfg.Bundle.Template
	if template == config.DefaultTemplate && !exists(template) {
		template = ""
	}
	return template, cfg.Bundle.Manifest
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// bundleError maps a bundle loading failure to its code.
func bundleError(err error, template string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ssrerrors.New("E200").WithField(template).Wrap(err).
			WithSuggestion("Set bundle.template, or leave it empty to use the default page")
	case errors.Is(err, render.ErrNoOutlet):
		return ssrerrors.New("E201").WithField(template)
	default:
		return ssrerrors.New("E202").Wrap(err)
	}
}

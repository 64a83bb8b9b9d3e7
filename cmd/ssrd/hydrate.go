package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/ssr/internal/config"
	ssrerrors "github.com/vango-dev/ssr/internal/errors"
	"github.com/vango-dev/ssr/pkg/hydrate"
)

func hydrateCmd() *cobra.Command {
	var (
		server  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "hydrate <url>",
		Short: "Check that a served page hydrates without refetching",
		Long: `Fetch a page from a running render server, replay its snapshot into
a new app and compare the markup the app renders with the markup
the server sent.

Examples:
  ssrd hydrate /item/1
  ssrd hydrate /foo --server=http://127.0.0.1:8080`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := cfg.Log.NewLogger(cmd.ErrOrStderr())
			f, err := newFactory(cfg, logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			env, err := fetchEnvironment(ctx, strings.TrimSuffix(server, "/"), args[0])
			if err != nil {
				return err
			}

			c, err := hydrate.Verify(ctx, f, env, hydrate.WithLogger(logger))
			switch {
			case errors.Is(err, hydrate.ErrHydrationMismatch):
				return ssrerrors.New("E302").WithField(args[0]).Wrap(err)
			case errors.Is(err, hydrate.ErrNoMountPoint):
				return ssrerrors.New("E302").WithField(args[0]).WithDetail("The page has no #app element.")
			case err != nil:
				return err
			}

			for _, nerr := range c.Errors() {
				logger.Warn("navigation error during hydration", "error", nerr)
			}
			success(cmd.OutOrStdout(), "%s hydrated (snapshot replayed: %t)", args[0], env.InitialState != nil)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://"+config.DefaultHost+":3000", "base URL of the render server")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "overall timeout")
	config.RegisterSourceFlags(cmd.Flags())
	return cmd
}

func fetchEnvironment(ctx context.Context, server, url string) (*hydrate.Environment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server+url, nil)
	if err != nil {
		return nil, ssrerrors.New("E303").WithField(server + url).Wrap(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, ssrerrors.New("E303").WithField(server + url).Wrap(err).
			WithSuggestion("Start the server with 'ssrd serve' or pass --server")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ssrerrors.New("E301").WithField(url)
	case resp.StatusCode != http.StatusOK:
		return nil, ssrerrors.New("E300").WithField(url).WithDetail("The server answered " + resp.Status + ".")
	}
	return hydrate.FromDocument(resp.Body, url)
}

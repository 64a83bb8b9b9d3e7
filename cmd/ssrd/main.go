package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	ssr "github.com/vango-dev/ssr"
	"github.com/vango-dev/ssr/app"
	"github.com/vango-dev/ssr/internal/config"
	ssrerrors "github.com/vango-dev/ssr/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		ssrerrors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ssrd",
		Short: "Server-side render server with state hydration",
		Long: `ssrd renders the item viewer on the server and embeds the store
snapshot the client hydrates from.

Configuration is read from ssr.yaml, SSR_* environment variables
and flags, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "config file (default ./ssr.yaml)")
	config.RegisterLogFlags(root.PersistentFlags())

	root.AddCommand(
		serveCmd(),
		renderCmd(),
		hydrateCmd(),
		versionCmd(),
	)
	return root
}

// loadConfig resolves the configuration of cmd from file, environment and
// flags, and validates it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	v := config.New(file)
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newFactory builds the demo app on the configured item source.
func newFactory(cfg *config.Config, logger *slog.Logger) (*ssr.Factory, error) {
	fetcher, err := cfg.Source.NewFetcher(app.Fixtures())
	if err != nil {
		return nil, err
	}
	return app.NewFactory(fetcher, logger), nil
}

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

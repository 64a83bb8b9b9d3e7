package main

import (
	"fmt"

	"github.com/spf13/cobra"

	ssr "github.com/vango-dev/ssr"
	"github.com/vango-dev/ssr/internal/config"
	ssrerrors "github.com/vango-dev/ssr/internal/errors"
	"github.com/vango-dev/ssr/pkg/render"
)

func renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <url>",
		Short: "Render one URL to stdout",
		Long: `Render one URL exactly as the server would and print the page.

Examples:
  ssrd render /item/1
  ssrd render /foo --template=index.template.html`,
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

			template, manifest := bundlePaths(cfg)
			bundle, err := render.LoadBundle(template, manifest)
			if err != nil {
				return bundleError(err, template)
			}
			r := render.NewBundleRenderer(ssr.EntryServer(f), render.Options{
				Template: bundle.Template,
				Manifest: bundle.Manifest,
				Logger:   logger,
			})

			html, err := r.RenderToString(cmd.Context(), &render.Context{URL: args[0], Title: cfg.Server.Title})
			if err != nil {
				if render.StatusCode(err) == 404 {
					return ssrerrors.New("E301").WithField(args[0])
				}
				return ssrerrors.New("E300").WithField(args[0]).Wrap(err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), html)
			return err
		},
	}

	cmd.Flags().String("template", config.DefaultTemplate, "page template file")
	cmd.Flags().String("manifest", config.DefaultManifest, "client build manifest")
	cmd.Flags().String("title", config.DefaultTitle, "page title")
	config.RegisterSourceFlags(cmd.Flags())
	return cmd
}

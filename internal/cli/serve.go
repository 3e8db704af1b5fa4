package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmarchal/pagegrid/internal/config"
	"github.com/tmarchal/pagegrid/internal/server"
)

// serveCommand creates the serve command running the user-layouts service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		listen     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the user-layouts HTTP service",
		Long: `Run the user-layouts HTTP service.

The service authenticates users from the configuration file, persists one
layout record per (user, page), and validates every saved layout against
the page registry. Without --config it runs with an in-memory store and no
accounts, which is only useful for smoke testing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if listen != "" {
				cfg.Server.Listen = listen
			}

			st, err := server.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if len(cfg.Users) == 0 {
				c.Logger.Warn("no users configured, all layout routes will reject")
			}
			c.Logger.Info("starting service",
				"listen", cfg.Server.Listen,
				"backend", cfg.Store.Backend,
				"users", len(cfg.Users),
			)

			srv := server.New(cfg, st, c.Logger)
			if err := srv.Run(cmd.Context()); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to TOML configuration file")
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides config)")

	return cmd
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viktsys/polycli/api"
	"github.com/viktsys/polycli/database"
)

func newServerCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the API server",
		Long:  `Start the HTTP API server to serve statistics over ingested bars.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.logger.Info("Initializing database...")
			store, err := database.Open(a.cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer store.Close()

			r := api.SetupRoutes(api.NewHandler(store))

			a.logger.Info("Starting server", "addr", addr)
			if err := r.Run(addr); err != nil {
				return fmt.Errorf("failed to start server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

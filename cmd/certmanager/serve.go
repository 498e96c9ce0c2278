package main

import (
	"os"
	"os/signal"
	"syscall"

	"certmanager/internal/config"
	httpinfra "certmanager/internal/infra/http"

	"github.com/spf13/cobra"
)

func newServeCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Migrate, seed an empty catalog and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			inserted, err := app.seed(cmd.Context(), store)
			if err != nil {
				return err
			}
			app.log.WithField("inserted", inserted).Info("startup seed finished")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return httpinfra.NewServer(app.cfg, store, app.log).Run(ctx)
		},
	}
	cmd.Flags().String("addr", "", "listen address (env HTTP_ADDR, default :8000)")
	_ = app.v.BindPFlag(config.KeyHTTPAddr, cmd.Flags().Lookup("addr"))
	return cmd
}

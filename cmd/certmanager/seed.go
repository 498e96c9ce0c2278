package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate and load the control catalog when the store is empty",
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
			if inserted == 0 {
				fmt.Fprintln(app.out, "catalog already present, nothing seeded")
				return nil
			}
			fmt.Fprintf(app.out, "seeded %d controls\n", inserted)
			return nil
		},
	}
}

package main

import (
	"errors"
	"fmt"
	"time"

	"certmanager/internal/infra/orphans"

	"github.com/spf13/cobra"
)

func newOrphansCmd(app *cli) *cobra.Command {
	var limit int64
	cmd := &cobra.Command{
		Use:   "orphans",
		Short: "List evidence files whose removal failed after their metadata was deleted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.RedisAddr == "" {
				return errors.New("REDIS_ADDR is not configured; orphans were only logged")
			}
			sink, err := orphans.NewRedisSink(app.cfg.RedisAddr, app.cfg.RedisPassword, app.cfg.RedisDB, app.cfg.OrphanListKey)
			if err != nil {
				return err
			}
			defer sink.Close()

			found, err := sink.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Fprintln(app.out, "no orphaned evidence files")
				return nil
			}
			for _, o := range found {
				fmt.Fprintf(app.out, "%s\t%d\t%s\t%s\n", o.DetectedAt.UTC().Format(time.RFC3339), o.EvidenceID, o.Path, o.Reason)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&limit, "limit", 0, "maximum entries to print (0 for all)")
	return cmd
}

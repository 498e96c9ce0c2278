package main

import (
	"fmt"
	"os"

	"certmanager/internal/config"
	"certmanager/internal/infra/db"
	"certmanager/internal/infra/spreadsheet"
	"certmanager/internal/usecase"

	"github.com/spf13/cobra"
)

func newImportCmd(app *cli) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "import [path]",
		Short: "Upsert assessment objectives and methods from a spreadsheet",
		Long: `import reads an .xlsx/.xlsm workbook (first sheet) or a .csv file with the
columns requirement_id, assessment_objectives and assessment_methods, and
writes those two fields onto the matching controls. Unknown requirement ids
get a placeholder control. Defaults to IMPORT_PATH when no path is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.cfg.ImportPath
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("spreadsheet %q: %w", path, err)
			}
			table, err := spreadsheet.Read(path)
			if err != nil {
				return err
			}

			store, err := app.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			rec := usecase.NewImportReconciler(db.NewControlRepository(store.DB), app.log)
			report, err := rec.Import(cmd.Context(), table)
			printReport(app, report, verbose)
			return err
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print one line per row")
	cmd.Flags().String("default-path", "", "spreadsheet used when no path is given (env IMPORT_PATH)")
	_ = app.v.BindPFlag(config.KeyImportPath, cmd.Flags().Lookup("default-path"))
	return cmd
}

func printReport(app *cli, report usecase.ImportReport, verbose bool) {
	if verbose {
		for _, row := range report.Rows {
			line := fmt.Sprintf("row %d\t%s\t%s", row.Line, row.Outcome, row.RequirementID)
			if row.Err != nil {
				line += "\t" + row.Err.Error()
			}
			fmt.Fprintln(app.out, line)
		}
	}
	fmt.Fprintf(app.out, "import complete: %d created, %d updated, %d skipped, %d failed\n",
		report.Created, report.Updated, report.Skipped, report.Failed)
}

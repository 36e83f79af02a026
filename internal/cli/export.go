package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/evdash/internal/core"
)

func newExportCommand(a *app) *cobra.Command {
	f := &viewFlags{}
	var file string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered and sorted records as CSV",
		Long: `Write every record matching the filters, in sort order, as CSV with all
seven columns quoted. Pagination and hidden columns do not apply.`,
		Example: `  evctl export --data vehicles.json --type "Battery Electric Vehicle (BEV)" -o bev.csv`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tv, err := f.apply(a.records)
			if err != nil {
				return err
			}
			records := tv.View().Export

			if file == "" {
				if err := core.WriteCSV(cmd.OutOrStdout(), records); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout())
				return err
			}

			out, err := os.Create(file)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			if err := core.WriteCSV(out, records); err != nil {
				_ = out.Close()
				return fmt.Errorf("write %s: %w", file, err)
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("close %s: %w", file, err)
			}
			a.log.Info("export written", "file", file, "records", len(records))
			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().StringVarP(&file, "file", "o", "", "Write to this file instead of stdout, e.g. "+core.ExportFilename)
	return cmd
}

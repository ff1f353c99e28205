package cli

import (
	"fmt"
	"strings"

	"github.com/sadopc/biome/internal/export"
	"github.com/spf13/cobra"
)

func exportCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all tasks as CSV or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")
			format = strings.ToLower(format)
			if format != "csv" && format != "json" {
				return fmt.Errorf("unknown format %q, want csv or json", format)
			}

			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			all := s.app.Tasks.All()
			index := export.Index(s.app.Projects.List())

			if out == "" {
				if format == "csv" {
					return export.WriteCSV(cmd.OutOrStdout(), all, index)
				}
				return export.WriteJSON(cmd.OutOrStdout(), all, index, s.app.Now())
			}

			if format == "csv" {
				err = export.ToCSV(all, index, out)
			} else {
				err = export.ToJSON(all, index, out)
			}
			if err != nil {
				return err
			}
			s.logger.Info("exported tasks", "format", format, "path", out, "count", len(all))
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d tasks to %s\n", len(all), out)
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "csv", "Output format (csv, json)")
	cmd.Flags().StringP("out", "o", "", "Output file (default stdout)")

	return cmd
}

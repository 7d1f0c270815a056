package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rypi-dev/photos-stats/internal/library"
	"github.com/rypi-dev/photos-stats/internal/report"
)

func newOverviewCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show an overview of your photos library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.openLibrary(cmd.Context())
			if err != nil {
				return err
			}
			defer lib.Close()

			ov, err := report.Overview(cmd.Context(), lib)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := report.WriteOverview(&buf, ov); err != nil {
				return err
			}
			_, err = buf.WriteTo(a.stdout)
			return err
		},
	}
}

func newStatsCommand(a *app) *cobra.Command {
	var columns []string

	cmd := &cobra.Command{
		Use:   "stats [columns...]",
		Short: "Show stats about your photos library",
		Long: `Group the extended attributes table by each column and count the rows.

Columns default to the configured list (all known columns). Run
"photos-stats columns" for the accepted names.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validation avant toute ouverture de la base
			var (
				cols []library.Column
				err  error
			)
			if requested := append(append([]string{}, columns...), args...); len(requested) > 0 {
				cols, err = library.ParseColumns(requested)
			} else {
				cols, err = a.cfg.StatsColumns()
			}
			if err != nil {
				return err
			}

			lib, err := a.openLibrary(cmd.Context())
			if err != nil {
				return err
			}
			defer lib.Close()

			stats, err := report.Stats(cmd.Context(), lib, cols)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := report.WriteStats(&buf, stats); err != nil {
				return err
			}
			_, err = buf.WriteTo(a.stdout)
			return err
		},
	}

	cmd.Flags().StringSliceVarP(&columns, "columns", "c", nil, "columns to group by (repeatable or comma separated)")
	return cmd
}

func newExportCommand(a *app) *cobra.Command {
	var (
		pretty bool
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stats about your photos library as JSON",
		Long: `Build the full statistics document and write it to stdout, so you can
redirect it to a file:

  photos-stats export > stats.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			lib, err := a.openLibrary(cmd.Context())
			if err != nil {
				return err
			}
			defer lib.Close()

			doc, err := report.Export(cmd.Context(), lib)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := report.EncodeExport(&buf, doc, f, pretty); err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = buf.WriteTo(a.stdout)
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			a.logger.Info("export written", zap.String("path", output), zap.Int64("total_photos", doc.TotalPhotos))
			return nil
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON document")
	cmd.Flags().StringVar(&format, "format", "json", "document format (json or yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the document to a file instead of stdout")
	return cmd
}

func newColumnsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "columns",
		Short: "List the columns accepted by stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var buf bytes.Buffer
			for _, c := range library.AllColumns() {
				fmt.Fprintf(&buf, "%-14s %s\n", c, c.Alias())
			}
			_, err := buf.WriteTo(a.stdout)
			return err
		},
	}
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(a.stdout, "photos-stats %s (%s)\n", Version, Commit)
			return err
		},
	}
}

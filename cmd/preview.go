package cmd

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/RubachokBoss/submission-report/internal/app"
	"github.com/RubachokBoss/submission-report/internal/report"
)

func previewCmd() *cobra.Command {
	var (
		selection selectionFlags
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Fetch submissions and print the first rows as a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			components, err := app.Build(cfg, log, app.BuildOptions{})
			if err != nil {
				return err
			}
			defer components.Close()

			resolver := components.ResolverFor(selection.group, selection.structure, selection.pageURL)
			state, err := components.Pipeline.Run(cmd.Context(), resolver)
			if err != nil {
				return err
			}

			return outputPreview(cmd.OutOrStdout(), state.Summary, report.Preview(state.Students, limit), len(state.Students))
		},
	}

	selection.register(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", report.DefaultPreviewRows, "Number of students to show")

	return cmd
}

func outputPreview(w io.Writer, summary report.Summary, rows []report.PreviewRow, total int) error {
	fmt.Fprintf(w, "%d students · %d submission entries · %d files\n", summary.Students, summary.Submissions, summary.Files)

	table := tablewriter.NewWriter(w)
	table.Header("Student", "Submissions", "Latest Score", "Feedback")
	for _, row := range rows {
		if err := table.Append(row.Cells()); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	if rest := total - len(rows); rest > 0 {
		fmt.Fprintf(w, "… and %d more\n", rest)
	}
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RubachokBoss/submission-report/internal/app"
	"github.com/RubachokBoss/submission-report/internal/service"
)

func exportCmd() *cobra.Command {
	var (
		selection selectionFlags
		format    string
		out       string
		upload    bool
		printMode bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch submissions and write the report",
		Example: `  submission-report export --group GRP-7QK2 --structure Node-55AB
  submission-report export --format pdf --out ./reports
  submission-report export --print --out - > report.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if out != "" && out != "-" {
				cfg.Report.OutputDir = out
			}

			components, err := app.Build(cfg, log, app.BuildOptions{Upload: upload, Notify: true})
			if err != nil {
				return err
			}
			defer components.Close()

			ctx := cmd.Context()
			resolver := components.ResolverFor(selection.group, selection.structure, selection.pageURL)
			state, err := components.Pipeline.Run(ctx, resolver)
			if err != nil {
				return err
			}

			if out == "-" {
				doc, err := components.Exporter.Build(ctx, format, printMode)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(doc.Body)
				return err
			}

			resp, err := components.Exporter.Publish(ctx, format, printMode)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d students, %d submissions, %d files\n",
				state.Summary.Students, state.Summary.Submissions, state.Summary.Files)
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s (%d bytes)\n", resp.Location, resp.Size)
			return nil
		},
	}

	selection.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", service.FormatHTML, "Output format (html, pdf)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output directory, or - for stdout (default report.output_dir)")
	cmd.Flags().BoolVar(&upload, "upload", false, "Upload the report to object storage")
	cmd.Flags().BoolVar(&printMode, "print", false, "Include print styles and open the print dialog on load")
	cmd.MarkFlagsMutuallyExclusive("upload", "out")

	return cmd
}

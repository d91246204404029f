package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/linecrop/internal/batch"
	"github.com/MeKo-Tech/linecrop/internal/dataset"
	"github.com/spf13/cobra"
)

func newDocumentCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "document <file.pdf>",
		Short: "Extract line images and labels from a single PDF",
		Long: `Run the per-document pipeline on one PDF and print its summary. Unlike
run, a failing document makes the command fail.

Examples:
  linecrop document report.pdf
  linecrop document scan.pdf --backend poppler --dpi 300 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.processDocument(cmd, args[0])
		},
	}

	cmd.Flags().StringP("format", "f", "text", "summary format (text, json, csv)")
	cmd.Flags().StringP("output", "o", "", "summary file (default: stdout)")
	return cmd
}

func (a *app) processDocument(cmd *cobra.Command, path string) error {
	format := a.cfg.Output.SummaryFormat
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}
	outputFile, _ := cmd.Flags().GetString("output")

	pipeline, err := newPipeline(a.cfg)
	if err != nil {
		return err
	}

	res := pipeline.ProcessDocument(path)
	summary := &batch.Result{
		Results:     []*dataset.DocumentResult{res},
		Paths:       []string{path},
		Duration:    res.Duration,
		WorkerCount: 1,
	}
	if err := summary.WriteResults(cmd.OutOrStdout(), format, outputFile, false); err != nil {
		return err
	}
	if res.Err != nil {
		return fmt.Errorf("failed to process %s: %w", path, res.Err)
	}
	return nil
}

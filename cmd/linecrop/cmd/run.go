package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MeKo-Tech/linecrop/internal/batch"
	"github.com/MeKo-Tech/linecrop/internal/config"
	"github.com/MeKo-Tech/linecrop/internal/dataset"
	"github.com/MeKo-Tech/linecrop/internal/server"
	"github.com/spf13/cobra"
)

func newRunCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Build the line dataset from a directory of PDFs",
		Long: `Discover PDFs and process them with a bounded pool of workers. Without
arguments the configured source directory (input.source_dir) is used.

Discovery is sorted by path and capped at --max-documents (0 = no cap).
A document that cannot be processed is logged and skipped; lines already
written for it are kept. Ctrl-C stops dispatching new documents and waits
for the running ones.

Examples:
  linecrop run
  linecrop run data/PDF --workers 4
  linecrop run docs/ --recursive --exclude "draft_*" --format csv --output summary.csv
  linecrop run data/PDF --metrics-addr :9100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDataset(cmd, args)
		},
	}

	cmd.Flags().IntP("workers", "w", batch.DefaultWorkers, "number of parallel workers")
	cmd.Flags().Int("max-documents", batch.DefaultMaxDocuments, "maximum number of documents per run (0 = unlimited)")
	cmd.Flags().BoolP("recursive", "r", false, "process directories recursively")
	cmd.Flags().StringSlice("include", batch.DefaultIncludePatterns, "file patterns to include")
	cmd.Flags().StringSlice("exclude", nil, "file patterns to exclude")
	cmd.Flags().StringP("format", "f", "text", "summary format (text, json, csv)")
	cmd.Flags().StringP("output", "o", "", "summary file (default: stdout)")
	cmd.Flags().Bool("progress", true, "show a progress bar")
	cmd.Flags().BoolP("quiet", "q", false, "suppress progress and informational output")
	cmd.Flags().Bool("stats", false, "print run statistics")
	cmd.Flags().String("metrics-addr", "", "serve /metrics, /status and /events on this address during the run")

	return cmd
}

// configToBatchConfig maps the resolved configuration to batch.Config.
// Flags set on the command line override config file values.
func configToBatchConfig(cfg *config.Config, cmd *cobra.Command) *batch.Config {
	bc := cfg.ToBatchConfig()

	if cmd.Flags().Changed("workers") {
		bc.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("max-documents") {
		bc.MaxDocuments, _ = cmd.Flags().GetInt("max-documents")
	}
	if cmd.Flags().Changed("recursive") {
		bc.Recursive, _ = cmd.Flags().GetBool("recursive")
	}
	if cmd.Flags().Changed("include") {
		bc.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
	}
	if cmd.Flags().Changed("exclude") {
		bc.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")
	}
	if cmd.Flags().Changed("format") {
		bc.Format, _ = cmd.Flags().GetString("format")
	}
	if cmd.Flags().Changed("output") {
		bc.OutputFile, _ = cmd.Flags().GetString("output")
	}
	if cmd.Flags().Changed("progress") {
		bc.ShowProgress, _ = cmd.Flags().GetBool("progress")
	}
	if cmd.Flags().Changed("stats") {
		bc.ShowStats, _ = cmd.Flags().GetBool("stats")
	}
	bc.Quiet, _ = cmd.Flags().GetBool("quiet")
	bc.ProgressWriter = cmd.ErrOrStderr()
	return bc
}

func (a *app) runDataset(cmd *cobra.Command, args []string) error {
	cfg := a.cfg
	bc := configToBatchConfig(cfg, cmd)
	if bc.Workers <= 0 {
		return fmt.Errorf("invalid workers: %d (must be positive)", bc.Workers)
	}
	if len(args) == 0 {
		args = []string{cfg.Input.SourceDir}
	}

	pipeline, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsAddr := cfg.Metrics.Addr
	if cmd.Flags().Changed("metrics-addr") {
		metricsAddr, _ = cmd.Flags().GetString("metrics-addr")
	}
	stopMetrics := func() {}
	if metricsAddr != "" {
		stopMetrics = startMetricsServer(ctx, cfg, metricsAddr, bc)
	}

	slog.Info("Starting run",
		"paths", args,
		"workers", bc.Workers,
		"images_dir", cfg.Output.ImagesDir,
		"labels_dir", cfg.Output.LabelsDir)

	res, runErr := batch.ProcessBatch(ctx, args, bc, pipeline)
	stopMetrics()

	if errors.Is(runErr, batch.ErrNoDocuments) {
		return fmt.Errorf("no documents matching %v found in %v", bc.IncludePatterns, args)
	}
	if res == nil {
		return runErr
	}

	if err := res.WriteResults(cmd.OutOrStdout(), bc.Format, bc.OutputFile, bc.Quiet); err != nil {
		return err
	}
	if bc.ShowStats {
		res.PrintStats(cmd.OutOrStdout(), bc.Quiet)
	}

	stats := res.Stats()
	slog.Info("Run finished",
		"documents", stats.TotalDocuments,
		"failed", stats.FailedDocuments,
		"lines", stats.Lines,
		"duration", res.Duration)
	return runErr
}

// newPipeline builds the per-document pipeline from the resolved config.
func newPipeline(cfg *config.Config) (*dataset.Pipeline, error) {
	p, err := dataset.NewBuilder().
		WithConfig(cfg.ToDatasetConfig()).
		WithCredentials(cfg.Credentials()).
		WithLogger(slog.Default()).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	return p, nil
}

// startMetricsServer serves metrics and run events while the run is active
// and returns a function that shuts the server down.
func startMetricsServer(ctx context.Context, cfg *config.Config, addr string, bc *batch.Config) func() {
	sc := cfg.ToServerConfig()
	srv := server.NewServer(sc)
	bc.Progress = srv
	bc.OnResult = srv.Publish

	srvCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.ListenAndServe(srvCtx, addr, sc.ShutdownTimeout); err != nil {
			slog.Error("Metrics server error", "addr", addr, "error", err)
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

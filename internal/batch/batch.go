// Package batch discovers documents and runs the dataset pipeline over them
// with a bounded worker pool.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrNoDocuments is returned when discovery finds nothing to process.
var ErrNoDocuments = errors.New("no documents found")

// ProcessBatch discovers the documents named by args and processes them. A
// cancelled context stops the run early; the partial result is returned
// together with the context error.
func ProcessBatch(ctx context.Context, args []string, config *Config, proc Processor) (*Result, error) {
	files, err := config.Discovery().Find(args)
	if err != nil {
		return nil, fmt.Errorf("failed to discover documents: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoDocuments
	}

	workers := config.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var progress ProgressCallback
	if config.ShowProgress && !config.Quiet {
		w := config.ProgressWriter
		if w == nil {
			w = os.Stderr
		}
		progress = NewConsoleProgressCallback(w, "Processing: ").WithUpdateInterval(config.ProgressInterval)
	}
	if config.Progress != nil {
		progress = combineProgress(progress, config.Progress)
	}

	startTime := time.Now()
	results, err := Run(ctx, files, proc, PoolConfig{
		Workers:  workers,
		Progress: progress,
		OnResult: config.OnResult,
	})
	duration := time.Since(startTime)

	res := &Result{
		Results:     results,
		Paths:       files,
		Duration:    duration,
		WorkerCount: workers,
	}
	if err != nil {
		return res, fmt.Errorf("run interrupted: %w", err)
	}
	return res, nil
}

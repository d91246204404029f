package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/MeKo-Tech/linecrop/internal/dataset"
)

// DefaultWorkers is the worker pool size when none is configured.
const DefaultWorkers = 10

// Processor runs the per-document pipeline. Implementations must be safe for
// concurrent use.
type Processor interface {
	ProcessDocument(path string) *dataset.DocumentResult
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(path string) *dataset.DocumentResult

// ProcessDocument implements Processor.
func (f ProcessorFunc) ProcessDocument(path string) *dataset.DocumentResult { return f(path) }

// PoolConfig holds configuration for the document worker pool.
type PoolConfig struct {
	Workers  int                           // Number of parallel workers (0 = DefaultWorkers)
	Progress ProgressCallback              // Optional progress reporting
	OnResult func(*dataset.DocumentResult) // Optional hook, called in completion order from one goroutine
}

// docJob is a single document to process.
type docJob struct {
	index int
	path  string
}

// docResult is the outcome of one job.
type docResult struct {
	index  int
	result *dataset.DocumentResult
}

// Run processes documents with a bounded pool, one document per task. Results
// are returned in input order. When ctx is cancelled no further documents are
// dispatched, documents already running finish, and only their results are
// returned together with the context error.
func Run(ctx context.Context, paths []string, proc Processor, cfg PoolConfig) ([]*dataset.DocumentResult, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	workers = min(workers, len(paths))

	if cfg.Progress != nil {
		cfg.Progress.OnStart(len(paths))
		defer cfg.Progress.OnComplete()
	}

	jobs := make(chan docJob)
	results := make(chan docResult, len(paths))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go worker(jobs, results, &wg, proc)
	}

	// Send jobs
	go func() {
		defer close(jobs)
		for i, path := range paths {
			if ctx.Err() != nil {
				return
			}
			select {
			case jobs <- docJob{index: i, path: path}:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Collect results
	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]*dataset.DocumentResult, len(paths))
	processed := 0
	for r := range results {
		ordered[r.index] = r.result
		processed++

		if cfg.OnResult != nil {
			cfg.OnResult(r.result)
		}
		if cfg.Progress != nil {
			if r.result.Err != nil {
				cfg.Progress.OnError(processed, r.result.Err)
			}
			cfg.Progress.OnProgress(processed, len(paths))
		}
	}

	out := ordered[:0]
	for _, r := range ordered {
		if r != nil {
			out = append(out, r)
		}
	}
	if processed < len(paths) {
		return out, ctx.Err()
	}
	return out, nil
}

// worker processes documents from the jobs channel.
func worker(jobs <-chan docJob, results chan<- docResult, wg *sync.WaitGroup, proc Processor) {
	defer wg.Done()
	for job := range jobs {
		results <- docResult{index: job.index, result: processOne(proc, job.path)}
	}
}

// processOne isolates a panicking document so the rest of the run continues.
func processOne(proc Processor, path string) (res *dataset.DocumentResult) {
	defer func() {
		if rec := recover(); rec != nil {
			res = &dataset.DocumentResult{
				Path: path,
				Stem: dataset.Stem(path),
				Err:  fmt.Errorf("panic while processing %s: %v", path, rec),
			}
		}
	}()
	res = proc.ProcessDocument(path)
	if res == nil {
		res = &dataset.DocumentResult{Path: path, Stem: dataset.Stem(path)}
	}
	return res
}

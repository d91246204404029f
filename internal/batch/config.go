package batch

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MeKo-Tech/linecrop/internal/dataset"
)

// Config holds all configuration for a batch run.
type Config struct {
	// Worker pool
	Workers int

	// File discovery settings
	MaxDocuments    int
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Summary output
	Format     string
	OutputFile string

	// Progress settings
	ShowProgress     bool
	Quiet            bool
	ShowStats        bool
	ProgressInterval time.Duration
	ProgressWriter   io.Writer

	// Progress receives run progress in addition to the console bar.
	Progress ProgressCallback

	// OnResult is called once per finished document.
	OnResult func(*dataset.DocumentResult)
}

// DefaultConfig returns the run settings of the original dataset build.
func DefaultConfig() *Config {
	return &Config{
		Workers:          DefaultWorkers,
		MaxDocuments:     DefaultMaxDocuments,
		IncludePatterns:  append([]string(nil), DefaultIncludePatterns...),
		Format:           "text",
		ShowProgress:     true,
		ProgressInterval: 100 * time.Millisecond,
	}
}

// Result holds the result of a batch run.
type Result struct {
	Results     []*dataset.DocumentResult
	Paths       []string
	Duration    time.Duration
	WorkerCount int
}

// Stats computes the run statistics.
func (r *Result) Stats() Stats {
	return CalculateStats(len(r.Paths), r.Results, r.Duration, r.WorkerCount)
}

// FormatResults formats the run summary in the specified format.
func (r *Result) FormatResults(format string) (string, error) {
	return formatBatchResults(r.Results, format)
}

// SaveResults saves the formatted summary to a file or stdout.
func (r *Result) SaveResults(format, outputFile string, quiet bool) error {
	return r.WriteResults(os.Stdout, format, outputFile, quiet)
}

// WriteResults writes the formatted summary to outputFile, or to w when no
// file is given.
func (r *Result) WriteResults(w io.Writer, format, outputFile string, quiet bool) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !quiet {
			_, _ = fmt.Fprintf(w, "Results written to %s\n", outputFile)
		}
	} else {
		_, _ = fmt.Fprint(w, output)
	}

	return nil
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(w io.Writer, quiet bool) {
	if quiet {
		return
	}
	stats := r.Stats()
	_, _ = fmt.Fprintf(w, "\nProcessing Statistics:\n")
	_, _ = fmt.Fprintf(w, "  Total documents: %d\n", stats.TotalDocuments)
	_, _ = fmt.Fprintf(w, "  Processed: %d\n", stats.ProcessedDocuments)
	_, _ = fmt.Fprintf(w, "  Failed: %d\n", stats.FailedDocuments)
	_, _ = fmt.Fprintf(w, "  Pages: %d\n", stats.Pages)
	_, _ = fmt.Fprintf(w, "  Lines written: %d\n", stats.Lines)
	_, _ = fmt.Fprintf(w, "  Lines skipped: %d\n", stats.SkippedLines)
	_, _ = fmt.Fprintf(w, "  Workers: %d\n", stats.WorkerCount)
	_, _ = fmt.Fprintf(w, "  Duration: %v\n", stats.TotalDuration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "  Avg per document: %v\n", stats.AveragePerDocument.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "  Throughput: %.1f documents/sec\n", stats.ThroughputPerSec)
}

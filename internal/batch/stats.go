package batch

import (
	"time"

	"github.com/MeKo-Tech/linecrop/internal/dataset"
)

// Stats aggregates a run's document results.
type Stats struct {
	TotalDocuments     int           `json:"total_documents"`
	ProcessedDocuments int           `json:"processed_documents"`
	FailedDocuments    int           `json:"failed_documents"`
	Pages              int           `json:"pages"`
	Lines              int           `json:"lines"`
	SkippedLines       int           `json:"skipped_lines"`
	WorkerCount        int           `json:"worker_count"`
	TotalDuration      time.Duration `json:"total_duration"`
	AveragePerDocument time.Duration `json:"average_per_document"`
	ThroughputPerSec   float64       `json:"throughput_per_sec"`
}

// CalculateStats computes run statistics. total counts every discovered
// document, including those never dispatched.
func CalculateStats(total int, results []*dataset.DocumentResult, duration time.Duration, workerCount int) Stats {
	s := Stats{
		TotalDocuments: total,
		WorkerCount:    workerCount,
		TotalDuration:  duration,
	}
	for _, r := range results {
		if r == nil {
			continue
		}
		if r.Err != nil {
			s.FailedDocuments++
		} else {
			s.ProcessedDocuments++
		}
		s.Pages += r.Pages
		s.Lines += r.Lines
		s.SkippedLines += r.Skipped
	}

	done := s.ProcessedDocuments + s.FailedDocuments
	if done > 0 {
		s.AveragePerDocument = duration / time.Duration(done)
	}
	if duration > 0 {
		s.ThroughputPerSec = float64(done) / duration.Seconds()
	}
	return s
}

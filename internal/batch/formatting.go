package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MeKo-Tech/linecrop/internal/dataset"
)

// documentSummary is the serialized form of one document result.
type documentSummary struct {
	File       string   `json:"file"`
	Pages      int      `json:"pages"`
	Lines      int      `json:"lines"`
	Skipped    int      `json:"skipped"`
	BlankPages int      `json:"blank_pages,omitempty"`
	DurationMs int64    `json:"duration_ms"`
	Error      string   `json:"error,omitempty"`
	Outputs    []string `json:"outputs,omitempty"`
}

func summarize(r *dataset.DocumentResult) documentSummary {
	return documentSummary{
		File:       r.Path,
		Pages:      r.Pages,
		Lines:      r.Lines,
		Skipped:    r.Skipped,
		BlankPages: r.BlankPages,
		DurationMs: r.Duration.Milliseconds(),
		Error:      r.Error(),
		Outputs:    r.Files,
	}
}

// formatBatchResults formats the run summary in the specified format.
func formatBatchResults(results []*dataset.DocumentResult, format string) (string, error) {
	switch format {
	case "json":
		return formatJSON(results)
	case "csv":
		return formatCSV(results)
	case "text", "":
		return formatText(results), nil
	default:
		return "", fmt.Errorf("unsupported summary format %q", format)
	}
}

// formatJSON formats results as JSON.
func formatJSON(results []*dataset.DocumentResult) (string, error) {
	batchResult := struct {
		Documents []documentSummary `json:"documents"`
	}{Documents: make([]documentSummary, 0, len(results))}

	for _, r := range results {
		if r != nil {
			batchResult.Documents = append(batchResult.Documents, summarize(r))
		}
	}

	bts, err := json.MarshalIndent(batchResult, "", "  ")
	return string(bts), err
}

// formatCSV formats results as CSV, one row per document.
func formatCSV(results []*dataset.DocumentResult) (string, error) {
	var output strings.Builder
	writer := csv.NewWriter(&output)
	if err := writer.Write([]string{"file", "pages", "lines", "skipped", "duration_ms", "error"}); err != nil {
		return "", err
	}
	for _, r := range results {
		if r == nil {
			continue
		}
		s := summarize(r)
		row := []string{
			s.File,
			strconv.Itoa(s.Pages),
			strconv.Itoa(s.Lines),
			strconv.Itoa(s.Skipped),
			strconv.FormatInt(s.DurationMs, 10),
			s.Error,
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return output.String(), writer.Error()
}

// formatText formats results as plain text.
func formatText(results []*dataset.DocumentResult) string {
	var output strings.Builder
	for _, r := range results {
		if r == nil {
			continue
		}
		if r.Err != nil {
			fmt.Fprintf(&output, "FAIL %s: %v\n", r.Path, r.Err)
			continue
		}
		fmt.Fprintf(&output, "ok   %s pages=%d lines=%d skipped=%d", r.Path, r.Pages, r.Lines, r.Skipped)
		if r.BlankPages > 0 {
			fmt.Fprintf(&output, " blank=%d", r.BlankPages)
		}
		fmt.Fprintf(&output, " (%v)\n", r.Duration.Round(time.Millisecond))
	}
	return output.String()
}

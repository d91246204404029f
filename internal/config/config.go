package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/MeKo-Tech/linecrop/internal/batch"
	"github.com/MeKo-Tech/linecrop/internal/dataset"
	"github.com/MeKo-Tech/linecrop/internal/geometry"
	"github.com/MeKo-Tech/linecrop/internal/pdf"
	"github.com/MeKo-Tech/linecrop/internal/server"
)

const infoLevel = "info"

// DefaultConfig returns a configuration matching the original dataset build:
// 150 DPI, tolerance 20, ten workers, at most 300 documents.
func DefaultConfig() Config {
	padding := geometry.DefaultPadding()
	return Config{
		LogLevel: infoLevel,
		Verbose:  false,
		Input: InputConfig{
			SourceDir:    "data/PDF",
			MaxDocuments: batch.DefaultMaxDocuments,
			Include:      append([]string(nil), batch.DefaultIncludePatterns...),
			Exclude:      []string{},
			Recursive:    false,
		},
		Output: OutputConfig{
			ImagesDir:     "data/images",
			LabelsDir:     "data/labels",
			SummaryFormat: "text",
		},
		Raster: RasterConfig{
			DPI:     pdf.DefaultDPI,
			Backend: pdf.BackendAuto,
		},
		Geometry: GeometryConfig{
			Tolerance:   geometry.DefaultTolerance,
			PadLeft:     padding.Left,
			PadRight:    padding.Right,
			PadVertical: padding.Vertical,
		},
		Dataset: DatasetConfig{
			LabelMode: string(dataset.LabelRescan),
		},
		Batch: BatchConfig{
			Workers:  batch.DefaultWorkers,
			Progress: true,
			Stats:    false,
		},
		Metrics: MetricsConfig{
			CORSOrigin:      "*",
			ShutdownTimeout: 5,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", infoLevel, "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json", "csv"}
	if c.Output.SummaryFormat != "" && !contains(validFormats, c.Output.SummaryFormat) {
		return fmt.Errorf("invalid summary format: %s (must be one of: %s)", c.Output.SummaryFormat, strings.Join(validFormats, ", "))
	}
	if c.Output.ImagesDir == "" || c.Output.LabelsDir == "" {
		return fmt.Errorf("output.images_dir and output.labels_dir are required")
	}

	validBackends := []string{pdf.BackendAuto, pdf.BackendPoppler, pdf.BackendEmbedded}
	if !contains(validBackends, c.Raster.Backend) {
		return fmt.Errorf("invalid raster backend: %s (must be one of: %s)", c.Raster.Backend, strings.Join(validBackends, ", "))
	}

	if !dataset.LabelMode(c.Dataset.LabelMode).Valid() {
		return fmt.Errorf("invalid label mode: %s (must be one of: %s, %s)", c.Dataset.LabelMode, dataset.LabelRescan, dataset.LabelMembers)
	}

	// Validate positive integers
	if err := validatePositive(c.Raster.DPI, "raster.dpi"); err != nil {
		return err
	}
	if err := validatePositive(c.Geometry.Tolerance, "geometry.tolerance"); err != nil {
		return err
	}
	if err := validatePositive(c.Batch.Workers, "batch.workers"); err != nil {
		return err
	}
	if c.Input.MaxDocuments < 0 {
		return fmt.Errorf("invalid input.max_documents: %d (must not be negative)", c.Input.MaxDocuments)
	}
	for name, v := range map[string]int{
		"geometry.pad_left":     c.Geometry.PadLeft,
		"geometry.pad_right":    c.Geometry.PadRight,
		"geometry.pad_vertical": c.Geometry.PadVertical,
	} {
		if v < 0 {
			return fmt.Errorf("invalid %s: %d (must not be negative)", name, v)
		}
	}

	if c.Metrics.Addr != "" {
		if err := validateAddr(c.Metrics.Addr); err != nil {
			return fmt.Errorf("invalid metrics address: %w", err)
		}
	}

	return nil
}

// ToDatasetConfig converts the config to the per-document pipeline settings.
func (c *Config) ToDatasetConfig() dataset.Config {
	return dataset.Config{
		ImagesDir:   c.Output.ImagesDir,
		LabelsDir:   c.Output.LabelsDir,
		DPI:         c.Raster.DPI,
		Backend:     c.Raster.Backend,
		PopplerPath: c.Raster.PopplerPath,
		Tolerance:   c.Geometry.Tolerance,
		Padding: geometry.Padding{
			Left:     c.Geometry.PadLeft,
			Right:    c.Geometry.PadRight,
			Vertical: c.Geometry.PadVertical,
		},
		LabelMode: dataset.LabelMode(c.Dataset.LabelMode),
		Normalize: c.Dataset.Normalize,
	}
}

// ToBatchConfig converts the config to the run settings.
func (c *Config) ToBatchConfig() *batch.Config {
	bc := batch.DefaultConfig()
	bc.Workers = c.Batch.Workers
	bc.MaxDocuments = c.Input.MaxDocuments
	bc.Recursive = c.Input.Recursive
	if len(c.Input.Include) > 0 {
		bc.IncludePatterns = append([]string(nil), c.Input.Include...)
	}
	bc.ExcludePatterns = append([]string(nil), c.Input.Exclude...)
	bc.Format = c.Output.SummaryFormat
	bc.OutputFile = c.Output.SummaryFile
	bc.ShowProgress = c.Batch.Progress
	bc.ShowStats = c.Batch.Stats
	return bc
}

// ToServerConfig converts the config to the metrics server settings.
func (c *Config) ToServerConfig() server.Config {
	return server.Config{
		Addr:            c.Metrics.Addr,
		CORSOrigin:      c.Metrics.CORSOrigin,
		ShutdownTimeout: time.Duration(c.Metrics.ShutdownTimeout) * time.Second,
	}
}

// Credentials returns the configured passwords, or nil when none are set.
func (c *Config) Credentials() *pdf.PasswordCredentials {
	creds := &pdf.PasswordCredentials{
		UserPassword:  c.PDF.UserPassword,
		OwnerPassword: c.PDF.OwnerPassword,
	}
	if creds.Empty() {
		return nil
	}
	return creds
}

// Helper functions

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func validatePositive(value int, name string) error {
	if value <= 0 {
		return fmt.Errorf("invalid %s: %d (must be positive)", name, value)
	}
	return nil
}

// validateAddr checks a host:port listen address.
func validateAddr(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("invalid port %q", port)
	}
	if p < 0 || p > 65535 {
		return fmt.Errorf("port %d out of range (0-65535)", p)
	}
	return nil
}

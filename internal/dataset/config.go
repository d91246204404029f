// Package dataset turns documents into line-level training samples: one
// cropped page image and one text label per detected line.
package dataset

import (
	"errors"
	"fmt"

	"github.com/MeKo-Tech/linecrop/internal/geometry"
	"github.com/MeKo-Tech/linecrop/internal/pdf"
)

// LabelMode selects how a line's label text is derived.
type LabelMode string

const (
	// LabelRescan re-scans every glyph on the page and keeps those aligned
	// with the line key whose top edge falls inside the crop. The label may
	// therefore differ from the glyphs that produced the crop.
	LabelRescan LabelMode = "rescan"
	// LabelMembers concatenates the line's own glyphs top to bottom.
	LabelMembers LabelMode = "members"
)

// Valid reports whether m is a known label mode.
func (m LabelMode) Valid() bool {
	return m == LabelRescan || m == LabelMembers
}

// Config holds the per-document pipeline settings.
type Config struct {
	ImagesDir string
	LabelsDir string

	DPI         int
	Backend     string
	PopplerPath string

	Tolerance int
	Padding   geometry.Padding

	LabelMode LabelMode
	Normalize bool
}

// DefaultConfig returns the settings the dataset was originally produced with.
func DefaultConfig() Config {
	return Config{
		ImagesDir: "data/images",
		LabelsDir: "data/labels",
		DPI:       pdf.DefaultDPI,
		Backend:   pdf.BackendAuto,
		Tolerance: geometry.DefaultTolerance,
		Padding:   geometry.DefaultPadding(),
		LabelMode: LabelRescan,
	}
}

// Validate checks the configuration for values the pipeline cannot use.
func (c Config) Validate() error {
	if c.ImagesDir == "" {
		return errors.New("images directory is required")
	}
	if c.LabelsDir == "" {
		return errors.New("labels directory is required")
	}
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %d", c.Tolerance)
	}
	if c.Padding.Left < 0 || c.Padding.Right < 0 || c.Padding.Vertical < 0 {
		return fmt.Errorf("padding must not be negative: %+v", c.Padding)
	}
	if !c.LabelMode.Valid() {
		return fmt.Errorf("unknown label mode %q", c.LabelMode)
	}
	return nil
}

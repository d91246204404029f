package dataset

import (
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/MeKo-Tech/linecrop/internal/geometry"
	"github.com/MeKo-Tech/linecrop/internal/pdf"
)

// DocumentResult summarizes the processing of one document. BlankPages counts
// pages whose raster had no image to draw, so their crops are white.
type DocumentResult struct {
	Path       string        `json:"path"`
	Stem       string        `json:"stem"`
	Pages      int           `json:"pages"`
	Lines      int           `json:"lines"`
	Skipped    int           `json:"skipped"`
	BlankPages int           `json:"blank_pages,omitempty"`
	Files      []string      `json:"files,omitempty"`
	Duration   time.Duration `json:"duration"`
	Err        error         `json:"-"`
}

// Error returns the failure message, or an empty string on success.
func (r *DocumentResult) Error() string {
	if r == nil || r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Pipeline runs rasterization, geometry extraction, line clustering, and
// emission for one document at a time. A Pipeline holds no per-document
// state and may be shared by concurrent workers.
type Pipeline struct {
	cfg        Config
	rasterizer pdf.Rasterizer
	geometry   pdf.GeometrySource
	passwords  *pdf.PasswordHandler
	emitter    *Emitter
	logger     *slog.Logger
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg        Config
	rasterizer pdf.Rasterizer
	geometry   pdf.GeometrySource
	creds      *pdf.PasswordCredentials
	logger     *slog.Logger
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithOutputDirs sets the image and label directories.
func (b *Builder) WithOutputDirs(imagesDir, labelsDir string) *Builder {
	if imagesDir != "" {
		b.cfg.ImagesDir = imagesDir
	}
	if labelsDir != "" {
		b.cfg.LabelsDir = labelsDir
	}
	return b
}

// WithDPI sets the raster resolution.
func (b *Builder) WithDPI(dpi int) *Builder {
	if dpi > 0 {
		b.cfg.DPI = dpi
	}
	return b
}

// WithTolerance sets the line clustering tolerance in pixels.
func (b *Builder) WithTolerance(tolerance int) *Builder {
	if tolerance > 0 {
		b.cfg.Tolerance = tolerance
	}
	return b
}

// WithLabelMode sets how line labels are derived.
func (b *Builder) WithLabelMode(mode LabelMode) *Builder {
	b.cfg.LabelMode = mode
	return b
}

// WithRasterizer overrides the rasterizer chosen from the backend setting.
func (b *Builder) WithRasterizer(r pdf.Rasterizer) *Builder {
	b.rasterizer = r
	return b
}

// WithGeometrySource overrides the glyph geometry extractor.
func (b *Builder) WithGeometrySource(g pdf.GeometrySource) *Builder {
	b.geometry = g
	return b
}

// WithCredentials sets the passwords tried on encrypted documents.
func (b *Builder) WithCredentials(creds *pdf.PasswordCredentials) *Builder {
	b.creds = creds
	return b
}

// WithLogger sets the logger used for per-document failures.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration and assembles the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset config: %w", err)
	}

	rasterizer := b.rasterizer
	if rasterizer == nil {
		r, err := pdf.NewRasterizer(b.cfg.Backend, b.cfg.PopplerPath)
		if err != nil {
			return nil, err
		}
		rasterizer = r
	}
	source := b.geometry
	if source == nil {
		source = pdf.NewGeometryExtractor()
	}
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		cfg:        b.cfg,
		rasterizer: rasterizer,
		geometry:   source,
		passwords:  pdf.NewPasswordHandler(b.creds),
		emitter:    NewEmitter(b.cfg),
		logger:     logger,
	}, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// ProcessDocument runs the whole pipeline for one document. Failures are
// logged with the document path and reported in the result; files written
// before the failure are kept.
func (p *Pipeline) ProcessDocument(path string) *DocumentResult {
	start := time.Now()
	res := &DocumentResult{Path: path, Stem: Stem(path)}

	res.Err = p.process(path, res)
	res.Duration = time.Since(start)

	if res.Err != nil {
		p.logger.Error("document failed", "document", path, "error", res.Err)
	} else {
		p.logger.Debug("document processed",
			"document", path,
			"pages", res.Pages,
			"lines", res.Lines,
			"skipped", res.Skipped,
			"blank_pages", res.BlankPages,
			"duration", res.Duration)
	}
	return res
}

func (p *Pipeline) process(path string, res *DocumentResult) error {
	readable, cleanup, err := p.passwords.Prepare(path)
	if err != nil {
		return &pdf.DocumentError{Path: path, Op: "open", Err: err}
	}
	defer cleanup()

	rasters, err := p.rasterizer.Rasterize(readable, p.cfg.DPI)
	if err != nil {
		return err
	}

	if len(rasters) == 0 {
		return nil
	}

	// Pages past the last raster are never pulled from the extractor.
	index := 0
	for page, err := range p.geometry.Pages(readable) {
		if err != nil {
			return err
		}
		if err := p.processPage(res, page, index, rasters[index]); err != nil {
			return err
		}
		index++
		res.Pages = index
		if index == len(rasters) {
			break
		}
	}
	return nil
}

func (p *Pipeline) processPage(res *DocumentResult, page pdf.LayoutPage, index int, raster image.Image) error {
	if pdf.IsBlankPage(raster) {
		res.BlankPages++
		p.logger.Warn("page has no embedded image", "document", res.Path, "page", index)
	}

	bounds := raster.Bounds()
	mapper, err := geometry.NewMapper(geometry.PageFrame{
		PageWidth:   page.Width,
		PageHeight:  page.Height,
		ImageWidth:  bounds.Dx(),
		ImageHeight: bounds.Dy(),
	}, p.cfg.Padding)
	if err != nil {
		return fmt.Errorf("page %d: %w", index, err)
	}

	glyphs := page.Glyphs()
	boxes := make([]geometry.CharBox, 0, len(glyphs))
	for _, g := range glyphs {
		boxes = append(boxes, mapper.MapChar(g.Box, g.Text))
	}

	clusters := geometry.ClusterLines(boxes, p.cfg.Tolerance)
	records, skipped := BuildRecords(index, raster, boxes, clusters, p.cfg.Tolerance, p.cfg.LabelMode)
	res.Skipped += skipped
	if len(records) == 0 {
		return nil
	}

	if err := p.emitter.Prepare(); err != nil {
		return err
	}
	for _, rec := range records {
		name, err := p.emitter.Write(res.Stem, rec)
		if err != nil {
			return fmt.Errorf("page %d: %w", index, err)
		}
		res.Files = append(res.Files, name)
		res.Lines++
	}
	return nil
}

// Stem returns the document name without directory and extension, used as
// the prefix of every output file.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

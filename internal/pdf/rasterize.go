package pdf

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// DefaultDPI is the raster resolution used when none is configured.
const DefaultDPI = 150

// pointsPerInch is the PDF user-space unit density.
const pointsPerInch = 72.0

// Rasterizer backends.
const (
	BackendAuto     = "auto"
	BackendPoppler  = "poppler"
	BackendEmbedded = "embedded"
)

// Rasterizer renders every page of a document into an in-memory image, in
// page order.
type Rasterizer interface {
	Rasterize(path string, dpi int) ([]image.Image, error)
}

// NewRasterizer returns the rasterizer for a backend name. The auto backend
// uses poppler when its binary can be found and the embedded-image
// rasterizer otherwise.
func NewRasterizer(backend, popplerPath string) (Rasterizer, error) {
	if popplerPath == "" {
		popplerPath = "pdftoppm"
	}
	switch backend {
	case BackendPoppler:
		return &PopplerRasterizer{Binary: popplerPath}, nil
	case BackendEmbedded:
		return NewEmbeddedRasterizer(), nil
	case BackendAuto, "":
		if bin, err := exec.LookPath(popplerPath); err == nil {
			return &PopplerRasterizer{Binary: bin}, nil
		}
		slog.Warn("poppler not found, rasterizing from embedded images", "binary", popplerPath)
		return NewEmbeddedRasterizer(), nil
	default:
		return nil, fmt.Errorf("unknown raster backend %q", backend)
	}
}

// PageSize is a page's size in PDF points.
type PageSize struct {
	Width  float64
	Height float64
}

// PixelSize returns the raster size of the page at the given resolution.
func (s PageSize) PixelSize(dpi int) (int, int) {
	scale := float64(dpi) / pointsPerInch
	return int(math.Round(s.Width * scale)), int(math.Round(s.Height * scale))
}

// BlankPage is the raster of a page that has no embedded image to draw. Its
// pixels are all white, so crops taken from it carry no glyph ink.
type BlankPage struct {
	*image.NRGBA
}

// IsBlankPage reports whether a raster is a BlankPage.
func IsBlankPage(img image.Image) bool {
	_, ok := img.(BlankPage)
	return ok
}

// EmbeddedRasterizer builds page rasters from the images embedded in each
// page, which is what a scanned document consists of. Every page gets a
// white canvas of the page size at the target resolution with its largest
// embedded image stretched over it; pages without images come back as a
// BlankPage.
type EmbeddedRasterizer struct {
	pageSizes func(path string) ([]PageSize, error)
	images    func(path string) (map[int][]image.Image, error)
}

// NewEmbeddedRasterizer creates a rasterizer backed by pdfcpu.
func NewEmbeddedRasterizer() *EmbeddedRasterizer {
	return &EmbeddedRasterizer{
		pageSizes: pdfcpuPageSizes,
		images:    PageImages,
	}
}

// Rasterize implements Rasterizer.
func (r *EmbeddedRasterizer) Rasterize(path string, dpi int) ([]image.Image, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	sizes, err := r.pageSizes(path)
	if err != nil {
		return nil, newDocumentError(path, "rasterize", err)
	}
	byPage, err := r.images(path)
	if err != nil {
		return nil, newDocumentError(path, "rasterize", err)
	}

	out := make([]image.Image, 0, len(sizes))
	for i, size := range sizes {
		out = append(out, composePage(size, byPage[i+1], dpi))
	}
	return out, nil
}

func pdfcpuPageSizes(path string) ([]PageSize, error) {
	dims, err := api.PageDimsFile(path)
	if err != nil {
		return nil, err
	}
	sizes := make([]PageSize, len(dims))
	for i, d := range dims {
		sizes[i] = PageSize{Width: d.Width, Height: d.Height}
	}
	return sizes, nil
}

// composePage renders one page canvas from its embedded images.
func composePage(size PageSize, images []image.Image, dpi int) image.Image {
	w, h := size.PixelSize(dpi)
	w, h = max(w, 1), max(h, 1)
	canvas := imaging.New(w, h, color.White)

	var largest image.Image
	largestArea := 0
	for _, img := range images {
		b := img.Bounds()
		if area := b.Dx() * b.Dy(); area > largestArea {
			largest, largestArea = img, area
		}
	}
	if largest == nil {
		return BlankPage{canvas}
	}
	scaled := imaging.Resize(largest, w, h, imaging.Lanczos)
	return imaging.Paste(canvas, scaled, image.Pt(0, 0))
}

// PopplerRasterizer renders pages with poppler's pdftoppm.
type PopplerRasterizer struct {
	Binary string
}

// Rasterize implements Rasterizer.
func (r *PopplerRasterizer) Rasterize(path string, dpi int) ([]image.Image, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	tempDir, err := os.MkdirTemp("", "linecrop-raster-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	prefix := filepath.Join(tempDir, "page")
	//nolint:gosec // G204: binary is configured by the operator
	cmd := exec.Command(r.Binary, "-r", strconv.Itoa(dpi), "-png", path, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		msg := strings.TrimSpace(string(out))
		return nil, newDocumentError(path, "rasterize", fmt.Errorf("%s: %w: %s", r.Binary, err, msg))
	}

	images, err := loadRenderedPages(tempDir)
	if err != nil {
		return nil, newDocumentError(path, "rasterize", err)
	}
	return images, nil
}

// loadRenderedPages loads page-<n>.png files in page order. pdftoppm pads the
// page number to the width of the page count, so order is numeric.
func loadRenderedPages(dir string) ([]image.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type rendered struct {
		page int
		path string
	}
	var pages []rendered
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "page-") || filepath.Ext(name) != ".png" {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "page-"), ".png"))
		if err != nil {
			continue
		}
		pages = append(pages, rendered{page: num, path: filepath.Join(dir, name)})
	}
	if len(pages) == 0 {
		return nil, errors.New("no pages rendered")
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].page < pages[j].page })

	out := make([]image.Image, 0, len(pages))
	for _, p := range pages {
		img, err := loadImageFile(p.path)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(p.path), err)
		}
		out = append(out, img)
	}
	return out, nil
}

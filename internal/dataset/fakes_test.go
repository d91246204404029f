package dataset

import (
	"image"
	"image/color"
	"io"
	"iter"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/linecrop/internal/geometry"
	"github.com/MeKo-Tech/linecrop/internal/pdf"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

type fakeRasterizer struct {
	pages []image.Image
	err   error
	calls int
}

func (f *fakeRasterizer) Rasterize(string, int) ([]image.Image, error) {
	f.calls++
	return f.pages, f.err
}

type fakeSource struct {
	pages  []pdf.LayoutPage
	failAt int
	err    error
}

func (f *fakeSource) Pages(string) iter.Seq2[pdf.LayoutPage, error] {
	return func(yield func(pdf.LayoutPage, error) bool) {
		for i, p := range f.pages {
			if f.err != nil && i == f.failAt {
				yield(pdf.LayoutPage{}, f.err)
				return
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

func blankRaster(w, h int) image.Image {
	return imaging.New(w, h, color.White)
}

func blankRasters(n, w, h int) []image.Image {
	out := make([]image.Image, n)
	for i := range out {
		out[i] = blankRaster(w, h)
	}
	return out
}

// glyph is an 8x10 document-space character with its lower-left corner at x, y.
func glyph(x, y float64, text string) *pdf.Element {
	return &pdf.Element{
		Kind: pdf.KindChar,
		Box:  geometry.DocBox{X0: x, Y0: y, X1: x + 8, Y1: y + 10},
		Text: text,
		Size: 10,
	}
}

func layoutPage(index int, w, h float64, glyphs ...*pdf.Element) pdf.LayoutPage {
	line := &pdf.Element{Kind: pdf.KindTextLine, Children: glyphs}
	return pdf.LayoutPage{
		Index:  index,
		Width:  w,
		Height: h,
		Root:   &pdf.Element{Kind: pdf.KindPage, Children: []*pdf.Element{line}},
	}
}

func pixelChar(x0, y0, x1, y1 int, text string) geometry.CharBox {
	return geometry.CharBox{PixelBox: geometry.PixelBox{X0: x0, Y0: y0, X1: x1, Y1: y1}, Text: text}
}

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.ImagesDir = filepath.Join(dir, "images")
	cfg.LabelsDir = filepath.Join(dir, "labels")
	return cfg
}

func newTestPipeline(t *testing.T, cfg Config, r pdf.Rasterizer, s pdf.GeometrySource) *Pipeline {
	t.Helper()
	p, err := NewBuilder().
		WithConfig(cfg).
		WithRasterizer(r).
		WithGeometrySource(s).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		Build()
	require.NoError(t, err)
	return p
}

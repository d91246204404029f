package pdf

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"os"

	"github.com/MeKo-Tech/linecrop/internal/geometry"
	"github.com/dslipak/pdf"
)

// defaultDescent is the fraction of the font size that a glyph box extends
// below its baseline.
const defaultDescent = 0.2

// maxParentDepth bounds the walk up the page tree when resolving inherited
// attributes.
const maxParentDepth = 32

// GeometrySource yields the layout tree of every page of a document.
type GeometrySource interface {
	Pages(path string) iter.Seq2[LayoutPage, error]
}

// GeometryExtractor reads glyph positions from a PDF's content streams.
type GeometryExtractor struct {
	descent float64
}

// NewGeometryExtractor creates an extractor with the default glyph descent.
func NewGeometryExtractor() *GeometryExtractor {
	return &GeometryExtractor{descent: defaultDescent}
}

// Pages lazily parses the document one page at a time. A failing page is
// yielded with a *DocumentError and ends the sequence.
func (e *GeometryExtractor) Pages(path string) iter.Seq2[LayoutPage, error] {
	return func(yield func(LayoutPage, error) bool) {
		f, err := os.Open(path) //nolint:gosec // G304: document paths come from the input directory
		if err != nil {
			yield(LayoutPage{}, newDocumentError(path, "open", err))
			return
		}
		defer func() { _ = f.Close() }()

		info, err := f.Stat()
		if err != nil {
			yield(LayoutPage{}, newDocumentError(path, "stat", err))
			return
		}

		r, err := openReader(f, info.Size())
		if err != nil {
			yield(LayoutPage{}, newDocumentError(path, "parse", err))
			return
		}

		total, err := numPages(r)
		if err != nil {
			yield(LayoutPage{}, newDocumentError(path, "parse", err))
			return
		}

		for i := range total {
			page, err := e.readPage(r, i)
			if err != nil {
				yield(LayoutPage{}, newDocumentError(path, "extract", err))
				return
			}
			if !yield(page, nil) {
				return
			}
		}
	}
}

func openReader(f *os.File, size int64) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed document: %v", rec)
		}
	}()
	r, err = pdf.NewReader(f, size)
	if errors.Is(err, pdf.ErrInvalidPassword) {
		return nil, fmt.Errorf("%w: %w", ErrEncrypted, err)
	}
	return r, err
}

func numPages(r *pdf.Reader) (n int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed page tree: %v", rec)
		}
	}()
	return r.NumPage(), nil
}

// readPage builds the layout tree of the zero-based page index. The content
// parser panics on malformed streams, so the panic is turned into an error.
func (e *GeometryExtractor) readPage(r *pdf.Reader, index int) (page LayoutPage, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("page %d: malformed content: %v", index, rec)
		}
	}()

	p := r.Page(index + 1)
	if p.V.IsNull() {
		return LayoutPage{}, fmt.Errorf("page %d not found", index)
	}

	llx, lly, urx, ury, err := mediaBox(p.V)
	if err != nil {
		return LayoutPage{}, fmt.Errorf("page %d: %w", index, err)
	}

	content := p.Content()

	chars := make([]*Element, 0, len(content.Text))
	for _, t := range content.Text {
		chars = append(chars, e.charElement(t, llx, lly))
	}
	shapes := make([]*Element, 0, len(content.Rect))
	for _, rc := range content.Rect {
		shapes = append(shapes, &Element{
			Kind: KindShape,
			Box: geometry.DocBox{
				X0: math.Min(rc.Min.X, rc.Max.X) - llx,
				Y0: math.Min(rc.Min.Y, rc.Max.Y) - lly,
				X1: math.Max(rc.Min.X, rc.Max.X) - llx,
				Y1: math.Max(rc.Min.Y, rc.Max.Y) - lly,
			},
		})
	}

	return LayoutPage{
		Index:  index,
		Width:  urx - llx,
		Height: ury - lly,
		Root:   buildLayout(chars, shapes),
	}, nil
}

// charElement converts a positioned text run into a glyph leaf. The box spans
// the advance width horizontally and one font size vertically, starting a
// descent below the baseline.
func (e *GeometryExtractor) charElement(t pdf.Text, llx, lly float64) *Element {
	size := math.Abs(t.FontSize)
	if size == 0 {
		size = 1
	}
	width := t.W
	if width <= 0 {
		width = size / 2
	}
	x0 := t.X - llx
	y0 := t.Y - lly - e.descent*size
	return &Element{
		Kind: KindChar,
		Box:  geometry.DocBox{X0: x0, Y0: y0, X1: x0 + width, Y1: y0 + size},
		Text: t.S,
		Font: t.Font,
		Size: size,
	}
}

// mediaBox resolves the page's MediaBox, which may be inherited from an
// ancestor in the page tree.
func mediaBox(v pdf.Value) (llx, lly, urx, ury float64, err error) {
	cur := v
	for range maxParentDepth {
		if cur.IsNull() {
			break
		}
		box := cur.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			x0, y0 := box.Index(0).Float64(), box.Index(1).Float64()
			x1, y1 := box.Index(2).Float64(), box.Index(3).Float64()
			llx, urx = math.Min(x0, x1), math.Max(x0, x1)
			lly, ury = math.Min(y0, y1), math.Max(y0, y1)
			if urx-llx <= 0 || ury-lly <= 0 {
				return 0, 0, 0, 0, fmt.Errorf("degenerate MediaBox [%g %g %g %g]", x0, y0, x1, y1)
			}
			return llx, lly, urx, ury, nil
		}
		cur = cur.Key("Parent")
	}
	return 0, 0, 0, 0, errors.New("no MediaBox")
}

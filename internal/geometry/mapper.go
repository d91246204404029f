package geometry

import (
	"errors"
	"fmt"
	"math"
)

// Padding is the slack added around a mapped glyph box so line crops keep
// ascenders and descenders.
type Padding struct {
	Left     int `json:"left"`
	Right    int `json:"right"`
	Vertical int `json:"vertical"`
}

// DefaultPadding returns the padding tuned for 150 DPI rasters.
func DefaultPadding() Padding {
	return Padding{Left: 5, Right: 2, Vertical: 4}
}

// PageFrame pairs a page's document dimensions with its raster dimensions.
type PageFrame struct {
	PageWidth   float64
	PageHeight  float64
	ImageWidth  int
	ImageHeight int
}

// Validate checks that every dimension is positive.
func (f PageFrame) Validate() error {
	if f.PageWidth <= 0 || f.PageHeight <= 0 {
		return fmt.Errorf("invalid page size %.2fx%.2f", f.PageWidth, f.PageHeight)
	}
	if f.ImageWidth <= 0 || f.ImageHeight <= 0 {
		return fmt.Errorf("invalid image size %dx%d", f.ImageWidth, f.ImageHeight)
	}
	return nil
}

// Mapper converts document-space boxes of one page into padded pixel boxes.
type Mapper struct {
	frame PageFrame
	pad   Padding
}

// NewMapper creates a mapper for the given page frame.
func NewMapper(frame PageFrame, pad Padding) (*Mapper, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	if pad.Left < 0 || pad.Right < 0 || pad.Vertical < 0 {
		return nil, errors.New("padding must not be negative")
	}
	return &Mapper{frame: frame, pad: pad}, nil
}

// Map flips the vertical axis, scales into pixels, pads, and clamps the result
// to the image. The mapped document top (Y1) becomes the pixel top bound.
func (m *Mapper) Map(b DocBox) PixelBox {
	f := m.frame
	iw, ih := f.ImageWidth, f.ImageHeight

	x0 := m.toPixel((b.X0/f.PageWidth)*float64(iw), iw)
	x1 := m.toPixel((b.X1/f.PageWidth)*float64(iw), iw)
	y0 := m.toPixel((1-b.Y0/f.PageHeight)*float64(ih), ih)
	y1 := m.toPixel((1-b.Y1/f.PageHeight)*float64(ih), ih)

	x0 = max(0, x0-m.pad.Left)
	x1 = min(x1+m.pad.Right, iw)
	top := max(0, y1) - m.pad.Vertical
	bottom := min(y0, ih) + m.pad.Vertical

	out := PixelBox{
		X0: clampInt(x0, 0, iw),
		Y0: clampInt(top, 0, ih),
		X1: clampInt(x1, 0, iw),
		Y1: clampInt(bottom, 0, ih),
	}
	if out.X1 < out.X0 {
		out.X1 = out.X0
	}
	if out.Y1 < out.Y0 {
		out.Y1 = out.Y0
	}
	return out
}

// toPixel truncates a scaled coordinate to an int. Values far outside the
// image saturate first so the conversion cannot overflow; padding still moves
// a saturated value past the edge it is clamped to. NaN maps to 0.
func (m *Mapper) toPixel(v float64, limit int) int {
	if math.IsNaN(v) {
		return 0
	}
	span := float64(limit + m.pad.Left + m.pad.Right + m.pad.Vertical + 1)
	return int(math.Max(-span, math.Min(v, span)))
}

// MapChar maps a glyph box and attaches its text.
func (m *Mapper) MapChar(b DocBox, text string) CharBox {
	return CharBox{PixelBox: m.Map(b), Text: text}
}

// Package geometry maps glyph boxes from document space into page pixels and
// groups them into line clusters.
package geometry

import "image"

// DocBox is an axis-aligned box in document space: units as declared by the
// page, origin at the bottom-left corner.
type DocBox struct {
	X0 float64
	Y0 float64
	X1 float64
	Y1 float64
}

// Width returns the box width in document units.
func (b DocBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the box height in document units.
func (b DocBox) Height() float64 { return b.Y1 - b.Y0 }

// Union returns the smallest box enclosing both b and o.
func (b DocBox) Union(o DocBox) DocBox {
	return DocBox{
		X0: min(b.X0, o.X0),
		Y0: min(b.Y0, o.Y0),
		X1: max(b.X1, o.X1),
		Y1: max(b.Y1, o.Y1),
	}
}

// PixelBox is a box in raster space: origin top-left, units are pixels.
type PixelBox struct {
	X0 int
	Y0 int
	X1 int
	Y1 int
}

// CenterX returns the integer horizontal center used for line membership tests.
func (b PixelBox) CenterX() int { return (b.X0 + b.X1) / 2 }

// Rect converts the box to an image.Rectangle.
func (b PixelBox) Rect() image.Rectangle { return image.Rect(b.X0, b.Y0, b.X1, b.Y1) }

// Empty reports whether the box has zero width or height.
func (b PixelBox) Empty() bool { return b.X1 <= b.X0 || b.Y1 <= b.Y0 }

// CharBox is one non-whitespace glyph in pixel space.
type CharBox struct {
	PixelBox
	Text string
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

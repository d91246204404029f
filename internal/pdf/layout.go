package pdf

import (
	"math"
	"strings"

	"github.com/MeKo-Tech/linecrop/internal/geometry"
)

// ElementKind tags the variant held by an Element.
type ElementKind int

const (
	// KindPage is the root container of one page.
	KindPage ElementKind = iota
	// KindTextBox groups vertically adjacent text lines.
	KindTextBox
	// KindTextLine groups glyphs sharing a baseline.
	KindTextLine
	// KindChar is a single rendered glyph, the only kind that carries text.
	KindChar
	// KindShape is a filled or stroked rectangle drawn on the page.
	KindShape
)

func (k ElementKind) String() string {
	switch k {
	case KindPage:
		return "page"
	case KindTextBox:
		return "textbox"
	case KindTextLine:
		return "textline"
	case KindChar:
		return "char"
	case KindShape:
		return "shape"
	default:
		return "unknown"
	}
}

// Element is one node of a page's layout tree. Text, Font and Size are set
// only on KindChar leaves; Children only on container kinds.
type Element struct {
	Kind     ElementKind
	Box      geometry.DocBox
	Text     string
	Font     string
	Size     float64
	Children []*Element
}

// IsContainer reports whether the element groups other elements.
func (e *Element) IsContainer() bool {
	return e.Kind == KindPage || e.Kind == KindTextBox || e.Kind == KindTextLine
}

// Glyph is a character leaf selected for emission.
type Glyph struct {
	Box  geometry.DocBox
	Text string
}

// LayoutPage is the layout tree of a single page with its document size.
type LayoutPage struct {
	Index  int
	Width  float64
	Height float64
	Root   *Element
}

// Walk visits e and its descendants depth-first in document order. It stops
// early and returns false once fn returns false.
func Walk(e *Element, fn func(*Element) bool) bool {
	if e == nil {
		return true
	}
	if !fn(e) {
		return false
	}
	for _, c := range e.Children {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}

// Glyphs returns the page's character leaves whose stripped text is not
// empty, in extraction order. Containers and shapes are traversed, never
// emitted.
func (p LayoutPage) Glyphs() []Glyph {
	var out []Glyph
	Walk(p.Root, func(e *Element) bool {
		if e.Kind == KindChar && strings.TrimSpace(e.Text) != "" {
			out = append(out, Glyph{Box: e.Box, Text: e.Text})
		}
		return true
	})
	return out
}

// buildLayout assembles glyph and shape leaves into a page tree: glyphs that
// share a baseline and advance left to right form text lines, and lines that
// overlap horizontally and follow each other closely form text boxes.
func buildLayout(chars []*Element, shapes []*Element) *Element {
	root := &Element{Kind: KindPage}
	lines := groupLines(chars)

	var box *Element
	var prev *Element
	for _, line := range lines {
		if box == nil || !continuesBox(prev, line) {
			box = &Element{Kind: KindTextBox, Box: line.Box}
			root.Children = append(root.Children, box)
		}
		box.Children = append(box.Children, line)
		box.Box = box.Box.Union(line.Box)
		prev = line
	}
	root.Children = append(root.Children, shapes...)

	for i, c := range root.Children {
		if i == 0 {
			root.Box = c.Box
			continue
		}
		root.Box = root.Box.Union(c.Box)
	}
	return root
}

func groupLines(chars []*Element) []*Element {
	var lines []*Element
	var cur *Element
	for _, ch := range chars {
		if cur == nil || !continuesLine(cur.Children[len(cur.Children)-1], ch) {
			cur = &Element{Kind: KindTextLine, Box: ch.Box}
			lines = append(lines, cur)
		}
		cur.Children = append(cur.Children, ch)
		cur.Box = cur.Box.Union(ch.Box)
	}
	return lines
}

// continuesLine reports whether next follows prev on the same horizontal line.
func continuesLine(prev, next *Element) bool {
	size := math.Max(math.Max(prev.Size, next.Size), 1)
	if math.Abs(next.Box.Y0-prev.Box.Y0) > size/2 {
		return false
	}
	if next.Box.X0 < prev.Box.X0-size/2 {
		return false
	}
	return next.Box.X0 <= prev.Box.X1+3*size
}

// continuesBox reports whether line belongs to the same text box as prev.
func continuesBox(prev, line *Element) bool {
	if prev == nil {
		return false
	}
	overlap := line.Box.X0 < prev.Box.X1 && line.Box.X1 > prev.Box.X0
	gap := prev.Box.Y0 - line.Box.Y1
	return overlap && gap <= line.Box.Height()
}

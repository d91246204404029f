package pdf

import (
	"testing"

	"github.com/MeKo-Tech/linecrop/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func char(x, y float64, text string) *Element {
	const size = 12
	return &Element{
		Kind: KindChar,
		Box:  geometry.DocBox{X0: x, Y0: y, X1: x + size/2, Y1: y + size},
		Text: text,
		Size: size,
	}
}

func TestElementKind_String(t *testing.T) {
	assert.Equal(t, "page", KindPage.String())
	assert.Equal(t, "textbox", KindTextBox.String())
	assert.Equal(t, "textline", KindTextLine.String())
	assert.Equal(t, "char", KindChar.String())
	assert.Equal(t, "shape", KindShape.String())
	assert.Equal(t, "unknown", ElementKind(42).String())
}

func TestBuildLayout_GroupsLinesAndBoxes(t *testing.T) {
	chars := []*Element{
		char(10, 700, "A"),
		char(16, 700, "b"),
		char(10, 686, "C"),
		char(10, 400, "D"),
	}
	shape := &Element{Kind: KindShape, Box: geometry.DocBox{X0: 0, Y0: 0, X1: 5, Y1: 5}}

	root := buildLayout(chars, []*Element{shape})

	require.Equal(t, KindPage, root.Kind)
	require.Len(t, root.Children, 3, "two text boxes and a shape")

	first := root.Children[0]
	assert.Equal(t, KindTextBox, first.Kind)
	require.Len(t, first.Children, 2)
	assert.Equal(t, KindTextLine, first.Children[0].Kind)
	assert.Len(t, first.Children[0].Children, 2)
	assert.Len(t, first.Children[1].Children, 1)
	assert.Equal(t, geometry.DocBox{X0: 10, Y0: 686, X1: 22, Y1: 712}, first.Box)

	second := root.Children[1]
	assert.Equal(t, KindTextBox, second.Kind)
	require.Len(t, second.Children, 1)
	assert.Equal(t, "D", second.Children[0].Children[0].Text)

	assert.Equal(t, shape, root.Children[2])
	assert.Equal(t, geometry.DocBox{X0: 0, Y0: 0, X1: 22, Y1: 712}, root.Box)
}

func TestBuildLayout_BackwardJumpStartsNewLine(t *testing.T) {
	root := buildLayout([]*Element{char(100, 500, "x"), char(10, 500, "y")}, nil)

	var lines int
	Walk(root, func(e *Element) bool {
		if e.Kind == KindTextLine {
			lines++
		}
		return true
	})
	assert.Equal(t, 2, lines)
}

func TestBuildLayout_Empty(t *testing.T) {
	root := buildLayout(nil, nil)
	assert.Equal(t, KindPage, root.Kind)
	assert.Empty(t, root.Children)
	assert.Equal(t, geometry.DocBox{}, root.Box)
}

func TestLayoutPage_GlyphsSkipsBlankText(t *testing.T) {
	page := LayoutPage{Root: buildLayout([]*Element{
		char(10, 700, "H"),
		char(16, 700, " "),
		char(22, 700, "i"),
		char(28, 700, "\t"),
		char(34, 700, ""),
	}, []*Element{{Kind: KindShape}})}

	glyphs := page.Glyphs()
	require.Len(t, glyphs, 2)
	assert.Equal(t, "H", glyphs[0].Text)
	assert.Equal(t, "i", glyphs[1].Text)
	assert.InDelta(t, 22.0, glyphs[1].Box.X0, 1e-9)
}

func TestLayoutPage_GlyphsNilRoot(t *testing.T) {
	assert.Empty(t, LayoutPage{}.Glyphs())
}

func TestWalk_StopsEarly(t *testing.T) {
	root := buildLayout([]*Element{char(10, 700, "a"), char(16, 700, "b"), char(22, 700, "c")}, nil)

	var seen []string
	completed := Walk(root, func(e *Element) bool {
		if e.Kind != KindChar {
			return true
		}
		seen = append(seen, e.Text)
		return e.Text != "b"
	})

	assert.False(t, completed)
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestElement_IsContainer(t *testing.T) {
	assert.True(t, (&Element{Kind: KindPage}).IsContainer())
	assert.True(t, (&Element{Kind: KindTextBox}).IsContainer())
	assert.True(t, (&Element{Kind: KindTextLine}).IsContainer())
	assert.False(t, (&Element{Kind: KindChar}).IsContainer())
	assert.False(t, (&Element{Kind: KindShape}).IsContainer())
}

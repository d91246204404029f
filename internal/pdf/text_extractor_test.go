package pdf

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/linecrop/internal/geometry"
	"github.com/MeKo-Tech/linecrop/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectPages(t *testing.T, path string) ([]LayoutPage, error) {
	t.Helper()
	var pages []LayoutPage
	for page, err := range NewGeometryExtractor().Pages(path) {
		if err != nil {
			return pages, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func TestGeometryExtractor_Glyphs(t *testing.T) {
	path := testutil.WritePDF(t, t.TempDir(), "hi.pdf", testutil.PDFPage{
		Width:  200,
		Height: 100,
		Texts:  []testutil.PDFText{{X: 10, Y: 50, Size: 10, Text: "Hi"}},
	})

	pages, err := collectPages(t, path)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	page := pages[0]
	assert.Equal(t, 0, page.Index)
	assert.InDelta(t, 200.0, page.Width, 1e-9)
	assert.InDelta(t, 100.0, page.Height, 1e-9)

	glyphs := page.Glyphs()
	require.Len(t, glyphs, 2)
	assert.Equal(t, "H", glyphs[0].Text)
	assert.Equal(t, "i", glyphs[1].Text)

	assert.InDelta(t, 10.0, glyphs[0].Box.X0, 1e-6)
	assert.InDelta(t, 16.0, glyphs[0].Box.X1, 1e-6)
	assert.InDelta(t, 48.0, glyphs[0].Box.Y0, 1e-6)
	assert.InDelta(t, 58.0, glyphs[0].Box.Y1, 1e-6)
	assert.InDelta(t, 16.0, glyphs[1].Box.X0, 1e-6)
}

func TestGeometryExtractor_TreeShape(t *testing.T) {
	path := testutil.WritePDF(t, t.TempDir(), "tree.pdf", testutil.PDFPage{
		Width:  300,
		Height: 300,
		Texts: []testutil.PDFText{
			{X: 20, Y: 250, Size: 12, Text: "a b"},
			{X: 20, Y: 50, Size: 12, Text: "c"},
		},
		Rects: []testutil.PDFRect{{X: 5, Y: 5, W: 10, H: 10}},
	})

	pages, err := collectPages(t, path)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	counts := map[ElementKind]int{}
	Walk(pages[0].Root, func(e *Element) bool {
		counts[e.Kind]++
		return true
	})
	assert.Equal(t, 1, counts[KindPage])
	assert.Equal(t, 2, counts[KindTextBox])
	assert.Equal(t, 2, counts[KindTextLine])
	assert.GreaterOrEqual(t, counts[KindChar], 3)
	assert.Equal(t, 1, counts[KindShape])

	var shape *Element
	Walk(pages[0].Root, func(e *Element) bool {
		if e.Kind == KindShape {
			shape = e
			return false
		}
		return true
	})
	require.NotNil(t, shape)
	assert.Equal(t, geometry.DocBox{X0: 5, Y0: 5, X1: 15, Y1: 15}, shape.Box)

	texts := make([]string, 0, 3)
	for _, g := range pages[0].Glyphs() {
		texts = append(texts, g.Text)
	}
	assert.Equal(t, []string{"a", "b", "c"}, texts)
}

func TestGeometryExtractor_InheritedMediaBox(t *testing.T) {
	path := testutil.WritePDF(t, t.TempDir(), "letter.pdf",
		testutil.PDFPage{Width: 100, Height: 100},
		testutil.PDFPage{},
	)

	pages, err := collectPages(t, path)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, 1, pages[1].Index)
	assert.InDelta(t, float64(testutil.DefaultPageWidth), pages[1].Width, 1e-9)
	assert.InDelta(t, float64(testutil.DefaultPageHeight), pages[1].Height, 1e-9)
	assert.Empty(t, pages[1].Glyphs())
}

func TestGeometryExtractor_IsLazy(t *testing.T) {
	path := testutil.WritePDF(t, t.TempDir(), "three.pdf",
		testutil.PDFPage{}, testutil.PDFPage{}, testutil.PDFPage{})

	visited := 0
	for _, err := range NewGeometryExtractor().Pages(path) {
		require.NoError(t, err)
		visited++
		break
	}
	assert.Equal(t, 1, visited)
}

func TestGeometryExtractor_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := collectPages(t, filepath.Join(dir, "missing.pdf"))
		require.Error(t, err)

		var docErr *DocumentError
		require.ErrorAs(t, err, &docErr)
		assert.Equal(t, "open", docErr.Op)
		assert.Equal(t, filepath.Join(dir, "missing.pdf"), docErr.Path)
	})

	t.Run("not a pdf", func(t *testing.T) {
		path := filepath.Join(dir, "garbage.pdf")
		testutil.WriteFile(t, path, []byte("definitely not a pdf"))

		pages, err := collectPages(t, path)
		require.Error(t, err)
		assert.Empty(t, pages)

		var docErr *DocumentError
		require.ErrorAs(t, err, &docErr)
		assert.Equal(t, "parse", docErr.Op)
		assert.False(t, errors.Is(err, ErrEncrypted))
	})
}

func TestDocumentError(t *testing.T) {
	inner := errors.New("boom")
	err := newDocumentError("/tmp/a.pdf", "extract", inner)

	assert.Equal(t, "extract /tmp/a.pdf: boom", err.Error())
	assert.ErrorIs(t, err, inner)
}

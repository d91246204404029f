package testutil

import (
	"bytes"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPDF_XrefOffsets(t *testing.T) {
	data := BuildPDF(
		PDFPage{Width: 200, Height: 100, Texts: []PDFText{{X: 10, Y: 50, Size: 12, Text: "a(b)"}}},
		PDFPage{},
	)

	require.True(t, bytes.HasPrefix(data, []byte("%PDF-1.4\n")))

	entries := regexp.MustCompile(`(\d{10}) 00000 n `).FindAllSubmatch(data, -1)
	require.Len(t, entries, 7, "catalog, pages, font and two objects per page")
	for i, m := range entries {
		off, err := strconv.Atoi(string(m[1]))
		require.NoError(t, err)
		want := strconv.Itoa(i+1) + " 0 obj"
		assert.Equal(t, want, string(data[off:off+len(want)]), "object %d", i+1)
	}

	start := regexp.MustCompile(`startxref\n(\d+)\n`).FindSubmatch(data)
	require.NotNil(t, start)
	off, err := strconv.Atoi(string(start[1]))
	require.NoError(t, err)
	assert.Equal(t, "xref", string(data[off:off+4]))
}

func TestBuildPDF_Content(t *testing.T) {
	data := string(BuildPDF(PDFPage{
		Width:  300,
		Height: 400,
		Texts:  []PDFText{{X: 10.5, Y: 20, Size: 12, Text: `x\y`}},
		Rects:  []PDFRect{{X: 1, Y: 2, W: 3, H: 4}},
	}))

	assert.Contains(t, data, "/MediaBox [0 0 300 400]")
	assert.Contains(t, data, `BT /F1 12 Tf 10.5 20 Td (x\\y) Tj ET`)
	assert.Contains(t, data, "1 2 3 4 re f")
}

func TestWritePDF(t *testing.T) {
	path := WritePDF(t, CreateTempDir(t), "doc.pdf", PDFPage{})
	assert.True(t, FileExists(path))
}

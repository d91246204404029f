package testutil

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// DefaultPageWidth and DefaultPageHeight are the US Letter size in points,
// inherited by pages that leave their size unset.
const (
	DefaultPageWidth  = 612
	DefaultPageHeight = 792
)

// CourierAdvance is the advance width of every Courier glyph in thousandths
// of the font size.
const CourierAdvance = 600

// PDFText is a run of Courier text drawn from a baseline origin.
type PDFText struct {
	X    float64
	Y    float64
	Size float64
	Text string
}

// PDFRect is a filled rectangle given by its lower-left corner and size.
type PDFRect struct {
	X, Y, W, H float64
}

// PDFPage describes one page of a generated document. A zero size makes the
// page inherit the page tree's default MediaBox.
type PDFPage struct {
	Width  float64
	Height float64
	Texts  []PDFText
	Rects  []PDFRect
}

// BuildPDF renders pages into a minimal, uncompressed PDF with a valid cross
// reference table.
func BuildPDF(pages ...PDFPage) []byte {
	var buf bytes.Buffer
	offsets := []int{0}
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets)-1, body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 %d %d] >>",
		strings.Join(kids, " "), len(pages), DefaultPageWidth, DefaultPageHeight))
	obj(courierFont())

	for i, p := range pages {
		page := fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R", 5+2*i)
		if p.Width > 0 && p.Height > 0 {
			page += fmt.Sprintf(" /MediaBox [0 0 %s %s]", num(p.Width), num(p.Height))
		}
		obj(page + " >>")

		stream := contentStream(p)
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets))
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets), xref)
	return buf.Bytes()
}

// WritePDF writes a generated document into dir and returns its path.
func WritePDF(t *testing.T, dir, name string, pages ...PDFPage) string {
	t.Helper()

	path := filepath.Join(dir, name)
	WriteFile(t, path, BuildPDF(pages...))
	return path
}

func courierFont() string {
	widths := make([]string, 126-32+1)
	for i := range widths {
		widths[i] = strconv.Itoa(CourierAdvance)
	}
	return "<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding" +
		" /FirstChar 32 /LastChar 126 /Widths [" + strings.Join(widths, " ") + "] >>"
}

func contentStream(p PDFPage) string {
	var sb strings.Builder
	for _, r := range p.Rects {
		fmt.Fprintf(&sb, "%s %s %s %s re f\n", num(r.X), num(r.Y), num(r.W), num(r.H))
	}
	for _, t := range p.Texts {
		fmt.Fprintf(&sb, "BT /F1 %s Tf %s %s Td (%s) Tj ET\n", num(t.Size), num(t.X), num(t.Y), escapeString(t.Text))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escapeString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

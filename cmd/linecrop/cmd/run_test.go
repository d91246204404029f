package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeKo-Tech/linecrop/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSampleDocs(t *testing.T, dir string) {
	t.Helper()
	testutil.WritePDF(t, dir, "letter.pdf", testutil.PDFPage{
		Width:  200,
		Height: 100,
		Texts: []testutil.PDFText{
			{X: 20, Y: 60, Size: 12, Text: "Hello"},
		},
	})
	testutil.WriteFile(t, filepath.Join(dir, "broken.pdf"), []byte("not a pdf"))
	testutil.WriteFile(t, filepath.Join(dir, "notes.txt"), []byte("ignored"))
}

func TestRunCommand(t *testing.T) {
	dir := isolate(t)
	docs := filepath.Join(dir, "docs")
	writeSampleDocs(t, docs)

	stdout, _, err := execute(t, "run", docs,
		"--backend", "embedded",
		"--images-dir", "out/images",
		"--labels-dir", "out/labels",
		"--workers", "2",
		"--progress=false")
	require.NoError(t, err, "failing documents do not fail the run")

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "FAIL "+filepath.Join(docs, "broken.pdf")), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "ok   "+filepath.Join(docs, "letter.pdf")), lines[1])

	images := testutil.ListFiles(t, filepath.Join(dir, "out", "images"))
	labels := testutil.ListFiles(t, filepath.Join(dir, "out", "labels"))
	require.NotEmpty(t, images)
	assert.Len(t, labels, len(images))
	assert.Equal(t, "letter_page0_line0.png", images[0])
}

func TestRunCommand_JSONSummaryFile(t *testing.T) {
	dir := isolate(t)
	docs := filepath.Join(dir, "docs")
	writeSampleDocs(t, docs)

	stdout, _, err := execute(t, "run", docs,
		"--backend", "embedded",
		"--images-dir", "out/images",
		"--labels-dir", "out/labels",
		"--format", "json",
		"--output", "summary.json",
		"--quiet",
		"--max-documents", "1")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(filepath.Join(dir, "summary.json"))
	require.NoError(t, err)
	var summary struct {
		Documents []struct {
			File  string `json:"file"`
			Error string `json:"error"`
		} `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(data, &summary))
	require.Len(t, summary.Documents, 1, "sorted discovery capped at one document")
	assert.Equal(t, filepath.Join(docs, "broken.pdf"), summary.Documents[0].File)
	assert.NotEmpty(t, summary.Documents[0].Error)
}

func TestRunCommand_UsesConfiguredSourceDir(t *testing.T) {
	dir := isolate(t)
	writeSampleDocs(t, filepath.Join(dir, "data", "PDF"))

	stdout, _, err := execute(t, "run", "--backend", "embedded", "--progress=false", "--include", "broken.pdf")
	require.NoError(t, err)
	assert.Contains(t, stdout, "FAIL "+filepath.Join("data", "PDF", "broken.pdf"))
}

func TestRunCommand_NoDocuments(t *testing.T) {
	dir := isolate(t)
	testutil.WriteFile(t, filepath.Join(dir, "empty", "readme.txt"), []byte("x"))

	_, _, err := execute(t, "run", filepath.Join(dir, "empty"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no documents")
}

func TestRunCommand_StatsAndConfigFile(t *testing.T) {
	dir := isolate(t)
	docs := filepath.Join(dir, "docs")
	writeSampleDocs(t, docs)
	testutil.WriteFile(t, filepath.Join(dir, "custom.yaml"), []byte(`
raster:
  backend: embedded
output:
  images_dir: cfg/images
  labels_dir: cfg/labels
batch:
  workers: 1
  progress: false
  stats: true
`))

	stdout, _, err := execute(t, "--config", "custom.yaml", "run", docs)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Processing Statistics:")
	assert.Contains(t, stdout, "Total documents: 2")
	assert.Contains(t, stdout, "Failed: 1")
	assert.Contains(t, stdout, "Workers: 1")
	assert.True(t, testutil.DirExists(filepath.Join(dir, "cfg", "images")))
}

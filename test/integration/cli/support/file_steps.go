package support

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/linecrop/internal/testutil"
	"github.com/cucumber/godog"
	"github.com/disintegration/imaging"
	"gopkg.in/yaml.v3"
)

// samplePage is a small page carrying one line of Courier text.
func samplePage(text string) testutil.PDFPage {
	return testutil.PDFPage{
		Width:  200,
		Height: 100,
		Texts:  []testutil.PDFText{{X: 20, Y: 60, Size: 12, Text: text}},
	}
}

func (testCtx *TestContext) writeFile(rel string, data []byte) error {
	path := testCtx.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return nil
}

func (testCtx *TestContext) aPDFWithText(name, text string) error {
	return testCtx.writeFile(name, testutil.BuildPDF(samplePage(text)))
}

func (testCtx *TestContext) aPDFWithPages(name string, pages int) error {
	pp := make([]testutil.PDFPage, pages)
	for i := range pp {
		pp[i] = samplePage(fmt.Sprintf("P%d", i))
	}
	return testCtx.writeFile(name, testutil.BuildPDF(pp...))
}

func (testCtx *TestContext) aPDFWithoutText(name string) error {
	return testCtx.writeFile(name, testutil.BuildPDF(testutil.PDFPage{Width: 200, Height: 100}))
}

func (testCtx *TestContext) aFileContaining(name, content string) error {
	return testCtx.writeFile(name, []byte(content))
}

func (testCtx *TestContext) aConfigFileWith(name string, body *godog.DocString) error {
	return testCtx.writeFile(name, []byte(testCtx.substituteCommandVariables(body.Content)))
}

func (testCtx *TestContext) theFileShouldExist(rel string) error {
	if !testutil.FileExists(testCtx.Path(rel)) {
		return fmt.Errorf("file %s does not exist", rel)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldNotExist(rel string) error {
	if _, err := os.Stat(testCtx.Path(rel)); err == nil {
		return fmt.Errorf("file %s exists", rel)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldContain(rel, text string) error {
	data, err := os.ReadFile(testCtx.Path(rel))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", rel, err)
	}
	if !strings.Contains(string(data), text) {
		return fmt.Errorf("file %s does not contain '%s'\nActual content: %s", rel, text, data)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldRead(rel, text string) error {
	data, err := os.ReadFile(testCtx.Path(rel))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", rel, err)
	}
	if string(data) != text {
		return fmt.Errorf("file %s reads %q, want %q", rel, data, text)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldBeValidYAML(rel string) error {
	data, err := os.ReadFile(testCtx.Path(rel))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", rel, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("file %s is not valid YAML: %w", rel, err)
	}
	if len(doc) == 0 {
		return fmt.Errorf("file %s is empty", rel)
	}
	return nil
}

func (testCtx *TestContext) theImageShouldBeAValidPNG(rel string) error {
	img, err := imaging.Open(testCtx.Path(rel))
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", rel, err)
	}
	if img.Bounds().Empty() {
		return fmt.Errorf("image %s is empty", rel)
	}
	return nil
}

func (testCtx *TestContext) theDirectoryShouldContainFiles(rel string, n int, ext string) error {
	entries, err := os.ReadDir(testCtx.Path(rel))
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", rel, err)
	}
	got := 0
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), "."+ext) {
			got++
			names = append(names, e.Name())
		}
	}
	if got != n {
		return fmt.Errorf("directory %s has %d %s files, want %d: %v", rel, got, ext, n, names)
	}
	return nil
}

func (testCtx *TestContext) theDirectoryShouldNotExist(rel string) error {
	if testutil.DirExists(testCtx.Path(rel)) {
		return fmt.Errorf("directory %s exists", rel)
	}
	return nil
}

// RegisterFileSteps registers fixture and output file steps.
func (testCtx *TestContext) RegisterFileSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a PDF "([^"]*)" with text "([^"]*)"$`, testCtx.aPDFWithText)
	sc.Step(`^a PDF "([^"]*)" with (\d+) pages$`, testCtx.aPDFWithPages)
	sc.Step(`^a PDF "([^"]*)" without text$`, testCtx.aPDFWithoutText)
	sc.Step(`^a file "([^"]*)" containing "([^"]*)"$`, testCtx.aFileContaining)
	sc.Step(`^a config file "([^"]*)" with:$`, testCtx.aConfigFileWith)

	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should not exist$`, testCtx.theFileShouldNotExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, testCtx.theFileShouldContain)
	sc.Step(`^the file "([^"]*)" should read "([^"]*)"$`, testCtx.theFileShouldRead)
	sc.Step(`^the file "([^"]*)" should be valid YAML$`, testCtx.theFileShouldBeValidYAML)
	sc.Step(`^the image "([^"]*)" should be a valid PNG$`, testCtx.theImageShouldBeAValidPNG)
	sc.Step(`^the directory "([^"]*)" should contain (\d+) "([^"]*)" files?$`, testCtx.theDirectoryShouldContainFiles)
	sc.Step(`^the directory "([^"]*)" should not exist$`, testCtx.theDirectoryShouldNotExist)
}

package pdf

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

var errNoPageNumber = errors.New("no page number in file name")

// PageImages extracts every embedded image of a document with pdfcpu and
// groups the decoded images by one-based page number.
func PageImages(path string) (map[int][]image.Image, error) {
	dir, err := os.MkdirTemp("", "linecrop-extract-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	if err := api.ExtractImagesFile(path, dir, nil, nil); err != nil {
		return nil, fmt.Errorf("failed to extract images from PDF: %w", err)
	}
	return groupExtractedImages(dir)
}

// groupExtractedImages reads a pdfcpu extraction directory. Files whose name
// carries no page number or that do not decode are ignored.
func groupExtractedImages(dir string) (map[int][]image.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted images: %w", err)
	}

	byPage := make(map[int][]image.Image)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		page, err := extractedPage(e.Name())
		if err != nil {
			continue
		}
		img, err := loadImageFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		byPage[page] = append(byPage[page], img)
	}
	return byPage, nil
}

// extractedPage returns the page of an extracted image. pdfcpu names them
// <stem>_<page>_<object>.<ext>; page_<page>_... is accepted as well.
func extractedPage(name string) (int, error) {
	parts := strings.Split(strings.TrimSuffix(name, filepath.Ext(name)), "_")
	if len(parts) >= 2 && parts[0] == "page" {
		return strconv.Atoi(parts[1])
	}
	if len(parts) >= 3 {
		if page, err := strconv.Atoi(parts[len(parts)-2]); err == nil {
			return page, nil
		}
	}
	return 0, errNoPageNumber
}

func loadImageFile(path string) (image.Image, error) {
	return imaging.Open(path)
}

package dataset

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/linecrop/internal/geometry"
	"github.com/disintegration/imaging"
	"golang.org/x/text/unicode/norm"
)

// LineRecord is one emitted line: its crop rectangle on the page raster, the
// cropped pixels, and the label text.
type LineRecord struct {
	Page  int
	Index int
	Rect  geometry.PixelBox
	Image image.Image
	Label string
}

// Name returns the base file name shared by the record's image and label.
func (r LineRecord) Name(stem string) string {
	return fmt.Sprintf("%s_page%d_line%d", stem, r.Page, r.Index)
}

// BuildRecords turns a page's clusters into line records. Records keep the
// creation index of their cluster; clusters whose rectangle has no area are
// dropped and counted in skipped.
func BuildRecords(
	page int,
	raster image.Image,
	boxes []geometry.CharBox,
	clusters []*geometry.Cluster,
	tolerance int,
	mode LabelMode,
) (records []LineRecord, skipped int) {
	if tolerance <= 0 {
		tolerance = geometry.DefaultTolerance
	}
	bounds := raster.Bounds()

	for idx, c := range clusters {
		if len(c.Members) == 0 {
			continue
		}
		members := c.Sorted()
		rect := c.Bounds(bounds.Dx(), bounds.Dy())
		if rect.Empty() {
			skipped++
			continue
		}

		var label string
		if mode == LabelMembers {
			label = memberLabel(members)
		} else {
			label = rescanLabel(boxes, c.Key, tolerance, rect.Y0, rect.Y1)
		}

		records = append(records, LineRecord{
			Page:  page,
			Index: idx,
			Rect:  rect,
			Image: imaging.Crop(raster, rect.Rect().Add(bounds.Min)),
			Label: label,
		})
	}
	return records, skipped
}

// rescanLabel concatenates, in extraction order, every box on the page whose
// center is within tolerance of key and whose top edge lies in [minY, maxY].
func rescanLabel(boxes []geometry.CharBox, key, tolerance, minY, maxY int) string {
	line := geometry.Cluster{Key: key}
	var sb strings.Builder
	for _, b := range boxes {
		if line.Accepts(b.CenterX(), tolerance) && minY <= b.Y0 && b.Y0 <= maxY {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

func memberLabel(members []geometry.CharBox) string {
	var sb strings.Builder
	for _, m := range members {
		sb.WriteString(m.Text)
	}
	return sb.String()
}

// Emitter persists line records as <name>.png under the images directory and
// <name>.txt under the labels directory.
type Emitter struct {
	imagesDir string
	labelsDir string
	normalize bool
}

// NewEmitter creates an emitter writing into the configured directories.
func NewEmitter(cfg Config) *Emitter {
	return &Emitter{
		imagesDir: cfg.ImagesDir,
		labelsDir: cfg.LabelsDir,
		normalize: cfg.Normalize,
	}
}

// Prepare creates the output directories if they do not exist. It is safe to
// call concurrently.
func (e *Emitter) Prepare() error {
	for _, dir := range []string{e.imagesDir, e.labelsDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	return nil
}

// Write saves the record's crop and label and returns the shared base name.
func (e *Emitter) Write(stem string, rec LineRecord) (string, error) {
	name := rec.Name(stem)

	imagePath := filepath.Join(e.imagesDir, name+".png")
	if err := imaging.Save(rec.Image, imagePath); err != nil {
		return "", fmt.Errorf("failed to save line image %s: %w", imagePath, err)
	}

	label := rec.Label
	if e.normalize {
		label = norm.NFC.String(label)
	}
	labelPath := filepath.Join(e.labelsDir, name+".txt")
	if err := os.WriteFile(labelPath, []byte(label), 0o600); err != nil {
		return "", fmt.Errorf("failed to write label %s: %w", labelPath, err)
	}
	return name, nil
}

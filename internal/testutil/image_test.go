package testutil

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawPage(t *testing.T) {
	img := DrawPage(200, 60, TextLine{X: 10, Baseline: 30, Text: "Line"})
	assert.Equal(t, image.Rect(0, 0, 200, 60), img.Bounds())

	ink := InkBounds(img)
	require.False(t, ink.Empty())
	assert.GreaterOrEqual(t, ink.Min.X, 10)
	assert.LessOrEqual(t, ink.Max.X, 10+4*GlyphWidth)
	assert.GreaterOrEqual(t, ink.Min.Y, 30-GlyphHeight)
	assert.LessOrEqual(t, ink.Max.Y, 30+GlyphHeight)
}

func TestInkBounds_Blank(t *testing.T) {
	assert.True(t, InkBounds(DrawPage(20, 20)).Empty())
}

func TestSaveAndLoadImage(t *testing.T) {
	img := DrawPage(80, 30, TextLine{X: 2, Baseline: 20, Text: "Save"})

	imagePath := filepath.Join(CreateTempDir(t), "nested", "test_image.png")
	SaveImage(t, img, imagePath)
	assert.True(t, FileExists(imagePath))

	loadedImg := LoadImage(t, imagePath)
	assert.Equal(t, img.Bounds(), loadedImg.Bounds())
	assert.True(t, CompareImages(img, loadedImg, 0.001))
}

func TestCompareImages(t *testing.T) {
	img1 := DrawPage(100, 30, TextLine{X: 5, Baseline: 20, Text: "Compare"})
	img2 := DrawPage(100, 30, TextLine{X: 5, Baseline: 20, Text: "Compare"})
	assert.True(t, CompareImages(img1, img2, 0.01))

	black := CreateTestImage(100, 30, color.Black)
	assert.False(t, CompareImages(img1, black, 0.5))

	assert.False(t, CompareImages(img1, DrawPage(50, 30), 1), "different bounds")
}

func TestCreateTestImage(t *testing.T) {
	img := CreateTestImage(40, 20, color.Black)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())

	r, g, b, _ := img.At(5, 5).RGBA()
	assert.Zero(t, r+g+b)
}

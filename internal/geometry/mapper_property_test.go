package geometry

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type mapperCase struct {
	frame PageFrame
	box   DocBox
}

// genMapperCase generates a page frame and a box lying inside the page.
func genMapperCase() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(50, 2000),
		gen.Float64Range(50, 2000),
		gen.IntRange(10, 4000),
		gen.IntRange(10, 4000),
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 1),
	).Map(func(vals []interface{}) mapperCase {
		pw := vals[0].(float64)
		ph := vals[1].(float64)
		ax, bx := vals[4].(float64), vals[5].(float64)
		ay, by := vals[6].(float64), vals[7].(float64)
		if ax > bx {
			ax, bx = bx, ax
		}
		if ay > by {
			ay, by = by, ay
		}
		return mapperCase{
			frame: PageFrame{PageWidth: pw, PageHeight: ph, ImageWidth: vals[2].(int), ImageHeight: vals[3].(int)},
			box:   DocBox{X0: ax * pw, X1: bx * pw, Y0: ay * ph, Y1: by * ph},
		}
	})
}

// TestMapper_BoundsProperty verifies mapped boxes always lie within the image.
func TestMapper_BoundsProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("mapped box is ordered and inside the image", prop.ForAll(
		func(c mapperCase) bool {
			m, err := NewMapper(c.frame, DefaultPadding())
			if err != nil {
				return false
			}
			b := m.Map(c.box)
			return b.X0 >= 0 && b.X0 <= b.X1 && b.X1 <= c.frame.ImageWidth &&
				b.Y0 >= 0 && b.Y0 <= b.Y1 && b.Y1 <= c.frame.ImageHeight
		},
		genMapperCase(),
	))

	properties.TestingRun(t)
}

// TestMapper_AxisFlipProperty verifies the page top maps to pixel row zero and
// the page bottom maps to the last row.
func TestMapper_AxisFlipProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("top of page maps to y=0", prop.ForAll(
		func(c mapperCase) bool {
			m, err := NewMapper(c.frame, DefaultPadding())
			if err != nil {
				return false
			}
			box := c.box
			box.Y1 = c.frame.PageHeight
			return m.Map(box).Y0 == 0
		},
		genMapperCase(),
	))

	properties.Property("bottom of page maps to y=image height", prop.ForAll(
		func(c mapperCase) bool {
			m, err := NewMapper(c.frame, DefaultPadding())
			if err != nil {
				return false
			}
			box := c.box
			box.Y0 = 0
			return m.Map(box).Y1 == c.frame.ImageHeight
		},
		genMapperCase(),
	))

	properties.TestingRun(t)
}

package geometry

import "sort"

// DefaultTolerance is the horizontal-center distance, in pixels, under which a
// glyph joins an existing line cluster.
const DefaultTolerance = 20

// Cluster is a vertical text-line candidate. Key is the horizontal center of
// the first box assigned to it and never changes afterwards.
type Cluster struct {
	Key     int
	Members []CharBox
}

// Accepts reports whether a box with the given center belongs to the cluster.
func (c *Cluster) Accepts(center, tolerance int) bool {
	return absInt(center-c.Key) < tolerance
}

// Sorted returns a copy of the members ordered top to bottom by Y0.
func (c *Cluster) Sorted() []CharBox {
	out := make([]CharBox, len(c.Members))
	copy(out, c.Members)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Y0 < out[j].Y0 })
	return out
}

// Bounds returns the enclosing rectangle of all members clamped to a
// width x height image. The result may be empty.
func (c *Cluster) Bounds(width, height int) PixelBox {
	if len(c.Members) == 0 {
		return PixelBox{}
	}
	b := c.Members[0].PixelBox
	for _, m := range c.Members[1:] {
		b.X0 = min(b.X0, m.X0)
		b.Y0 = min(b.Y0, m.Y0)
		b.X1 = max(b.X1, m.X1)
		b.Y1 = max(b.Y1, m.Y1)
	}
	return PixelBox{
		X0: max(0, b.X0),
		Y0: max(0, b.Y0),
		X1: min(width, b.X1),
		Y1: min(height, b.Y1),
	}
}

// ClusterLines partitions boxes in one greedy pass. Each box joins the first
// cluster, in creation order, whose key lies within tolerance of the box
// center; otherwise it opens a new cluster keyed at its own center. The
// result is in creation order.
func ClusterLines(boxes []CharBox, tolerance int) []*Cluster {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	var clusters []*Cluster
	for _, b := range boxes {
		center := b.CenterX()
		assigned := false
		for _, c := range clusters {
			if c.Accepts(center, tolerance) {
				c.Members = append(c.Members, b)
				assigned = true
				break
			}
		}
		if !assigned {
			clusters = append(clusters, &Cluster{Key: center, Members: []CharBox{b}})
		}
	}
	return clusters
}

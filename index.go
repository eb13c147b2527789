package mapcode

import (
	"slices"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// minExtent keeps degenerate rectangles acceptable to the R-tree.
const minExtent = 0.0001

// boundaryPart is one polygon of a territory boundary in the spatial index.
type boundaryPart struct {
	territory *Territory
	polygon   orb.Polygon
	rect      rtreego.Rect
}

func (p *boundaryPart) Bounds() rtreego.Rect { return p.rect }

// spatialIndex finds the territories whose boundary contains a point. The
// world territory is not indexed.
type spatialIndex struct {
	tree *rtreego.Rtree
}

func newSpatialIndex(territories []*Territory) *spatialIndex {
	tree := rtreego.NewTree(2, 25, 50)
	for _, t := range territories {
		if t.IsWorld() {
			continue
		}
		for _, poly := range t.boundary {
			rect, err := boundRect(poly.Bound())
			if err != nil {
				continue
			}
			tree.Insert(&boundaryPart{territory: t, polygon: poly, rect: rect})
		}
	}
	return &spatialIndex{tree: tree}
}

func boundRect(b orb.Bound) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{b.Min[0], b.Min[1]},
		[]float64{max(b.Max[0]-b.Min[0], minExtent), max(b.Max[1]-b.Min[1], minExtent)},
	)
}

// containing returns the territories containing p, in ascending code order.
func (ix *spatialIndex) containing(p orb.Point) []*Territory {
	query, err := rtreego.NewRect(
		rtreego.Point{p[0] - minExtent/2, p[1] - minExtent/2},
		[]float64{minExtent, minExtent},
	)
	if err != nil {
		return nil
	}
	var out []*Territory
	for _, s := range ix.tree.SearchIntersect(query) {
		part := s.(*boundaryPart)
		if slices.Contains(out, part.territory) {
			continue
		}
		if planar.PolygonContains(part.polygon, p) {
			out = append(out, part.territory)
		}
	}
	slices.SortFunc(out, func(a, b *Territory) int { return a.code - b.code })
	return out
}

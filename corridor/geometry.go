// Package corridor selects the floor triangles of streamed mesh fragments that fall inside a
// corridor and colors them by slope.
package corridor

import (
	"image/color"

	"github.com/golang/geo/r3"

	"go.viam.com/slopescan/fragment"
)

// FilteredGeometry is the colored sub-mesh extracted from one fragment. Vertices are in world
// space and every triangle owns its own three vertices, so Triangles is always 0, 1, 2, 3, ....
type FilteredGeometry struct {
	Vertices  []r3.Vector
	Colors    []color.NRGBA
	Triangles []int
}

// Empty reports whether no triangle survived filtering.
func (g *FilteredGeometry) Empty() bool {
	return g == nil || len(g.Triangles) == 0
}

// TriangleCount returns the number of triangles.
func (g *FilteredGeometry) TriangleCount() int {
	if g == nil {
		return 0
	}
	return len(g.Triangles) / 3
}

func (g *FilteredGeometry) appendTriangle(tri [3]r3.Vector, c color.NRGBA) {
	base := len(g.Vertices)
	g.Vertices = append(g.Vertices, tri[0], tri[1], tri[2])
	g.Colors = append(g.Colors, c, c, c)
	g.Triangles = append(g.Triangles, base, base+1, base+2)
}

// Sink receives the per-fragment results of a Filter. ReplaceGeometry always carries a non-empty
// geometry that supersedes anything previously published for the ID.
type Sink interface {
	ReplaceGeometry(id fragment.ID, g *FilteredGeometry) error
	RetractGeometry(id fragment.ID) error
}

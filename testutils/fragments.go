// Package testutils builds mesh fragments for tests.
package testutils

import (
	"github.com/golang/geo/r3"

	"go.viam.com/slopescan/fragment"
	"go.viam.com/slopescan/spatialmath"
)

// NewID returns a fragment ID with the given low half.
func NewID(lo uint64) fragment.ID {
	return fragment.ID{Hi: 1, Lo: lo}
}

// NewTriangleFragment returns a one-triangle fragment lying in the XZ plane, with the given
// centroid, facing +Y, and with every vertex normal set to normal.
func NewTriangleFragment(id fragment.ID, centroid, normal r3.Vector, class fragment.Classification) *fragment.MeshFragment {
	verts := []r3.Vector{
		centroid.Add(r3.Vector{X: -0.1, Z: -0.05}),
		centroid.Add(r3.Vector{Z: 0.1}),
		centroid.Add(r3.Vector{X: 0.1, Z: -0.05}),
	}
	return &fragment.MeshFragment{
		ID:              id,
		Vertices:        verts,
		Triangles:       []int{0, 1, 2},
		Normals:         []r3.Vector{normal, normal, normal},
		Transform:       spatialmath.NewZeroPose(),
		Classifications: []fragment.Classification{class},
	}
}

// NewGridFragment returns a cols×rows vertex grid in the XZ plane starting at origin with the
// given spacing. height gives each vertex's Y offset; nil means flat. Every triangle gets class
// and normals are left out.
func NewGridFragment(
	id fragment.ID,
	origin r3.Vector,
	cols, rows int,
	spacing float64,
	height func(x, z float64) float64,
	class fragment.Classification,
) *fragment.MeshFragment {
	verts := make([]r3.Vector, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x, z := float64(c)*spacing, float64(r)*spacing
			y := 0.
			if height != nil {
				y = height(x, z)
			}
			verts = append(verts, origin.Add(r3.Vector{X: x, Y: y, Z: z}))
		}
	}

	var tris []int
	for r := 0; r+1 < rows; r++ {
		for c := 0; c+1 < cols; c++ {
			i := r*cols + c
			tris = append(tris, i, i+cols, i+1, i+1, i+cols, i+cols+1)
		}
	}
	classes := make([]fragment.Classification, len(tris)/3)
	for i := range classes {
		classes[i] = class
	}
	return &fragment.MeshFragment{
		ID:              id,
		Vertices:        verts,
		Triangles:       tris,
		Transform:       spatialmath.NewZeroPose(),
		Classifications: classes,
	}
}

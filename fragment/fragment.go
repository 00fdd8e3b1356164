// Package fragment holds streamed mesh fragments keyed by their stable IDs and the contract of
// the geometry provider that streams them.
package fragment

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/slopescan/spatialmath"
)

var (
	// ErrInvalidFragment is returned when a fragment's buffers are inconsistent.
	ErrInvalidFragment = errors.New("invalid fragment")
	// ErrMissingClassification marks a fragment with no per-triangle labels. Consumers that need
	// labels skip such fragments; it is never fatal.
	ErrMissingClassification = errors.New("fragment has no classification")
)

// MeshFragment is one unit of streamed geometry. Vertices and Normals are in local space,
// Triangles holds vertex indices in groups of three, and Transform maps local space to world
// space. Classifications, when present, holds one label per triangle.
type MeshFragment struct {
	ID              ID
	Vertices        []r3.Vector
	Triangles       []int
	Normals         []r3.Vector
	Transform       spatialmath.Pose
	Classifications []Classification
}

// TriangleCount returns the number of triangles.
func (f *MeshFragment) TriangleCount() int {
	return len(f.Triangles) / 3
}

// HasClassification reports whether per-triangle labels were delivered.
func (f *MeshFragment) HasClassification() bool {
	return f.Classifications != nil
}

// ClassAt returns the label of triangle i.
func (f *MeshFragment) ClassAt(i int) Classification {
	if i < 0 || i >= len(f.Classifications) {
		return Unclassified
	}
	return f.Classifications[i]
}

// Pose returns the local-to-world transform, defaulting to identity.
func (f *MeshFragment) Pose() spatialmath.Pose {
	if f.Transform == nil {
		return spatialmath.NewZeroPose()
	}
	return f.Transform
}

// HasNormals reports whether per-vertex normals were delivered.
func (f *MeshFragment) HasNormals() bool {
	return len(f.Normals) > 0
}

// WorldTriangle returns triangle i with its corners in world space.
func (f *MeshFragment) WorldTriangle(i int) *spatialmath.Triangle {
	pose := f.Pose()
	base := i * 3
	return spatialmath.NewTriangle(
		spatialmath.TransformPoint(pose, f.Vertices[f.Triangles[base]]),
		spatialmath.TransformPoint(pose, f.Vertices[f.Triangles[base+1]]),
		spatialmath.TransformPoint(pose, f.Vertices[f.Triangles[base+2]]),
	)
}

// WorldNormal returns the normal of vertex index v rotated into world space.
func (f *MeshFragment) WorldNormal(v int) r3.Vector {
	return spatialmath.TransformDirection(f.Pose(), f.Normals[v])
}

// WorldVertices returns every vertex in world space, in buffer order.
func (f *MeshFragment) WorldVertices() []r3.Vector {
	pose := f.Pose()
	out := make([]r3.Vector, len(f.Vertices))
	for i, v := range f.Vertices {
		out[i] = spatialmath.TransformPoint(pose, v)
	}
	return out
}

// Validate ensures the buffers agree with each other.
func (f *MeshFragment) Validate() error {
	if !f.ID.IsValid() {
		return errors.Wrap(ErrInvalidFragment, "zero fragment id")
	}
	if len(f.Triangles)%3 != 0 {
		return errors.Wrapf(ErrInvalidFragment, "fragment %s: triangle index count %d is not a multiple of 3",
			f.ID, len(f.Triangles))
	}
	for i, idx := range f.Triangles {
		if idx < 0 || idx >= len(f.Vertices) {
			return errors.Wrapf(ErrInvalidFragment, "fragment %s: triangle index %d at %d out of range [0, %d)",
				f.ID, idx, i, len(f.Vertices))
		}
	}
	if len(f.Normals) != 0 && len(f.Normals) != len(f.Vertices) {
		return errors.Wrapf(ErrInvalidFragment, "fragment %s: %d normals for %d vertices",
			f.ID, len(f.Normals), len(f.Vertices))
	}
	if f.Classifications != nil && len(f.Classifications) < f.TriangleCount() {
		return errors.Wrapf(ErrInvalidFragment, "fragment %s: %d classifications for %d triangles",
			f.ID, len(f.Classifications), f.TriangleCount())
	}
	return nil
}

// Package pointcloud defines an ordered point cloud along with the plane fitting and PCD export
// used when inspecting a baked region.
package pointcloud

import (
	"image/color"
	"math"

	"github.com/golang/geo/r3"
)

// MetaData is data about what's stored in the point cloud.
type MetaData struct {
	HasColor bool

	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// NewMetaData returns metadata with inverted bounds, ready to Merge points into.
func NewMetaData() MetaData {
	return MetaData{
		MinX: math.MaxFloat64,
		MinY: math.MaxFloat64,
		MinZ: math.MaxFloat64,
		MaxX: -math.MaxFloat64,
		MaxY: -math.MaxFloat64,
		MaxZ: -math.MaxFloat64,
	}
}

// Merge grows the bounds to include v.
func (meta *MetaData) Merge(v r3.Vector, hasColor bool) {
	if hasColor {
		meta.HasColor = true
	}
	meta.MinX = math.Min(meta.MinX, v.X)
	meta.MinY = math.Min(meta.MinY, v.Y)
	meta.MinZ = math.Min(meta.MinZ, v.Z)
	meta.MaxX = math.Max(meta.MaxX, v.X)
	meta.MaxY = math.Max(meta.MaxY, v.Y)
	meta.MaxZ = math.Max(meta.MaxZ, v.Z)
}

// Center returns the middle of the bounding box.
func (meta MetaData) Center() r3.Vector {
	return r3.Vector{X: (meta.MinX + meta.MaxX) / 2, Y: (meta.MinY + meta.MaxY) / 2, Z: (meta.MinZ + meta.MaxZ) / 2}
}

// Extent returns the size of the bounding box along each axis.
func (meta MetaData) Extent() r3.Vector {
	return r3.Vector{X: meta.MaxX - meta.MinX, Y: meta.MaxY - meta.MinY, Z: meta.MaxZ - meta.MinZ}
}

// PointCloud is an ordered list of points with optional per-point color. Duplicate positions are
// kept; the order points are added in is the order they are iterated in.
type PointCloud struct {
	points []r3.Vector
	colors []color.NRGBA
	meta   MetaData
}

// New returns an empty point cloud.
func New() *PointCloud {
	return NewWithCapacity(0)
}

// NewWithCapacity returns an empty point cloud with room for n points.
func NewWithCapacity(n int) *PointCloud {
	return &PointCloud{points: make([]r3.Vector, 0, n), meta: NewMetaData()}
}

// NewFromPoints returns an uncolored cloud holding pts.
func NewFromPoints(pts []r3.Vector) *PointCloud {
	pc := NewWithCapacity(len(pts))
	for _, p := range pts {
		pc.Append(p)
	}
	return pc
}

// Append adds an uncolored point.
func (pc *PointCloud) Append(p r3.Vector) {
	pc.points = append(pc.points, p)
	if pc.colors != nil {
		pc.colors = append(pc.colors, color.NRGBA{})
	}
	pc.meta.Merge(p, false)
}

// AppendColored adds a point carrying a color.
func (pc *PointCloud) AppendColored(p r3.Vector, c color.NRGBA) {
	if pc.colors == nil {
		pc.colors = make([]color.NRGBA, len(pc.points), cap(pc.points))
	}
	pc.points = append(pc.points, p)
	pc.colors = append(pc.colors, c)
	pc.meta.Merge(p, true)
}

// Size returns the number of points in the cloud.
func (pc *PointCloud) Size() int {
	return len(pc.points)
}

// MetaData returns the bounds of the cloud.
func (pc *PointCloud) MetaData() MetaData {
	return pc.meta
}

// Points returns the positions in insertion order.
func (pc *PointCloud) Points() []r3.Vector {
	return pc.points
}

// At returns the i-th point and its color, if it has one.
func (pc *PointCloud) At(i int) (r3.Vector, color.NRGBA, bool) {
	if pc.colors == nil {
		return pc.points[i], color.NRGBA{}, false
	}
	return pc.points[i], pc.colors[i], true
}

// Iterate calls fn for every point in order until fn returns false.
func (pc *PointCloud) Iterate(fn func(p r3.Vector, c color.NRGBA, hasColor bool) bool) {
	for i := range pc.points {
		p, c, ok := pc.At(i)
		if !fn(p, c, ok) {
			return
		}
	}
}

package spatialmath

import (
	"github.com/golang/geo/r3"
)

// Triangle is three points in space. The normal follows the right-hand rule over p0, p1, p2.
type Triangle struct {
	p0 r3.Vector
	p1 r3.Vector
	p2 r3.Vector

	normal r3.Vector
}

// NewTriangle creates a Triangle from its three corners.
func NewTriangle(p0, p1, p2 r3.Vector) *Triangle {
	return &Triangle{
		p0:     p0,
		p1:     p1,
		p2:     p2,
		normal: PlaneNormal(p0, p1, p2),
	}
}

// Points returns the corners in construction order.
func (t *Triangle) Points() []r3.Vector {
	return []r3.Vector{t.p0, t.p1, t.p2}
}

// Normal returns the unit face normal, or the zero vector for a degenerate triangle.
func (t *Triangle) Normal() r3.Vector {
	return t.normal
}

// Centroid returns the mean of the three corners.
func (t *Triangle) Centroid() r3.Vector {
	return t.p0.Add(t.p1).Add(t.p2).Mul(1. / 3.)
}

// Area returns the area of the triangle.
func (t *Triangle) Area() float64 {
	return 0.5 * t.p1.Sub(t.p0).Cross(t.p2.Sub(t.p0)).Norm()
}

// Transform returns a copy of the triangle with every corner moved by pose.
func (t *Triangle) Transform(pose Pose) *Triangle {
	return NewTriangle(TransformPoint(pose, t.p0), TransformPoint(pose, t.p1), TransformPoint(pose, t.p2))
}

// PlaneNormal returns the unit normal of the plane through three points.
func PlaneNormal(p0, p1, p2 r3.Vector) r3.Vector {
	return p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
}

// ClosestPointSegmentPoint returns the point on segment [segA, segB] nearest pt. A zero-length
// segment collapses to segA.
func ClosestPointSegmentPoint(segA, segB, pt r3.Vector) r3.Vector {
	ab := segB.Sub(segA)
	denom := ab.Norm2()
	if denom < floatEpsilon*floatEpsilon {
		return segA
	}
	t := pt.Sub(segA).Dot(ab) / denom
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return segA.Add(ab.Mul(t))
}

// DistToLineSegment returns the distance from pt to the segment [segA, segB].
func DistToLineSegment(segA, segB, pt r3.Vector) float64 {
	return pt.Sub(ClosestPointSegmentPoint(segA, segB, pt)).Norm()
}

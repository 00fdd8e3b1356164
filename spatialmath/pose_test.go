package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

func TestPoseTransforms(t *testing.T) {
	// 90 degrees about +Y takes +Z onto +X.
	q := QuatFromAxisAngle(r3.Vector{Y: 1}, math.Pi/2)
	p := NewPose(r3.Vector{X: 1, Y: 2, Z: 3}, q)

	t.Run("direction ignores translation", func(t *testing.T) {
		dir := TransformDirection(p, r3.Vector{Z: 1})
		test.That(t, dir.Sub(r3.Vector{X: 1}).Norm(), test.ShouldBeLessThan, 1e-9)
	})

	t.Run("point", func(t *testing.T) {
		pt := TransformPoint(p, r3.Vector{Z: 1})
		test.That(t, pt.Sub(r3.Vector{X: 2, Y: 2, Z: 3}).Norm(), test.ShouldBeLessThan, 1e-9)
	})

	t.Run("inverse composes to identity", func(t *testing.T) {
		id := Compose(p, PoseInverse(p))
		test.That(t, PoseAlmostEqual(id, NewZeroPose(), 1e-9), test.ShouldBeTrue)
		back := TransformPoint(PoseInverse(p), TransformPoint(p, r3.Vector{X: 0.3, Y: -1, Z: 4}))
		test.That(t, back.Sub(r3.Vector{X: 0.3, Y: -1, Z: 4}).Norm(), test.ShouldBeLessThan, 1e-9)
	})

	t.Run("zero quaternion is identity", func(t *testing.T) {
		z := NewPose(r3.Vector{}, quat.Number{})
		test.That(t, z.Orientation(), test.ShouldResemble, quat.Number{Real: 1})
	})

	t.Run("double cover", func(t *testing.T) {
		neg := NewPose(p.Point(), quat.Scale(-1, q))
		test.That(t, PoseAlmostEqual(p, neg, 1e-9), test.ShouldBeTrue)
	})
}

func TestQuatFromBasis(t *testing.T) {
	for _, axes := range [][3]r3.Vector{
		{{X: 1}, {Y: 1}, {Z: 1}},
		{{Z: -1}, {Y: 1}, {X: 1}},
		{{X: -1}, {Y: -1}, {Z: 1}},
		{{Y: 1}, {Z: 1}, {X: 1}},
		{{X: -1}, {Y: 1}, {Z: -1}},
	} {
		q := QuatFromBasis(axes[0], axes[1], axes[2])
		test.That(t, RotateVector(q, r3.Vector{X: 1}).Sub(axes[0]).Norm(), test.ShouldBeLessThan, 1e-9)
		test.That(t, RotateVector(q, r3.Vector{Y: 1}).Sub(axes[1]).Norm(), test.ShouldBeLessThan, 1e-9)
		test.That(t, RotateVector(q, r3.Vector{Z: 1}).Sub(axes[2]).Norm(), test.ShouldBeLessThan, 1e-9)
	}
}

func TestTriangle(t *testing.T) {
	expectedPts := []r3.Vector{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 3, Z: 0}, {X: 3, Y: 0, Z: 0}}
	tri := NewTriangle(expectedPts[0], expectedPts[1], expectedPts[2])

	test.That(t, tri.Points(), test.ShouldResemble, expectedPts)
	test.That(t, tri.Normal().Sub(r3.Vector{X: 0, Y: 0, Z: -1}).Norm(), test.ShouldBeLessThan, 1e-12)
	test.That(t, tri.Area(), test.ShouldEqual, 4.5)
	test.That(t, tri.Centroid().Sub(r3.Vector{X: 1, Y: 1, Z: 0}).Norm(), test.ShouldBeLessThan, 1e-12)

	moved := tri.Transform(NewPoseFromPoint(r3.Vector{X: 0, Y: 0, Z: 2}))
	test.That(t, moved.Points()[1], test.ShouldResemble, r3.Vector{X: 0, Y: 3, Z: 2})

	degenerate := NewTriangle(r3.Vector{}, r3.Vector{X: 1}, r3.Vector{X: 2})
	test.That(t, degenerate.Normal(), test.ShouldResemble, r3.Vector{})
}

func TestClosestPointSegmentPoint(t *testing.T) {
	a, b := r3.Vector{}, r3.Vector{X: 2}
	test.That(t, ClosestPointSegmentPoint(a, b, r3.Vector{X: 1, Y: 5}), test.ShouldResemble, r3.Vector{X: 1})
	test.That(t, ClosestPointSegmentPoint(a, b, r3.Vector{X: -3, Y: 1}), test.ShouldResemble, a)
	test.That(t, ClosestPointSegmentPoint(a, b, r3.Vector{X: 9}), test.ShouldResemble, b)
	test.That(t, ClosestPointSegmentPoint(a, a, r3.Vector{X: 9}), test.ShouldResemble, a)
	test.That(t, DistToLineSegment(a, b, r3.Vector{X: 3, Y: 4}), test.ShouldAlmostEqual, math.Sqrt(17))
}

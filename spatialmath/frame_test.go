package spatialmath

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestBuildLocalFrame(t *testing.T) {
	up := r3.Vector{Y: 1}

	t.Run("regular", func(t *testing.T) {
		f, err := BuildLocalFrame(r3.Vector{}, r3.Vector{X: 2}, up, r3.Vector{Z: 1})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, f.Degenerate, test.ShouldBeFalse)
		test.That(t, f.IsOrthonormal(1e-9), test.ShouldBeTrue)
		test.That(t, f.Forward, test.ShouldResemble, r3.Vector{X: 1})
		test.That(t, f.Up.Sub(up).Norm(), test.ShouldBeLessThan, 1e-12)
		test.That(t, f.Side.Sub(r3.Vector{Z: -1}).Norm(), test.ShouldBeLessThan, 1e-12)
	})

	t.Run("tilted hint is re-orthogonalized", func(t *testing.T) {
		f, err := BuildLocalFrame(r3.Vector{}, r3.Vector{X: 1, Y: 0.5}, up, r3.Vector{})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, f.Degenerate, test.ShouldBeFalse)
		test.That(t, f.IsOrthonormal(1e-9), test.ShouldBeTrue)
		test.That(t, f.Up.Y, test.ShouldBeGreaterThan, 0)
	})

	t.Run("parallel hint uses fallback", func(t *testing.T) {
		fallback := r3.Vector{X: 0.2, Z: 1}
		f, err := BuildLocalFrame(r3.Vector{}, r3.Vector{Y: 3}, up, fallback)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, f.Degenerate, test.ShouldBeTrue)
		test.That(t, f.IsOrthonormal(1e-9), test.ShouldBeTrue)
		test.That(t, f.Forward, test.ShouldResemble, r3.Vector{Y: 1})
		// the recomputed up stays in the plane spanned by forward and the fallback
		test.That(t, f.Up.Dot(fallback.Normalize()), test.ShouldBeGreaterThan, 0.99)
	})

	t.Run("nearly parallel hint", func(t *testing.T) {
		f, err := BuildLocalFrame(r3.Vector{}, r3.Vector{X: 0.01, Y: 1}, up, r3.Vector{X: 1})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, f.Degenerate, test.ShouldBeTrue)
		test.That(t, f.IsOrthonormal(1e-9), test.ShouldBeTrue)
	})

	t.Run("unusable fallback", func(t *testing.T) {
		f, err := BuildLocalFrame(r3.Vector{}, r3.Vector{Y: 1}, up, r3.Vector{Y: -2})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, f.Degenerate, test.ShouldBeTrue)
		test.That(t, f.IsOrthonormal(1e-9), test.ShouldBeTrue)
	})

	t.Run("coincident endpoints", func(t *testing.T) {
		_, err := BuildLocalFrame(r3.Vector{X: 1}, r3.Vector{X: 1}, up, r3.Vector{Z: 1})
		test.That(t, errors.Is(err, ErrInvalidCorridor), test.ShouldBeTrue)
	})
}

func TestLocalFrameCoordinates(t *testing.T) {
	c, err := NewCorridor(r3.Vector{X: 1, Y: 1, Z: 1}, r3.Vector{X: 1, Y: 1, Z: 5}, 0.5, r3.Vector{Y: 1})
	test.That(t, err, test.ShouldBeNil)
	f, err := FrameForCorridor(c, r3.Vector{X: 1})
	test.That(t, err, test.ShouldBeNil)

	origin := c.Center()
	p := r3.Vector{X: 1.2, Y: 1.5, Z: 2}
	local := f.ToLocal(p, origin)
	test.That(t, local.Z, test.ShouldAlmostEqual, -1)
	test.That(t, local.Y, test.ShouldAlmostEqual, 0.5)
	test.That(t, local.X, test.ShouldAlmostEqual, 0.2)
	test.That(t, f.ToWorld(local, origin).Sub(p).Norm(), test.ShouldBeLessThan, 1e-12)

	pose := f.Pose(origin)
	test.That(t, TransformPoint(pose, local).Sub(p).Norm(), test.ShouldBeLessThan, 1e-9)
}

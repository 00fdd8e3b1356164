package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestNewCorridor(t *testing.T) {
	up := r3.Vector{Y: 1}

	c, err := NewCorridor(r3.Vector{}, r3.Vector{X: 2}, 1, up)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.HalfWidth(), test.ShouldEqual, 0.5)
	test.That(t, c.Length(), test.ShouldEqual, 2.0)
	test.That(t, c.Center(), test.ShouldResemble, r3.Vector{X: 1})
	test.That(t, c.Direction(), test.ShouldResemble, r3.Vector{X: 1})
	test.That(t, c.DistanceLabel(), test.ShouldEqual, "2.00m")

	_, err = NewCorridor(r3.Vector{X: 1}, r3.Vector{X: 1}, 1, up)
	test.That(t, errors.Is(err, ErrInvalidCorridor), test.ShouldBeTrue)

	_, err = NewCorridor(r3.Vector{}, r3.Vector{X: 1}, 0, up)
	test.That(t, errors.Is(err, ErrInvalidCorridor), test.ShouldBeTrue)

	_, err = NewCorridor(r3.Vector{}, r3.Vector{X: 1}, math.NaN(), up)
	test.That(t, errors.Is(err, ErrInvalidCorridor), test.ShouldBeTrue)
}

func TestPointInCorridor(t *testing.T) {
	a, b := r3.Vector{}, r3.Vector{X: 2}
	const halfWidth = 0.5

	t.Run("between endpoints", func(t *testing.T) {
		for _, x := range []float64{0.01, 0.5, 1, 1.99} {
			test.That(t, PointInCorridor(r3.Vector{X: x, Z: 0.49}, a, b, halfWidth), test.ShouldBeTrue)
			test.That(t, PointInCorridor(r3.Vector{X: x, Y: -0.3, Z: 0.3}, a, b, halfWidth), test.ShouldBeTrue)
			test.That(t, PointInCorridor(r3.Vector{X: x, Z: 0.51}, a, b, halfWidth), test.ShouldBeFalse)
			test.That(t, PointInCorridor(r3.Vector{X: x, Y: 1}, a, b, halfWidth), test.ShouldBeFalse)
		}
	})

	t.Run("closed boundary", func(t *testing.T) {
		test.That(t, PointInCorridor(r3.Vector{X: 1, Y: 0.5}, a, b, halfWidth), test.ShouldBeTrue)
		test.That(t, PointInCorridor(r3.Vector{X: 1, Z: -0.5}, a, b, halfWidth), test.ShouldBeTrue)
	})

	t.Run("beyond endpoints uses the clamped projection", func(t *testing.T) {
		// projection clamps to B; distance to B is 0.3
		test.That(t, PointInCorridor(r3.Vector{X: 2.3}, a, b, halfWidth), test.ShouldBeTrue)
		// projection clamps to A; distance to A is 0.5
		test.That(t, PointInCorridor(r3.Vector{X: -0.5}, a, b, halfWidth), test.ShouldBeTrue)
		// lateral offset 0.4 alone would pass, but the clamped projection is B at distance ~0.566
		test.That(t, PointInCorridor(r3.Vector{X: 2.4, Y: 0.4}, a, b, halfWidth), test.ShouldBeFalse)
		test.That(t, PointInCorridor(r3.Vector{X: 2.6}, a, b, halfWidth), test.ShouldBeFalse)
	})

	t.Run("corridor method", func(t *testing.T) {
		c, err := NewCorridor(a, b, 1, r3.Vector{Y: 1})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, c.Contains(r3.Vector{X: 1}), test.ShouldBeTrue)
		test.That(t, c.Contains(r3.Vector{X: 1, Y: 1}), test.ShouldBeFalse)
	})
}

func TestSlopeAngle(t *testing.T) {
	up := r3.Vector{Y: 1}
	test.That(t, SlopeAngle(up, up), test.ShouldAlmostEqual, 0)
	test.That(t, SlopeAngle(r3.Vector{X: 1}, up), test.ShouldAlmostEqual, 90)
	test.That(t, SlopeAngle(r3.Vector{Y: -1}, up), test.ShouldAlmostEqual, 180)
	test.That(t, SlopeAngle(r3.Vector{X: 1, Y: 1}, up), test.ShouldAlmostEqual, 45)
	test.That(t, SlopeAngle(r3.Vector{X: 10, Y: 10}, r3.Vector{Y: 3}), test.ShouldAlmostEqual, 45)
	test.That(t, SlopeAngle(r3.Vector{}, up), test.ShouldEqual, 0.0)

	test.That(t, NormalizedSlope(r3.Vector{X: 1, Y: 1}, up, 45), test.ShouldAlmostEqual, 1)
	test.That(t, NormalizedSlope(r3.Vector{X: 1, Y: 1}, up, 90), test.ShouldAlmostEqual, 0.5)
	test.That(t, NormalizedSlope(r3.Vector{X: 1}, up, 45), test.ShouldEqual, 1.0)
}

package utils

import (
	"context"
	"math"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestClamp(t *testing.T) {
	test.That(t, Clamp01(-0.5), test.ShouldEqual, 0.0)
	test.That(t, Clamp01(0.25), test.ShouldEqual, 0.25)
	test.That(t, Clamp01(3), test.ShouldEqual, 1.0)
	test.That(t, Clamp01(math.NaN()), test.ShouldEqual, 0.0)
	test.That(t, ClampInt(-1, 0, 255), test.ShouldEqual, 0)
	test.That(t, ClampInt(300, 0, 255), test.ShouldEqual, 255)
	test.That(t, Lerp(2, 4, 0.5), test.ShouldEqual, 3.0)
	test.That(t, RadToDeg(DegToRad(45)), test.ShouldAlmostEqual, 45)
	test.That(t, Float64AlmostEqual(1, 1+1e-9, 1e-8), test.ShouldBeTrue)
}

func TestInsufficientDataError(t *testing.T) {
	err := NewInsufficientDataError("roi points", 9, 10)
	test.That(t, errors.Is(err, ErrInsufficientData), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "have 9, need at least 10")
}

func TestStoppableWorkers(t *testing.T) {
	var stopped atomic.Int32
	worker := func(ctx context.Context) {
		<-ctx.Done()
		stopped.Add(1)
	}
	sw := NewStoppableWorkers(context.Background(), worker, worker)
	sw.Stop()
	test.That(t, stopped.Load(), test.ShouldEqual, int32(2))
	test.That(t, sw.Context().Err(), test.ShouldNotBeNil)

	// no-op once stopped
	sw.AddWorkers(worker)
	sw.Stop()
	test.That(t, stopped.Load(), test.ShouldEqual, int32(2))
}

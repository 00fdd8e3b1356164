package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// CorridorEpsilon is the minimum distance between corridor endpoints.
const CorridorEpsilon = 1e-6

// ErrInvalidCorridor is returned when a corridor has coincident endpoints or a non-positive width.
var ErrInvalidCorridor = errors.New("invalid corridor")

// Corridor is the region of interest around the segment A→B: every point whose distance to its
// clamped projection onto the segment is at most Width/2. Up is the world "up" hint used to orient
// the corridor's local frame and to measure slope.
type Corridor struct {
	A     r3.Vector
	B     r3.Vector
	Width float64
	Up    r3.Vector
}

// NewCorridor returns a validated corridor.
func NewCorridor(a, b r3.Vector, width float64, up r3.Vector) (*Corridor, error) {
	c := &Corridor{A: a, B: b, Width: width, Up: up}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate ensures the corridor has a direction and a positive width.
func (c *Corridor) Validate() error {
	if math.IsNaN(c.Width) || c.Width <= 0 {
		return errors.Wrapf(ErrInvalidCorridor, "width must be positive, got %v", c.Width)
	}
	if c.B.Sub(c.A).Norm() <= CorridorEpsilon {
		return errors.Wrapf(ErrInvalidCorridor, "endpoints coincide at %v", c.A)
	}
	return nil
}

// HalfWidth returns Width/2.
func (c *Corridor) HalfWidth() float64 {
	return c.Width * 0.5
}

// Length returns |B−A|.
func (c *Corridor) Length() float64 {
	return c.B.Sub(c.A).Norm()
}

// Center returns the midpoint of A and B.
func (c *Corridor) Center() r3.Vector {
	return c.A.Add(c.B).Mul(0.5)
}

// Direction returns the unit vector from A to B.
func (c *Corridor) Direction() r3.Vector {
	return c.B.Sub(c.A).Normalize()
}

// Contains reports whether p lies inside the corridor.
func (c *Corridor) Contains(p r3.Vector) bool {
	return PointInCorridor(p, c.A, c.B, c.HalfWidth())
}

// DistanceLabel formats the A–B distance for display next to a measuring line.
func (c *Corridor) DistanceLabel() string {
	return fmt.Sprintf("%.2fm", c.Length())
}

func (c *Corridor) String() string {
	return fmt.Sprintf("corridor{A:%v B:%v width:%.3f}", c.A, c.B, c.Width)
}

// PointInCorridor projects p onto segment AB with the projection parameter clamped to [0, 1] and
// reports whether the squared distance from p to that projection is at most halfWidth².
// The boundary is closed.
func PointInCorridor(p, a, b r3.Vector, halfWidth float64) bool {
	proj := ClosestPointSegmentPoint(a, b, p)
	return p.Sub(proj).Norm2() <= halfWidth*halfWidth
}

package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// ParallelThreshold is the |cos| above which forward and the up hint are treated as parallel.
const ParallelThreshold = 0.99

// LocalFrame is an orthonormal right-handed basis aligned with a corridor. In local coordinates X
// runs along Side, Y along Up and Z along Forward.
type LocalFrame struct {
	Forward r3.Vector
	Up      r3.Vector
	Side    r3.Vector

	// Degenerate is set when the up hint was (nearly) parallel to forward and a substitute was used.
	Degenerate bool
}

// BuildLocalFrame builds the frame for the segment a→b. forward = normalize(b−a),
// side = normalize(up × forward) and up is recomputed as forward × side. When upHint is parallel
// to forward (|dot| > ParallelThreshold) or zero, fallback replaces it; if fallback is unusable
// too, the world axis least aligned with forward is used. The only failure is a→b having no
// direction.
func BuildLocalFrame(a, b, upHint, fallback r3.Vector) (*LocalFrame, error) {
	d := b.Sub(a)
	if d.Norm() <= CorridorEpsilon {
		return nil, errors.Wrap(ErrInvalidCorridor, "cannot build a frame for coincident endpoints")
	}
	forward := d.Normalize()

	up := upHint.Normalize()
	degenerate := false
	if !usableUp(forward, up) {
		degenerate = true
		up = fallback.Normalize()
		if !usableUp(forward, up) {
			up = leastAlignedAxis(forward)
		}
	}

	side := up.Cross(forward).Normalize()
	up = forward.Cross(side)
	return &LocalFrame{Forward: forward, Up: up, Side: side, Degenerate: degenerate}, nil
}

// FrameForCorridor builds the local frame of c using its up hint.
func FrameForCorridor(c *Corridor, fallback r3.Vector) (*LocalFrame, error) {
	return BuildLocalFrame(c.A, c.B, c.Up, fallback)
}

func usableUp(forward, up r3.Vector) bool {
	return up.Norm2() > floatEpsilon && math.Abs(forward.Dot(up)) <= ParallelThreshold
}

func leastAlignedAxis(v r3.Vector) r3.Vector {
	switch v.Abs().SmallestComponent() {
	case r3.XAxis:
		return r3.Vector{X: 1}
	case r3.YAxis:
		return r3.Vector{Y: 1}
	default:
		return r3.Vector{Z: 1}
	}
}

// ToLocal expresses world point p relative to origin in frame coordinates.
func (f *LocalFrame) ToLocal(p, origin r3.Vector) r3.Vector {
	d := p.Sub(origin)
	return r3.Vector{X: d.Dot(f.Side), Y: d.Dot(f.Up), Z: d.Dot(f.Forward)}
}

// ToWorld maps frame coordinates relative to origin back to a world point.
func (f *LocalFrame) ToWorld(local, origin r3.Vector) r3.Vector {
	return origin.Add(f.Side.Mul(local.X)).Add(f.Up.Mul(local.Y)).Add(f.Forward.Mul(local.Z))
}

// Orientation returns the rotation taking the world axes onto (Side, Up, Forward).
func (f *LocalFrame) Orientation() quat.Number {
	return QuatFromBasis(f.Side, f.Up, f.Forward)
}

// Pose returns the frame anchored at origin.
func (f *LocalFrame) Pose(origin r3.Vector) Pose {
	return NewPose(origin, f.Orientation())
}

// IsOrthonormal reports whether the basis is unit length and mutually perpendicular within eps.
func (f *LocalFrame) IsOrthonormal(eps float64) bool {
	for _, v := range []r3.Vector{f.Forward, f.Up, f.Side} {
		if math.Abs(v.Norm()-1) > eps {
			return false
		}
	}
	return math.Abs(f.Forward.Dot(f.Up)) <= eps &&
		math.Abs(f.Forward.Dot(f.Side)) <= eps &&
		math.Abs(f.Up.Dot(f.Side)) <= eps
}

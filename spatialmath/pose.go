// Package spatialmath defines the vector, pose and frame math shared by the scanning packages.
// Distances are in meters and angles in degrees unless a name says otherwise.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

const floatEpsilon = 1e-8

// Pose represents a rigid transform: a rotation about the origin followed by a translation.
type Pose interface {
	Point() r3.Vector
	Orientation() quat.Number
}

type basicPose struct {
	point       r3.Vector
	orientation quat.Number
}

// NewPose returns a pose at the given point with the given orientation. The orientation is
// normalized; a zero quaternion is treated as no rotation.
func NewPose(pt r3.Vector, orientation quat.Number) Pose {
	return &basicPose{point: pt, orientation: normalizeQuat(orientation)}
}

// NewPoseFromPoint returns a translation-only pose.
func NewPoseFromPoint(pt r3.Vector) Pose {
	return &basicPose{point: pt, orientation: quat.Number{Real: 1}}
}

// NewZeroPose returns the identity pose.
func NewZeroPose() Pose {
	return NewPoseFromPoint(r3.Vector{})
}

func (p *basicPose) Point() r3.Vector {
	return p.point
}

func (p *basicPose) Orientation() quat.Number {
	return p.orientation
}

func (p *basicPose) String() string {
	q := p.orientation
	return fmt.Sprintf("{X:%.3f Y:%.3f Z:%.3f | W:%.4f I:%.4f J:%.4f K:%.4f}",
		p.point.X, p.point.Y, p.point.Z, q.Real, q.Imag, q.Jmag, q.Kmag)
}

// Compose returns the pose that applies b and then a, i.e. b expressed in a's parent frame.
func Compose(a, b Pose) Pose {
	return &basicPose{
		point:       a.Point().Add(RotateVector(a.Orientation(), b.Point())),
		orientation: normalizeQuat(quat.Mul(a.Orientation(), b.Orientation())),
	}
}

// PoseInverse returns the pose that undoes p.
func PoseInverse(p Pose) Pose {
	inv := quat.Conj(p.Orientation())
	return &basicPose{
		point:       RotateVector(inv, p.Point()).Mul(-1),
		orientation: inv,
	}
}

// TransformPoint maps a point from the pose's local space into its parent space.
func TransformPoint(p Pose, pt r3.Vector) r3.Vector {
	return p.Point().Add(RotateVector(p.Orientation(), pt))
}

// TransformDirection maps a direction from the pose's local space into its parent space.
// Translation does not apply to directions.
func TransformDirection(p Pose, dir r3.Vector) r3.Vector {
	return RotateVector(p.Orientation(), dir)
}

// PoseAlmostEqual reports whether two poses differ by less than eps in translation and in every
// quaternion component (accounting for the q / -q double cover).
func PoseAlmostEqual(a, b Pose, eps float64) bool {
	if a.Point().Sub(b.Point()).Norm() > eps {
		return false
	}
	return QuaternionAlmostEqual(a.Orientation(), b.Orientation(), eps) ||
		QuaternionAlmostEqual(a.Orientation(), quat.Scale(-1, b.Orientation()), eps)
}

// QuaternionAlmostEqual is an equality test for all the float components of a quaternion.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	return math.Abs(a.Real-b.Real) <= tol &&
		math.Abs(a.Imag-b.Imag) <= tol &&
		math.Abs(a.Jmag-b.Jmag) <= tol &&
		math.Abs(a.Kmag-b.Kmag) <= tol
}

// RotateVector rotates v by the unit quaternion q.
func RotateVector(q quat.Number, v r3.Vector) r3.Vector {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vector{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// QuatFromAxisAngle returns the unit quaternion rotating by theta radians about axis.
func QuatFromAxisAngle(axis r3.Vector, theta float64) quat.Number {
	axis = axis.Normalize()
	s := math.Sin(theta / 2)
	return quat.Number{Real: math.Cos(theta / 2), Imag: axis.X * s, Jmag: axis.Y * s, Kmag: axis.Z * s}
}

// QuatFromBasis returns the rotation whose columns are the given right-handed orthonormal axes:
// x maps to xAxis, y to yAxis and z to zAxis.
func QuatFromBasis(xAxis, yAxis, zAxis r3.Vector) quat.Number {
	m00, m01, m02 := xAxis.X, yAxis.X, zAxis.X
	m10, m11, m12 := xAxis.Y, yAxis.Y, zAxis.Y
	m20, m21, m22 := xAxis.Z, yAxis.Z, zAxis.Z

	var q quat.Number
	switch trace := m00 + m11 + m22; {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = quat.Number{Real: 0.25 / s, Imag: (m21 - m12) * s, Jmag: (m02 - m20) * s, Kmag: (m10 - m01) * s}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = quat.Number{Real: (m21 - m12) / s, Imag: 0.25 * s, Jmag: (m01 + m10) / s, Kmag: (m02 + m20) / s}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = quat.Number{Real: (m02 - m20) / s, Imag: (m01 + m10) / s, Jmag: 0.25 * s, Kmag: (m12 + m21) / s}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = quat.Number{Real: (m10 - m01) / s, Imag: (m02 + m20) / s, Jmag: (m12 + m21) / s, Kmag: 0.25 * s}
	}
	return normalizeQuat(q)
}

func normalizeQuat(q quat.Number) quat.Number {
	norm := quat.Abs(q)
	if norm < floatEpsilon {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/norm, q)
}

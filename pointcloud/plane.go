package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/slopescan/utils"
)

// planeEpsilon is the eigenvalue below which the in-plane spread is treated as missing.
const planeEpsilon = 1e-12

// Plane is a least-squares plane through a set of points.
type Plane struct {
	center r3.Vector
	normal r3.Vector
	rms    float64
}

// NewPlane returns the plane through center with the given normal.
func NewPlane(center, normal r3.Vector) *Plane {
	return &Plane{center: center, normal: normal.Normalize()}
}

// Center returns the centroid of the fitted points.
func (p *Plane) Center() r3.Vector {
	return p.center
}

// Normal returns the unit plane normal.
func (p *Plane) Normal() r3.Vector {
	return p.normal
}

// Offset returns d in the equation n·x + d = 0.
func (p *Plane) Offset() float64 {
	return -p.normal.Dot(p.center)
}

// Equation returns the plane as {a, b, c, d} with ax + by + cz + d = 0.
func (p *Plane) Equation() [4]float64 {
	return [4]float64{p.normal.X, p.normal.Y, p.normal.Z, p.Offset()}
}

// Distance returns the signed distance from pt to the plane.
func (p *Plane) Distance(pt r3.Vector) float64 {
	return p.normal.Dot(pt) + p.Offset()
}

// RMS returns the root mean square distance of the fitted points from the plane.
func (p *Plane) RMS() float64 {
	return p.rms
}

// OrientTowards flips the normal if needed so it points into the same half space as up.
func (p *Plane) OrientTowards(up r3.Vector) {
	if p.normal.Dot(up) < 0 {
		p.normal = p.normal.Mul(-1)
	}
}

// TiltDeg returns the angle between the plane normal and up in degrees, ignoring orientation.
func (p *Plane) TiltDeg(up r3.Vector) float64 {
	angle := p.normal.Angle(up).Degrees()
	if angle > 90 {
		angle = 180 - angle
	}
	return angle
}

// FitPlane fits a plane to pts by taking the eigenvector of the covariance matrix with the
// smallest eigenvalue as the normal.
func FitPlane(pts []r3.Vector) (*Plane, error) {
	if len(pts) < 3 {
		return nil, utils.NewInsufficientDataError("plane fit points", len(pts), 3)
	}

	var center r3.Vector
	for _, p := range pts {
		center = center.Add(p)
	}
	center = center.Mul(1 / float64(len(pts)))

	var xx, xy, xz, yy, yz, zz float64
	for _, p := range pts {
		d := p.Sub(center)
		xx += d.X * d.X
		xy += d.X * d.Y
		xz += d.X * d.Z
		yy += d.Y * d.Y
		yz += d.Y * d.Z
		zz += d.Z * d.Z
	}
	n := float64(len(pts))
	cov := mat.NewSymDense(3, []float64{
		xx / n, xy / n, xz / n,
		xy / n, yy / n, yz / n,
		xz / n, yz / n, zz / n,
	})

	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return nil, errors.New("plane fit eigen decomposition failed")
	}
	// ascending order
	values := eig.Values(nil)
	if values[1] < planeEpsilon {
		return nil, errors.New("plane fit points are collinear")
	}
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	normal := r3.Vector{X: vectors.At(0, 0), Y: vectors.At(1, 0), Z: vectors.At(2, 0)}.Normalize()
	return &Plane{center: center, normal: normal, rms: math.Sqrt(math.Max(values[0], 0))}, nil
}

// Package heightfield rasterizes the surface under a corridor into a square grid of heights
// relative to the corridor's local frame.
package heightfield

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/slopescan/fragment"
	"go.viam.com/slopescan/pointcloud"
	"go.viam.com/slopescan/spatialmath"
)

// Region is the rectangular region of interest: a box centered on the corridor midpoint, aligned
// with the local frame, extending HalfWidth sideways and Length/2 along the corridor. Height is
// unbounded.
type Region struct {
	Frame     *spatialmath.LocalFrame
	Center    r3.Vector
	HalfWidth float64
	Length    float64
}

// NewRegion returns the region for corridor c with the given lateral half width.
func NewRegion(c *spatialmath.Corridor, frame *spatialmath.LocalFrame, halfWidth float64) (Region, error) {
	if err := c.Validate(); err != nil {
		return Region{}, err
	}
	if frame == nil {
		return Region{}, errors.New("region needs a local frame")
	}
	if halfWidth <= 0 {
		return Region{}, errors.Errorf("region half width must be positive, got %v", halfWidth)
	}
	return Region{Frame: frame, Center: c.Center(), HalfWidth: halfWidth, Length: c.Length()}, nil
}

// Local maps a world point into the region's frame: X lateral, Y height, Z along the corridor.
func (r Region) Local(p r3.Vector) r3.Vector {
	return r.Frame.ToLocal(p, r.Center)
}

// ContainsLocal reports whether a local point lies inside the box. Both bounds are closed.
func (r Region) ContainsLocal(l r3.Vector) bool {
	half := r.Length * 0.5
	return l.X >= -r.HalfWidth && l.X <= r.HalfWidth && l.Z >= -half && l.Z <= half
}

// Anchor returns the pose of the region's center, oriented by the local frame.
func (r Region) Anchor() spatialmath.Pose {
	return r.Frame.Pose(r.Center)
}

// Width returns the full lateral extent.
func (r Region) Width() float64 {
	return 2 * r.HalfWidth
}

// CollectROI gathers, in local coordinates, every vertex of frags that falls inside the region.
// Points keep fragment order and then vertex buffer order.
func CollectROI(frags []*fragment.MeshFragment, r Region) *pointcloud.PointCloud {
	cloud := pointcloud.New()
	for _, frag := range frags {
		for _, v := range frag.WorldVertices() {
			if l := r.Local(v); r.ContainsLocal(l) {
				cloud.Append(l)
			}
		}
	}
	return cloud
}

func (r Region) lengthLabel() string {
	return fmt.Sprintf("%.2fm", r.Length)
}

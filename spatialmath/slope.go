package spatialmath

import (
	"github.com/golang/geo/r3"

	"go.viam.com/slopescan/utils"
)

// SlopeAngle returns the angle in degrees, in [0, 180], between normal and referenceUp.
// A zero vector on either side yields 0.
func SlopeAngle(normal, referenceUp r3.Vector) float64 {
	return normal.Angle(referenceUp).Degrees()
}

// NormalizedSlope maps the slope angle onto [0, 1] by dividing by maxSlopeDeg and clamping.
func NormalizedSlope(normal, referenceUp r3.Vector, maxSlopeDeg float64) float64 {
	return utils.Clamp01(SlopeAngle(normal, referenceUp) / maxSlopeDeg)
}

package heightfield

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/slopescan/fragment"
	"go.viam.com/slopescan/logging"
	"go.viam.com/slopescan/pointcloud"
	"go.viam.com/slopescan/utils"
)

// Config controls baking.
type Config struct {
	// Resolution is the number of cells per side.
	Resolution int
	// MinPoints is the fewest ROI points a bake accepts.
	MinPoints int
	// MaxAbsFloor bounds the normalization divisor away from zero.
	MaxAbsFloor float64
}

// DefaultConfig returns a 256×256 grid needing 10 points with a 0.1 mm floor.
func DefaultConfig() Config {
	return Config{Resolution: 256, MinPoints: 10, MaxAbsFloor: 1e-4}
}

// Validate ensures the config is usable.
func (c Config) Validate() error {
	var errs error
	if c.Resolution < 2 {
		errs = multierr.Append(errs, errors.Errorf("resolution must be at least 2, got %d", c.Resolution))
	}
	if c.MinPoints < 1 {
		errs = multierr.Append(errs, errors.Errorf("min points must be at least 1, got %d", c.MinPoints))
	}
	if !(c.MaxAbsFloor > 0) {
		errs = multierr.Append(errs, errors.Errorf("max abs floor must be positive, got %v", c.MaxAbsFloor))
	}
	return errs
}

// Baker turns ROI points into height fields.
type Baker struct {
	cfg    Config
	logger logging.Logger
}

// NewBaker returns a Baker for cfg.
func NewBaker(cfg Config, logger logging.Logger) (*Baker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Baker{cfg: cfg, logger: logger}, nil
}

// Config returns the baker's configuration.
func (b *Baker) Config() Config {
	return b.cfg
}

// Bake collects the ROI from frags and bakes it.
func (b *Baker) Bake(frags []*fragment.MeshFragment, r Region) (*HeightField, error) {
	cloud := CollectROI(frags, r)
	b.logger.Infow("collected roi", "points", cloud.Size(), "fragments", len(frags),
		"length", r.Length, "half_width", r.HalfWidth)
	return b.BakePoints(cloud, r)
}

// BakePoints bakes points already expressed in the region's local frame. Points are written to
// the grid in cloud order; a later point landing in an occupied cell replaces the earlier one.
func (b *Baker) BakePoints(cloud *pointcloud.PointCloud, r Region) (*HeightField, error) {
	pts := cloud.Points()
	if len(pts) < b.cfg.MinPoints {
		return nil, utils.NewInsufficientDataError("roi points", len(pts), b.cfg.MinPoints)
	}

	heights := make([]float64, len(pts))
	for i, p := range pts {
		heights[i] = p.Y
	}
	st := computeStats(heights)

	n := b.cfg.Resolution
	hf := &HeightField{
		Size:       n,
		Cells:      make([]Cell, n*n),
		Mean:       st.Mean,
		PointCount: len(pts),
		Region:     r,
		Stats:      st,
	}

	for _, p := range pts {
		col, row := hf.cellFor(p)
		hf.Cells[row*n+col] = Cell{Present: true, Delta: p.Y - st.Mean}
	}

	maxAbs := 0.
	for _, c := range hf.Cells {
		if c.Present {
			maxAbs = math.Max(maxAbs, math.Abs(c.Delta))
		}
	}
	hf.MaxAbs = math.Max(maxAbs, b.cfg.MaxAbsFloor)
	for i := range hf.Cells {
		if hf.Cells[i].Present {
			hf.Cells[i].Value = utils.Clamp01(hf.Cells[i].Delta/(2*hf.MaxAbs) + 0.5)
		}
	}

	b.fitGround(hf, pts)
	b.logger.Debugw("baked height field", "occupied", hf.Occupied(), "max_abs", hf.MaxAbs,
		"spread", st.Spread(), "tilt_deg", hf.TiltDeg)
	return hf, nil
}

func (b *Baker) fitGround(hf *HeightField, pts []r3.Vector) {
	localUp := r3.Vector{Y: 1}
	plane, err := pointcloud.FitPlane(pts)
	if err != nil {
		b.logger.Debugw("ground plane fit failed, using frame up", "error", err)
		hf.GroundNormal = hf.Region.Frame.Up
		return
	}
	plane.OrientTowards(localUp)
	hf.GroundNormal = hf.Region.Frame.ToWorld(plane.Normal(), r3.Vector{})
	hf.TiltDeg = plane.TiltDeg(localUp)
}

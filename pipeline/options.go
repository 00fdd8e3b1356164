package pipeline

import (
	"strings"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/slopescan/fragment"
	"go.viam.com/slopescan/heightfield"
	"go.viam.com/slopescan/rimage"
)

// Mode selects what a pass produces.
type Mode int

const (
	// ModeCorridor publishes slope-colored corridor geometry per fragment.
	ModeCorridor Mode = iota
	// ModeHeightField publishes a single baked height field.
	ModeHeightField
	// ModeBoth publishes both.
	ModeBoth
)

var modeNames = map[Mode]string{
	ModeCorridor:    "corridor",
	ModeHeightField: "heightfield",
	ModeBoth:        "both",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(name, s) {
			return m, nil
		}
	}
	return 0, errors.Errorf("unknown pipeline mode %q", s)
}

func (m Mode) corridor() bool {
	return m == ModeCorridor || m == ModeBoth
}

func (m Mode) heightField() bool {
	return m == ModeHeightField || m == ModeBoth
}

// Options configure an Orchestrator.
type Options struct {
	Mode Mode

	CorridorWidth float64
	ROIHalfWidth  float64
	MaxSlopeDeg   float64
	Class         fragment.Classification
	WorldUp       r3.Vector

	// A pass finalizes once MinFragments are stored or ScanTimeout elapses, whichever is first.
	ScanTimeout  time.Duration
	MinFragments int
	// RequireMinFragments fails a pass that times out below MinFragments.
	RequireMinFragments bool
	PollInterval        time.Duration

	HeightField    heightfield.Config
	RampResolution int
	SlopeGradient  *rimage.Gradient
	HeightGradient *rimage.Gradient
	FilterWorkers  int
}

// DefaultOptions returns the defaults used by the scanning app.
func DefaultOptions() Options {
	return Options{
		Mode:           ModeCorridor,
		CorridorWidth:  1.5,
		ROIHalfWidth:   0.25,
		MaxSlopeDeg:    45,
		Class:          fragment.Floor,
		WorldUp:        r3.Vector{Y: 1},
		ScanTimeout:    3 * time.Second,
		MinFragments:   30,
		PollInterval:   50 * time.Millisecond,
		HeightField:    heightfield.DefaultConfig(),
		RampResolution: 256,
		SlopeGradient:  rimage.DefaultSlopeGradient(),
		HeightGradient: rimage.DefaultHeightGradient(),
	}
}

// Validate ensures the options are usable.
func (o Options) Validate() error {
	var errs error
	if _, ok := modeNames[o.Mode]; !ok {
		errs = multierr.Append(errs, errors.Errorf("unknown mode %d", o.Mode))
	}
	if !(o.CorridorWidth > 0) {
		errs = multierr.Append(errs, errors.Errorf("corridor width must be positive, got %v", o.CorridorWidth))
	}
	if !(o.ROIHalfWidth > 0) {
		errs = multierr.Append(errs, errors.Errorf("roi half width must be positive, got %v", o.ROIHalfWidth))
	}
	if !(o.MaxSlopeDeg > 0) {
		errs = multierr.Append(errs, errors.Errorf("max slope must be positive, got %v", o.MaxSlopeDeg))
	}
	if o.WorldUp.Norm2() == 0 {
		errs = multierr.Append(errs, errors.New("world up must be non-zero"))
	}
	if o.ScanTimeout <= 0 {
		errs = multierr.Append(errs, errors.Errorf("scan timeout must be positive, got %v", o.ScanTimeout))
	}
	if o.MinFragments < 0 {
		errs = multierr.Append(errs, errors.Errorf("min fragments must not be negative, got %d", o.MinFragments))
	}
	if o.PollInterval <= 0 {
		errs = multierr.Append(errs, errors.Errorf("poll interval must be positive, got %v", o.PollInterval))
	}
	if o.RampResolution < 2 {
		errs = multierr.Append(errs, errors.Errorf("ramp resolution must be at least 2, got %d", o.RampResolution))
	}
	return multierr.Append(errs, o.HeightField.Validate())
}

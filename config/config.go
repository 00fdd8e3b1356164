// Package config defines the JSON configuration of a scanning pipeline and converts it into
// pipeline options.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/slopescan/fragment"
	"go.viam.com/slopescan/heightfield"
	"go.viam.com/slopescan/pipeline"
	"go.viam.com/slopescan/rimage"
)

// Config is the user-facing pipeline configuration. Distances are in meters, angles in degrees
// and durations in milliseconds.
type Config struct {
	Mode                   string    `json:"mode"`
	CorridorWidthM         float64   `json:"corridor_width_m"`
	ROIHalfWidthM          float64   `json:"roi_half_width_m"`
	MaxSlopeDeg            float64   `json:"max_slope_deg"`
	RequiredClassification string    `json:"required_classification"`
	WorldUp                []float64 `json:"world_up"`
	ScanTimeoutMs          int       `json:"scan_timeout_ms"`
	MinFragments           int       `json:"min_fragments"`
	RequireMinFragments    bool      `json:"require_min_fragments"`
	PollIntervalMs         int       `json:"poll_interval_ms"`
	HeightFieldResolution  int       `json:"heightfield_resolution"`
	HeightFieldMinPoints   int       `json:"heightfield_min_points"`
	MaxAbsFloorM           float64   `json:"max_abs_floor_m"`
	RampResolution         int       `json:"ramp_resolution"`
	SlopeGradient          []string  `json:"slope_gradient,omitempty"`
	HeightGradient         []string  `json:"height_gradient,omitempty"`
	FilterWorkers          int       `json:"filter_workers,omitempty"`
}

// Default returns the configuration the scanning app ships with.
func Default() *Config {
	hf := heightfield.DefaultConfig()
	return &Config{
		Mode:                   pipeline.ModeCorridor.String(),
		CorridorWidthM:         1.5,
		ROIHalfWidthM:          0.25,
		MaxSlopeDeg:            45,
		RequiredClassification: fragment.Floor.String(),
		WorldUp:                []float64{0, 1, 0},
		ScanTimeoutMs:          3000,
		MinFragments:           30,
		PollIntervalMs:         50,
		HeightFieldResolution:  hf.Resolution,
		HeightFieldMinPoints:   hf.MinPoints,
		MaxAbsFloorM:           hf.MaxAbsFloor,
		RampResolution:         256,
	}
}

// FromAttributes decodes an attribute map over the defaults.
func FromAttributes(attributes map[string]interface{}) (*Config, error) {
	conf := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           conf,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "decoding pipeline attributes")
	}
	return conf, nil
}

// FromJSON decodes JSON over the defaults.
func FromJSON(r io.Reader) (*Config, error) {
	conf := Default()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(conf); err != nil {
		return nil, errors.Wrap(err, "decoding pipeline config")
	}
	return conf, nil
}

// Validate reports every problem with the config, prefixed by path.
func (c *Config) Validate(path string) error {
	var errs error
	fail := func(err error) {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path, err))
	}

	if c.Mode == "" {
		errs = multierr.Append(errs, goutils.NewConfigValidationFieldRequiredError(path, "mode"))
	} else if _, err := pipeline.ParseMode(c.Mode); err != nil {
		fail(err)
	}
	if c.RequiredClassification == "" {
		errs = multierr.Append(errs, goutils.NewConfigValidationFieldRequiredError(path, "required_classification"))
	} else if _, err := fragment.ClassificationFromString(c.RequiredClassification); err != nil {
		fail(err)
	}
	if c.CorridorWidthM <= 0 {
		fail(errors.Errorf("corridor_width_m must be positive, got %v", c.CorridorWidthM))
	}
	if c.ROIHalfWidthM <= 0 {
		fail(errors.Errorf("roi_half_width_m must be positive, got %v", c.ROIHalfWidthM))
	}
	if c.MaxSlopeDeg <= 0 || c.MaxSlopeDeg > 180 {
		fail(errors.Errorf("max_slope_deg must be in (0, 180], got %v", c.MaxSlopeDeg))
	}
	if len(c.WorldUp) != 3 {
		fail(errors.Errorf("world_up must have 3 components, got %d", len(c.WorldUp)))
	} else if c.WorldUpVector().Norm2() == 0 {
		fail(errors.New("world_up must be non-zero"))
	}
	if c.ScanTimeoutMs <= 0 {
		fail(errors.Errorf("scan_timeout_ms must be positive, got %d", c.ScanTimeoutMs))
	}
	if c.MinFragments < 0 {
		fail(errors.Errorf("min_fragments must not be negative, got %d", c.MinFragments))
	}
	if c.PollIntervalMs <= 0 {
		fail(errors.Errorf("poll_interval_ms must be positive, got %d", c.PollIntervalMs))
	}
	if c.RampResolution < 2 {
		fail(errors.Errorf("ramp_resolution must be at least 2, got %d", c.RampResolution))
	}
	if c.FilterWorkers < 0 {
		fail(errors.Errorf("filter_workers must not be negative, got %d", c.FilterWorkers))
	}
	if err := c.HeightFieldConfig().Validate(); err != nil {
		fail(err)
	}
	if _, _, err := c.Gradients(); err != nil {
		fail(err)
	}
	return errs
}

// ScanTimeout returns the scan wait deadline.
func (c *Config) ScanTimeout() time.Duration {
	return time.Duration(c.ScanTimeoutMs) * time.Millisecond
}

// PollInterval returns the scan poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// WorldUpVector returns world_up as a vector, or the zero vector if it is malformed.
func (c *Config) WorldUpVector() r3.Vector {
	if len(c.WorldUp) != 3 {
		return r3.Vector{}
	}
	return r3.Vector{X: c.WorldUp[0], Y: c.WorldUp[1], Z: c.WorldUp[2]}
}

// Classification returns the label corridor triangles must carry.
func (c *Config) Classification() (fragment.Classification, error) {
	return fragment.ClassificationFromString(c.RequiredClassification)
}

// HeightFieldConfig returns the baking settings.
func (c *Config) HeightFieldConfig() heightfield.Config {
	return heightfield.Config{
		Resolution:  c.HeightFieldResolution,
		MinPoints:   c.HeightFieldMinPoints,
		MaxAbsFloor: c.MaxAbsFloorM,
	}
}

// Gradients returns the slope and height gradients, falling back to the defaults when unset.
func (c *Config) Gradients() (slope, height *rimage.Gradient, err error) {
	slope, err = parseGradient("slope_gradient", c.SlopeGradient, rimage.DefaultSlopeGradient)
	if err != nil {
		return nil, nil, err
	}
	height, err = parseGradient("height_gradient", c.HeightGradient, rimage.DefaultHeightGradient)
	if err != nil {
		return nil, nil, err
	}
	return slope, height, nil
}

func parseGradient(field string, stops []string, fallback func() *rimage.Gradient) (*rimage.Gradient, error) {
	if len(stops) == 0 {
		return fallback(), nil
	}
	g, err := rimage.ParseGradient(stops)
	if err != nil {
		return nil, errors.Wrap(err, field)
	}
	return g, nil
}

// Options validates the config and converts it into pipeline options.
func (c *Config) Options() (pipeline.Options, error) {
	if err := c.Validate("pipeline"); err != nil {
		return pipeline.Options{}, err
	}
	mode, err := pipeline.ParseMode(c.Mode)
	if err != nil {
		return pipeline.Options{}, err
	}
	class, err := c.Classification()
	if err != nil {
		return pipeline.Options{}, err
	}
	slope, height, err := c.Gradients()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Mode:                mode,
		CorridorWidth:       c.CorridorWidthM,
		ROIHalfWidth:        c.ROIHalfWidthM,
		MaxSlopeDeg:         c.MaxSlopeDeg,
		Class:               class,
		WorldUp:             c.WorldUpVector(),
		ScanTimeout:         c.ScanTimeout(),
		MinFragments:        c.MinFragments,
		RequireMinFragments: c.RequireMinFragments,
		PollInterval:        c.PollInterval(),
		HeightField:         c.HeightFieldConfig(),
		RampResolution:      c.RampResolution,
		SlopeGradient:       slope,
		HeightGradient:      height,
		FilterWorkers:       c.FilterWorkers,
	}, nil
}

func (c *Config) String() string {
	return fmt.Sprintf("pipeline{mode:%s width:%.2fm roi:%.2fm slope:%.0fdeg}",
		c.Mode, c.CorridorWidthM, c.ROIHalfWidthM, c.MaxSlopeDeg)
}

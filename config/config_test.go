package config

import (
	"strings"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/slopescan/fragment"
	"go.viam.com/slopescan/pipeline"
)

func TestDefault(t *testing.T) {
	conf := Default()
	test.That(t, conf.Validate("pipeline"), test.ShouldBeNil)
	test.That(t, conf.ScanTimeout(), test.ShouldEqual, 3*time.Second)
	test.That(t, conf.WorldUpVector(), test.ShouldResemble, r3.Vector{Y: 1})

	opts, err := conf.Options()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, opts.Mode, test.ShouldEqual, pipeline.ModeCorridor)
	test.That(t, opts.Class, test.ShouldEqual, fragment.Floor)
	test.That(t, opts.CorridorWidth, test.ShouldEqual, 1.5)
	test.That(t, opts.ROIHalfWidth, test.ShouldEqual, 0.25)
	test.That(t, opts.MinFragments, test.ShouldEqual, 30)
	test.That(t, opts.HeightField.Resolution, test.ShouldEqual, 256)
	test.That(t, opts.HeightField.MinPoints, test.ShouldEqual, 10)
	test.That(t, opts.SlopeGradient, test.ShouldNotBeNil)
	test.That(t, opts.Validate(), test.ShouldBeNil)
}

func TestFromAttributes(t *testing.T) {
	conf, err := FromAttributes(map[string]interface{}{
		"mode":             "both",
		"corridor_width_m": "2",
		"min_fragments":    12,
		"world_up":         []interface{}{0, 0, 1},
		"slope_gradient":   []string{"0:#00ff00", "1:#ff0000"},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf.CorridorWidthM, test.ShouldEqual, 2.0)
	test.That(t, conf.MaxSlopeDeg, test.ShouldEqual, 45.0)

	opts, err := conf.Options()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, opts.Mode, test.ShouldEqual, pipeline.ModeBoth)
	test.That(t, opts.MinFragments, test.ShouldEqual, 12)
	test.That(t, opts.WorldUp, test.ShouldResemble, r3.Vector{Z: 1})
	test.That(t, opts.SlopeGradient.Evaluate(0).G, test.ShouldEqual, uint8(255))

	_, err = FromAttributes(map[string]interface{}{"corridor_width": 2})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFromJSON(t *testing.T) {
	conf, err := FromJSON(strings.NewReader(`{"mode": "heightfield", "heightfield_resolution": 64, "scan_timeout_ms": 500}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf.Mode, test.ShouldEqual, "heightfield")
	test.That(t, conf.HeightFieldConfig().Resolution, test.ShouldEqual, 64)
	test.That(t, conf.ScanTimeout(), test.ShouldEqual, 500*time.Millisecond)
	test.That(t, conf.RampResolution, test.ShouldEqual, 256)

	_, err = FromJSON(strings.NewReader(`{"unknown": 1}`))
	test.That(t, err, test.ShouldNotBeNil)
	_, err = FromJSON(strings.NewReader(`{`))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestValidate(t *testing.T) {
	conf := Default()
	conf.Mode = ""
	conf.RequiredClassification = "lawn"
	conf.CorridorWidthM = -1
	conf.WorldUp = []float64{0, 0}
	conf.HeightFieldResolution = 1
	conf.HeightGradient = []string{"0.5"}

	err := conf.Validate("pipeline")
	test.That(t, err, test.ShouldNotBeNil)
	msg := err.Error()
	for _, want := range []string{"mode", "lawn", "corridor_width_m", "world_up", "resolution", "height_gradient"} {
		test.That(t, msg, test.ShouldContainSubstring, want)
	}
	test.That(t, msg, test.ShouldContainSubstring, "pipeline")

	_, err = conf.Options()
	test.That(t, err, test.ShouldNotBeNil)

	conf = Default()
	conf.WorldUp = []float64{0, 0, 0}
	test.That(t, conf.Validate("p"), test.ShouldNotBeNil)
	test.That(t, conf.String(), test.ShouldContainSubstring, "corridor")
}

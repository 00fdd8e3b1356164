package rimage

import (
	"image"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/slopescan/utils"
)

// GradientStop is one control point of a Gradient.
type GradientStop struct {
	Position float64
	Color    color.NRGBA
}

// Gradient is a piecewise-linear color ramp over [0, 1]. Stops are kept sorted by position; values
// before the first stop take its color and values after the last stop take the last color.
type Gradient struct {
	stops []GradientStop
}

// NewGradient returns a gradient over the given stops. At least one stop is required.
func NewGradient(stops ...GradientStop) (*Gradient, error) {
	if len(stops) == 0 {
		return nil, errors.New("gradient needs at least one stop")
	}
	sorted := append([]GradientStop(nil), stops...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	return &Gradient{stops: sorted}, nil
}

// ParseGradient builds a gradient from "position:#color" strings, e.g. "0.5:#ffcc00".
func ParseGradient(entries []string) (*Gradient, error) {
	stops := make([]GradientStop, 0, len(entries))
	for _, entry := range entries {
		pos, hex, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, errors.Errorf("gradient stop %q is not of the form position:#color", entry)
		}
		p, err := strconv.ParseFloat(strings.TrimSpace(pos), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "bad position in gradient stop %q", entry)
		}
		c, err := ParseColor(hex)
		if err != nil {
			return nil, err
		}
		stops = append(stops, GradientStop{Position: p, Color: c})
	}
	return NewGradient(stops...)
}

// DefaultSlopeGradient runs green (flat) through yellow to red (steep).
func DefaultSlopeGradient() *Gradient {
	return &Gradient{stops: []GradientStop{
		{0, color.NRGBA{R: 0, G: 200, B: 70, A: 255}},
		{0.5, color.NRGBA{R: 255, G: 220, B: 0, A: 255}},
		{1, color.NRGBA{R: 220, G: 20, B: 20, A: 255}},
	}}
}

// DefaultHeightGradient runs blue (low) through cyan, green and yellow to red (high).
func DefaultHeightGradient() *Gradient {
	return &Gradient{stops: []GradientStop{
		{0, color.NRGBA{R: 0, G: 0, B: 255, A: 255}},
		{0.25, color.NRGBA{R: 0, G: 255, B: 255, A: 255}},
		{0.5, color.NRGBA{R: 0, G: 255, B: 0, A: 255}},
		{0.75, color.NRGBA{R: 255, G: 255, B: 0, A: 255}},
		{1, color.NRGBA{R: 255, G: 0, B: 0, A: 255}},
	}}
}

// Stops returns a copy of the sorted stops.
func (g *Gradient) Stops() []GradientStop {
	return append([]GradientStop(nil), g.stops...)
}

// Evaluate clamps t to [0, 1] and interpolates between the two stops bracketing it.
func (g *Gradient) Evaluate(t float64) color.NRGBA {
	t = utils.Clamp01(t)
	first, last := g.stops[0], g.stops[len(g.stops)-1]
	if t <= first.Position {
		return first.Color
	}
	if t >= last.Position {
		return last.Color
	}

	// first stop strictly past t; t > first.Position guarantees i >= 1
	i := sort.Search(len(g.stops), func(i int) bool { return g.stops[i].Position > t })
	lo, hi := g.stops[i-1], g.stops[i]
	span := hi.Position - lo.Position
	if span <= 0 {
		return hi.Color
	}
	return blendNRGBA(lo.Color, hi.Color, (t-lo.Position)/span)
}

// Lookup samples the gradient at resolution evenly spaced points over [0, 1].
func (g *Gradient) Lookup(resolution int) *RampLookup {
	if resolution < 1 {
		resolution = 1
	}
	colors := make([]color.NRGBA, resolution)
	for i := range colors {
		t := 0.
		if resolution > 1 {
			t = float64(i) / float64(resolution-1)
		}
		colors[i] = g.Evaluate(t)
	}
	return &RampLookup{colors: colors}
}

// RampLookup is a gradient precomputed into a fixed-size table.
type RampLookup struct {
	colors []color.NRGBA
}

// Len returns the table size.
func (l *RampLookup) Len() int {
	return len(l.colors)
}

// Colors returns the table.
func (l *RampLookup) Colors() []color.NRGBA {
	return l.colors
}

// At returns the entry nearest t, with t clamped to [0, 1].
func (l *RampLookup) At(t float64) color.NRGBA {
	idx := int(math.Round(utils.Clamp01(t) * float64(len(l.colors)-1)))
	return l.colors[idx]
}

// Image renders the table as a Len()×1 strip, the layout shaders sample ramps from.
func (l *RampLookup) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, len(l.colors), 1))
	for x, c := range l.colors {
		img.SetNRGBA(x, 0, c)
	}
	return img
}

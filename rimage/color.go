// Package rimage holds the color ramps and image helpers used to encode slope and height
// values for display.
package rimage

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// White is the color used when no gradient is configured.
var White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// Transparent marks image cells with no data.
var Transparent = color.NRGBA{}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	alpha := uint8(255)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, errors.Wrapf(err, "bad alpha in color %q", s)
		}
		alpha = uint8(a)
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, errors.Wrapf(err, "bad color %q", s)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// Hex formats c as "#rrggbbaa".
func Hex(c color.NRGBA) string {
	return toColorful(c).Hex() + strconv.FormatUint(uint64(c.A)|0x100, 16)[1:]
}

func toColorful(c color.NRGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// blendNRGBA interpolates linearly in RGB space, alpha included.
func blendNRGBA(c1, c2 color.NRGBA, t float64) color.NRGBA {
	r, g, b := toColorful(c1).BlendRgb(toColorful(c2), t).Clamped().RGB255()
	a := float64(c1.A) + (float64(c2.A)-float64(c1.A))*t
	return color.NRGBA{R: r, G: g, B: b, A: uint8(a + 0.5)}
}

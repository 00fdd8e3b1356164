package rimage

import (
	"image/color"
	"testing"

	"go.viam.com/test"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func TestGradientEvaluate(t *testing.T) {
	_, err := NewGradient()
	test.That(t, err, test.ShouldNotBeNil)

	g, err := NewGradient(GradientStop{1, blue}, GradientStop{0, red})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.Stops()[0].Color, test.ShouldResemble, red)

	test.That(t, g.Evaluate(0), test.ShouldResemble, red)
	test.That(t, g.Evaluate(1), test.ShouldResemble, blue)
	test.That(t, g.Evaluate(-3), test.ShouldResemble, red)
	test.That(t, g.Evaluate(7), test.ShouldResemble, blue)

	mid := g.Evaluate(0.5)
	test.That(t, mid.R, test.ShouldBeBetween, 126, 129)
	test.That(t, mid.B, test.ShouldBeBetween, 126, 129)
	test.That(t, mid.G, test.ShouldEqual, uint8(0))
	test.That(t, mid.A, test.ShouldEqual, uint8(255))

	t.Run("single stop", func(t *testing.T) {
		g, err := NewGradient(GradientStop{0.3, red})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, g.Evaluate(0), test.ShouldResemble, red)
		test.That(t, g.Evaluate(1), test.ShouldResemble, red)
	})

	t.Run("alpha", func(t *testing.T) {
		g, err := NewGradient(GradientStop{0, color.NRGBA{A: 0}}, GradientStop{1, color.NRGBA{A: 200}})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, g.Evaluate(0.5).A, test.ShouldEqual, uint8(100))
	})
}

func TestParseGradient(t *testing.T) {
	g, err := ParseGradient([]string{"0:#ff0000", "1:#0000ff80"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.Evaluate(0), test.ShouldResemble, red)
	test.That(t, g.Evaluate(1), test.ShouldResemble, color.NRGBA{B: 255, A: 128})

	_, err = ParseGradient([]string{"#ff0000"})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = ParseGradient([]string{"x:#ff0000"})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = ParseGradient([]string{"0:notacolor"})
	test.That(t, err, test.ShouldNotBeNil)

	c, err := ParseColor("#00ff00")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, Hex(c), test.ShouldEqual, "#00ff00ff")
}

func TestRampLookup(t *testing.T) {
	g, err := NewGradient(GradientStop{0, red}, GradientStop{1, blue})
	test.That(t, err, test.ShouldBeNil)

	lookup := g.Lookup(256)
	test.That(t, lookup.Len(), test.ShouldEqual, 256)
	test.That(t, lookup.At(0), test.ShouldResemble, red)
	test.That(t, lookup.At(1), test.ShouldResemble, blue)
	test.That(t, lookup.At(2), test.ShouldResemble, blue)
	test.That(t, lookup.Colors()[255], test.ShouldResemble, blue)

	img := lookup.Image()
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 256)
	test.That(t, img.Bounds().Dy(), test.ShouldEqual, 1)
	test.That(t, img.NRGBAAt(0, 0), test.ShouldResemble, red)

	test.That(t, g.Lookup(0).Len(), test.ShouldEqual, 1)
	test.That(t, g.Lookup(1).At(0.9), test.ShouldResemble, red)

	slope := DefaultSlopeGradient().Lookup(3)
	test.That(t, slope.At(0).G, test.ShouldBeGreaterThan, slope.At(0).R)
	test.That(t, slope.At(1).R, test.ShouldBeGreaterThan, slope.At(1).G)
	test.That(t, len(DefaultHeightGradient().Stops()), test.ShouldEqual, 5)
}

func TestPreview(t *testing.T) {
	lookup := DefaultHeightGradient().Lookup(16)
	img := ScaleImage(lookup.Image(), 32, 4)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 32)
	test.That(t, img.NRGBAAt(0, 3), test.ShouldResemble, lookup.At(0))
	test.That(t, img.NRGBAAt(31, 0), test.ShouldResemble, lookup.At(1))

	preview := NewPreview(img, lookup, "2.00m", 64)
	test.That(t, preview.Bounds().Dx(), test.ShouldEqual, 64+2*previewMargin)
	test.That(t, preview.Bounds().Dy(), test.ShouldEqual,
		previewTextSize+previewMargin+64+2*previewMargin+previewLegendSize+previewMargin)
}

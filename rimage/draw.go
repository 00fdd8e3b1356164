package rimage

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

var font *truetype.Font

// init sets up the fonts we want to use.
func init() {
	var err error
	font, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Font returns the font we use for drawing.
func Font() *truetype.Font {
	return font
}

// DrawString writes a string to the given context at a particular point.
func DrawString(dc *gg.Context, text string, p image.Point, c color.Color, size float64) {
	dc.SetFontFace(truetype.NewFace(Font(), &truetype.Options{Size: size}))
	dc.SetColor(c)
	dc.DrawStringWrapped(text, float64(p.X), float64(p.Y), 0, 0, float64(dc.Width()), 1, 0)
}

// DrawRectangleEmpty outlines r in the context.
func DrawRectangleEmpty(dc *gg.Context, r image.Rectangle, c color.Color, width float64) {
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	dc.Stroke()
}

const (
	previewMargin     = 8
	previewLegendSize = 16
	previewTextSize   = 14
)

// NewPreview renders img scaled to the given size on a dark background, with the ramp drawn as a
// legend strip underneath and an optional caption (e.g. the corridor length label) on top.
func NewPreview(img image.Image, ramp *RampLookup, caption string, size int) image.Image {
	if size < 1 {
		size = img.Bounds().Dx()
	}
	textRows := 0
	if caption != "" {
		textRows = previewTextSize + previewMargin
	}
	width := size + 2*previewMargin
	height := textRows + size + 2*previewMargin
	if ramp != nil {
		height += previewLegendSize + previewMargin
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(color.NRGBA{R: 32, G: 32, B: 32, A: 255})
	dc.Clear()

	if caption != "" {
		DrawString(dc, caption, image.Pt(previewMargin, previewMargin), White, previewTextSize)
	}

	top := previewMargin + textRows
	dc.DrawImage(ScaleImage(img, size, size), previewMargin, top)
	DrawRectangleEmpty(dc, image.Rect(previewMargin, top, previewMargin+size, top+size), White, 1)

	if ramp != nil {
		legendTop := top + size + previewMargin
		dc.DrawImage(ScaleImage(ramp.Image(), size, previewLegendSize), previewMargin, legendTop)
	}
	return dc.Image()
}

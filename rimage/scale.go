package rimage

import (
	"image"

	"golang.org/x/image/draw"
)

// ScaleImage resizes img to width×height with nearest-neighbor sampling, keeping cells crisp.
func ScaleImage(img image.Image, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

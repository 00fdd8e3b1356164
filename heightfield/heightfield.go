package heightfield

import (
	"image"
	"image/color"
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/slopescan/rimage"
	"go.viam.com/slopescan/spatialmath"
	"go.viam.com/slopescan/utils"
)

// Cell is one grid sample. Delta is the height minus the ROI mean in meters and Value is Delta
// normalized into [0, 1] with 0.5 at the mean. Absent cells carry zeros.
type Cell struct {
	Present bool
	Delta   float64
	Value   float64
}

// HeightField is a Size×Size grid over a Region. Columns run across the corridor from -HalfWidth
// to +HalfWidth and rows run along it from A's end to B's end.
type HeightField struct {
	Size       int
	Cells      []Cell
	Mean       float64
	MaxAbs     float64
	PointCount int
	Region     Region
	Stats      Stats

	// GroundNormal is the world-space normal of the plane best fitting the ROI and TiltDeg its
	// angle from the frame's up.
	GroundNormal r3.Vector
	TiltDeg      float64
}

func (hf *HeightField) cellFor(local r3.Vector) (int, int) {
	last := float64(hf.Size - 1)
	u := (local.X + hf.Region.HalfWidth) / (2 * hf.Region.HalfWidth)
	v := (local.Z + hf.Region.Length*0.5) / hf.Region.Length
	col := utils.ClampInt(int(math.Round(u*last)), 0, hf.Size-1)
	row := utils.ClampInt(int(math.Round(v*last)), 0, hf.Size-1)
	return col, row
}

// At returns the cell at (col, row).
func (hf *HeightField) At(col, row int) Cell {
	return hf.Cells[row*hf.Size+col]
}

// Occupied returns the number of present cells.
func (hf *HeightField) Occupied() int {
	n := 0
	for _, c := range hf.Cells {
		if c.Present {
			n++
		}
	}
	return n
}

// Coverage returns the fraction of cells that are present.
func (hf *HeightField) Coverage() float64 {
	return float64(hf.Occupied()) / float64(len(hf.Cells))
}

// Image colors present cells through ramp and leaves absent cells transparent. Row 0 is the
// bottom of the image, so B's end is at the top.
func (hf *HeightField) Image(ramp *rimage.RampLookup) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, hf.Size, hf.Size))
	for row := 0; row < hf.Size; row++ {
		for col := 0; col < hf.Size; col++ {
			c := hf.At(col, row)
			if !c.Present {
				continue
			}
			img.SetNRGBA(col, hf.Size-1-row, ramp.At(c.Value))
		}
	}
	return img
}

// GrayImage encodes present cells as 1 + Value×65534 and absent cells as 0, in the same layout as
// Image.
func (hf *HeightField) GrayImage() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, hf.Size, hf.Size))
	for row := 0; row < hf.Size; row++ {
		for col := 0; col < hf.Size; col++ {
			c := hf.At(col, row)
			if !c.Present {
				continue
			}
			img.SetGray16(col, hf.Size-1-row, color.Gray16{Y: uint16(1 + math.Round(c.Value*65534))})
		}
	}
	return img
}

// Publication is what a visualization sink needs to place a height field in the world: the image
// and ramp, anchored at the corridor midpoint with the physical extent of the region.
type Publication struct {
	Field  *HeightField
	Ramp   *rimage.RampLookup
	Image  *image.NRGBA
	Anchor spatialmath.Pose
	Length float64
	Width  float64
}

// Publication packages the field for a sink.
func (hf *HeightField) Publication(ramp *rimage.RampLookup) *Publication {
	return &Publication{
		Field:  hf,
		Ramp:   ramp,
		Image:  hf.Image(ramp),
		Anchor: hf.Region.Anchor(),
		Length: hf.Region.Length,
		Width:  hf.Region.Width(),
	}
}

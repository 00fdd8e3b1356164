package heightfield

import (
	"io"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Profile returns the mean height delta of each row that has any present cell, keyed by distance
// along the corridor from A's end in meters.
func (hf *HeightField) Profile() plotter.XYs {
	pts := make(plotter.XYs, 0, hf.Size)
	step := hf.Region.Length / float64(hf.Size-1)
	for row := 0; row < hf.Size; row++ {
		sum, n := 0., 0
		for col := 0; col < hf.Size; col++ {
			if c := hf.At(col, row); c.Present {
				sum += c.Delta
				n++
			}
		}
		if n == 0 {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(row) * step, Y: sum / float64(n)})
	}
	return pts
}

// WriteProfilePlot renders Profile as a PNG line chart.
func (hf *HeightField) WriteProfilePlot(w io.Writer) error {
	pts := hf.Profile()
	if len(pts) == 0 {
		return errors.New("height field has no samples to plot")
	}

	p := plot.New()
	p.Title.Text = "Height profile " + hf.Region.lengthLabel()
	p.X.Label.Text = "distance along corridor (m)"
	p.Y.Label.Text = "height from mean (m)"
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Width = vg.Points(1)
	p.Add(line)

	writer, err := p.WriterTo(6*vg.Inch, 3*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = writer.WriteTo(w)
	return err
}

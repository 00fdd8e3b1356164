package pointcloud

import (
	"bufio"
	"fmt"
	"image/color"
	"io"

	"github.com/golang/geo/r3"
)

func colorToPCDInt(c color.NRGBA) int {
	return int(c.R)<<16 | int(c.G)<<8 | int(c.B)
}

// WritePCD writes the cloud as an ASCII PCD v0.7 file. Colored clouds get an rgb field.
func WritePCD(cloud *PointCloud, out io.Writer) error {
	w := bufio.NewWriter(out)
	hasColor := cloud.MetaData().HasColor

	if _, err := fmt.Fprintf(w, "VERSION .7\n"); err != nil {
		return err
	}
	var err error
	if hasColor {
		_, err = fmt.Fprintf(w, "FIELDS x y z rgb\n"+
			"SIZE 4 4 4 4\n"+
			"TYPE F F F I\n"+
			"COUNT 1 1 1 1\n")
	} else {
		_, err = fmt.Fprintf(w, "FIELDS x y z\n"+
			"SIZE 4 4 4\n"+
			"TYPE F F F\n"+
			"COUNT 1 1 1\n")
	}
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "WIDTH %d\n"+
		"HEIGHT %d\n"+
		"VIEWPOINT 0 0 0 1 0 0 0\n"+
		"POINTS %d\n"+
		"DATA ascii\n",
		cloud.Size(), 1, cloud.Size()); err != nil {
		return err
	}

	cloud.Iterate(func(p r3.Vector, c color.NRGBA, _ bool) bool {
		if hasColor {
			_, err = fmt.Fprintf(w, "%f %f %f %d\n", p.X, p.Y, p.Z, colorToPCDInt(c))
		} else {
			_, err = fmt.Fprintf(w, "%f %f %f\n", p.X, p.Y, p.Z)
		}
		return err == nil
	})
	if err != nil {
		return err
	}
	return w.Flush()
}

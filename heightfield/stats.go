package heightfield

import (
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes ROI heights in the local frame, in meters.
type Stats struct {
	Min, Max     float64
	Mean, StdDev float64
	Median       float64
	P05, P95     float64
}

// Spread returns the robust height range P95 − P05.
func (s Stats) Spread() float64 {
	return s.P95 - s.P05
}

// computeStats expects at least one height.
func computeStats(heights []float64) Stats {
	var st Stats
	st.Mean, st.StdDev = stat.MeanStdDev(heights, nil)
	st.Min = floats.Min(heights)
	st.Max = floats.Max(heights)

	data := stats.Float64Data(heights)
	// errors only come back for empty input
	st.Median, _ = data.Median()
	st.P05, _ = data.Percentile(5)
	st.P95, _ = data.Percentile(95)
	return st
}

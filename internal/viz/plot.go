package viz

import (
	"fmt"
	"sort"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/photonrlc/internal/dynamo"
)

// SampleCurrent picks the current at n evenly spaced times over [t0, t1],
// taking the latest sample at or before each time.
func SampleCurrent(tr dynamo.Trajectory, t0, t1 float64, n int) []float64 {
	if tr.Empty() || n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		t := t0
		if n > 1 {
			t = t0 + (t1-t0)*float64(i)/float64(n-1)
		}
		j := sort.SearchFloat64s(tr.Times, t)
		if j >= tr.Len() || (tr.Times[j] > t && j > 0) {
			j--
		}
		j = max(0, min(j, tr.Len()-1))
		out[i] = tr.States[j][0]
	}
	return out
}

// PlotCurrents draws the perturbed current (blue) over the baseline current
// (red) across the time span both cover.
func PlotCurrents(perturbed, baseline dynamo.Trajectory, width, height int) (string, error) {
	if perturbed.Empty() || baseline.Empty() {
		return "", fmt.Errorf("%w: trajectory", dynamo.ErrEmptyInput)
	}
	if width < 2 || height < 1 {
		return "", fmt.Errorf("%w: plot size %dx%d", dynamo.ErrInvalidParameter, width, height)
	}

	t0 := max(perturbed.Start(), baseline.Start())
	t1 := min(perturbed.End(), baseline.End())
	if !(t1 > t0) {
		return "", fmt.Errorf("%w: trajectories do not overlap", dynamo.ErrInvalidParameter)
	}

	data := [][]float64{
		SampleCurrent(baseline, t0, t1, width),
		SampleCurrent(perturbed, t0, t1, width),
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
		asciigraph.SeriesLegends("baseline", "perturbed"),
		asciigraph.Caption(fmt.Sprintf("current, t = %.3g .. %.3g s", t0, t1)),
	), nil
}

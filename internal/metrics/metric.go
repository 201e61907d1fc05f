package metrics

import "github.com/san-kum/photonrlc/internal/dynamo"

// Metric accumulates a scalar over the samples of a trajectory.
type Metric interface {
	Name() string
	Observe(x dynamo.State, t float64)
	Value() float64
	Reset()
}

// Replay resets m and feeds it every sample of tr.
func Replay(m Metric, tr dynamo.Trajectory) float64 {
	m.Reset()
	for i, x := range tr.States {
		m.Observe(x, tr.Times[i])
	}
	return m.Value()
}

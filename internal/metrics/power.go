package metrics

import (
	"math"

	"github.com/san-kum/photonrlc/internal/dynamo"
)

// PowerMeter tracks the average power dissipated in a resistance by the
// current in state component 0, as RMS(current)^2 * resistance.
//
// The mean of squares is kept incrementally so a constant series reports
// exactly I0^2 * resistance.
type PowerMeter struct {
	name       string
	resistance float64
	meanSq     float64
	samples    int
}

func NewPowerMeter(resistance float64) *PowerMeter {
	return &PowerMeter{
		name:       "average_power",
		resistance: resistance,
	}
}

func (p *PowerMeter) Name() string { return p.name }

func (p *PowerMeter) Observe(x dynamo.State, t float64) {
	if len(x) == 0 {
		return
	}
	p.add(x[0])
}

func (p *PowerMeter) add(i float64) {
	p.samples++
	p.meanSq += (i*i - p.meanSq) / float64(p.samples)
}

// Value is 0 until a sample has been observed.
func (p *PowerMeter) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return p.meanSq * p.resistance
}

func (p *PowerMeter) Samples() int { return p.samples }

func (p *PowerMeter) Reset() {
	p.meanSq = 0
	p.samples = 0
}

// RMS is the root-mean-square of series.
func RMS(series []float64) (float64, error) {
	if len(series) == 0 {
		return 0, dynamo.ErrEmptyInput
	}
	p := NewPowerMeter(1)
	for _, v := range series {
		p.add(v)
	}
	return math.Sqrt(p.meanSq), nil
}

// AveragePower is RMS(current)^2 * resistance.
func AveragePower(resistance float64, current []float64) (float64, error) {
	if len(current) == 0 {
		return 0, dynamo.ErrEmptyInput
	}
	p := NewPowerMeter(resistance)
	for _, v := range current {
		p.add(v)
	}
	return p.Value(), nil
}

// Peak tracks the largest |current| seen in state component 0.
type Peak struct {
	name string
	max  float64
}

func NewPeak() *Peak {
	return &Peak{name: "peak_current"}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(x dynamo.State, t float64) {
	if len(x) == 0 {
		return
	}
	p.max = math.Max(p.max, math.Abs(x[0]))
}

func (p *Peak) Value() float64 { return p.max }

func (p *Peak) Reset() { p.max = 0 }

package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/photonrlc/internal/dynamo"
	"github.com/san-kum/photonrlc/internal/photon"
	"github.com/san-kum/photonrlc/internal/physics"
)

// Params is everything one trial needs. Trials is read by the aggregator only.
type Params struct {
	Resistance  float64 // ohm
	Inductance  float64 // henry
	Capacitance float64 // farad

	Temperature float64 // kelvin
	Intensity   int     // photons per segment

	Aperture   float64 // metres
	SigmaRatio float64 // sigma = Aperture / SigmaRatio

	Start            float64
	End              float64
	Dt               float64
	PointsPerSegment int
	BaselinePoints   int

	Initial dynamo.State

	Trials int
	Seed   uint64

	Integrator  string
	Tolerance   float64
	MaxAttempts int

	Constants photon.Constants
}

// DefaultParams is the reference scenario.
func DefaultParams() Params {
	return Params{
		Resistance:       0.4e6,
		Inductance:       10e-6,
		Capacitance:      1e-15,
		Temperature:      9e-2,
		Intensity:        1,
		Aperture:         500e-9,
		SigmaRatio:       3,
		Start:            0,
		End:              5e-10,
		Dt:               1e-11,
		PointsPerSegment: 100,
		BaselinePoints:   5000,
		Initial:          dynamo.State{1, 0},
		Trials:           10,
		Integrator:       "rk45",
		Tolerance:        1e-6,
		MaxAttempts:      photon.DefaultMaxAttempts,
		Constants:        photon.Standard(),
	}
}

func (p Params) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"resistance", p.Resistance},
		{"inductance", p.Inductance},
		{"capacitance", p.Capacitance},
		{"temperature", p.Temperature},
		{"aperture", p.Aperture},
		{"sigma_ratio", p.SigmaRatio},
		{"dt", p.Dt},
	}
	for _, f := range positive {
		if !(f.v > 0) || math.IsInf(f.v, 1) {
			return dynamo.InvalidParam(f.name, f.v)
		}
	}
	if p.Intensity < 0 {
		return dynamo.InvalidParam("intensity", p.Intensity)
	}
	if p.PointsPerSegment < 1 {
		return dynamo.InvalidParam("points_per_segment", p.PointsPerSegment)
	}
	if p.BaselinePoints < 1 {
		return dynamo.InvalidParam("baseline_points", p.BaselinePoints)
	}
	if p.Tolerance < 0 || math.IsNaN(p.Tolerance) {
		return dynamo.InvalidParam("tolerance", p.Tolerance)
	}
	if len(p.Initial) != 2 || !p.Initial.IsValid() {
		return fmt.Errorf("%w: initial condition %v", dynamo.ErrInvalidParameter, p.Initial)
	}
	if err := p.Constants.Validate(); err != nil {
		return err
	}
	if _, err := p.SegmentCount(); err != nil {
		return err
	}
	return nil
}

// SegmentCount is the number of segment starts t0, t0+dt, ... below t1-dt.
// A span of exactly one dt still gets one segment.
func (p Params) SegmentCount() (int, error) {
	span := p.End - p.Start
	if math.IsNaN(span) || math.IsInf(span, 0) || !(span > 0) {
		return 0, fmt.Errorf("%w: time interval [%g, %g]", dynamo.ErrInvalidParameter, p.Start, p.End)
	}
	if !(p.Dt > 0) || span < p.Dt*(1-1e-9) {
		return 0, fmt.Errorf("%w: dt %g does not fit in [%g, %g]", dynamo.ErrInvalidParameter, p.Dt, p.Start, p.End)
	}
	n := int(math.Ceil((span-p.Dt)/p.Dt - 1e-9))
	if n < 1 {
		n = 1
	}
	return n, nil
}

// Sigma is the width of the photon landing distribution.
func (p Params) Sigma() float64 { return p.Aperture / p.SigmaRatio }

// Oscillator is the unperturbed circuit over [start, end].
func (p Params) Oscillator(start, end float64) (physics.RLC, error) {
	osc, err := physics.New(p.Resistance, p.Inductance, p.Capacitance, [2]float64{start, end}, p.Initial)
	if err != nil {
		return physics.RLC{}, err
	}
	osc.Tolerance = p.Tolerance
	return osc, nil
}

var setters = map[string]func(*Params, float64){
	"resistance":  func(p *Params, v float64) { p.Resistance = v },
	"inductance":  func(p *Params, v float64) { p.Inductance = v },
	"capacitance": func(p *Params, v float64) { p.Capacitance = v },
	"temperature": func(p *Params, v float64) { p.Temperature = v },
	"aperture":    func(p *Params, v float64) { p.Aperture = v },
	"sigma_ratio": func(p *Params, v float64) { p.SigmaRatio = v },
	"intensity":   func(p *Params, v float64) { p.Intensity = int(math.Round(v)) },
	"dt":          func(p *Params, v float64) { p.Dt = v },
}

// With returns a copy with the named numeric parameter set to v.
func (p Params) With(name string, v float64) (Params, error) {
	set, ok := setters[name]
	if !ok {
		return p, fmt.Errorf("unknown parameter: %s", name)
	}
	p.Initial = p.Initial.Clone()
	set(&p, v)
	return p, nil
}

// Tunable lists the names accepted by With.
func Tunable() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p Params) GetParams() map[string]float64 {
	return map[string]float64{
		"resistance":  p.Resistance,
		"inductance":  p.Inductance,
		"capacitance": p.Capacitance,
		"temperature": p.Temperature,
		"intensity":   float64(p.Intensity),
		"aperture":    p.Aperture,
		"sigma_ratio": p.SigmaRatio,
		"start":       p.Start,
		"end":         p.End,
		"dt":          p.Dt,
	}
}

package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/photonrlc/internal/dynamo"
	"github.com/san-kum/photonrlc/internal/photon"
	"github.com/san-kum/photonrlc/internal/physics"
)

// Phase is where a Runner is in its segment loop.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSegmentStart
	PhaseIntegrating
	PhaseSegmentEnd
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSegmentStart:
		return "segment-start"
	case PhaseIntegrating:
		return "integrating"
	case PhaseSegmentEnd:
		return "segment-end"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Segment is one stretch of the perturbed run at a frozen omega.
type Segment struct {
	Index      int
	Interval   [2]float64
	Omega      float64
	Shift      float64
	Photons    []float64
	Attempts   int
	Trajectory dynamo.Trajectory
}

// Perturbed is the outcome of a Runner.
type Perturbed struct {
	Trajectory dynamo.Trajectory
	Segments   []Segment
	Final      physics.RLC
	Attempts   int
	Photons    int
}

// Runner drives the circuit through consecutive segments of width Dt. Before
// each segment it draws photons, converts them to a frequency shift and adds
// the shift to omega. Each segment starts from the exact final state and time
// of the one before it.
//
// A Runner owns its sampler, coupler and stepper and must not be shared
// between goroutines.
type Runner struct {
	params  Params
	sampler *photon.Sampler
	coupler *photon.Coupler
	stepper dynamo.Integrator
	phase   Phase

	// OnPhase, if set, is called on every transition with the current
	// segment index (-1 before the first segment).
	OnPhase func(phase Phase, segment int)
}

func NewRunner(p Params, sampler *photon.Sampler, coupler *photon.Coupler, stepper dynamo.Integrator) (*Runner, error) {
	if sampler == nil || coupler == nil || stepper == nil {
		return nil, fmt.Errorf("%w: runner needs a sampler, coupler and stepper", dynamo.ErrInvalidParameter)
	}
	if _, err := p.SegmentCount(); err != nil {
		return nil, err
	}
	if p.PointsPerSegment < 1 {
		return nil, dynamo.InvalidParam("points_per_segment", p.PointsPerSegment)
	}
	return &Runner{
		params:  p,
		sampler: sampler,
		coupler: coupler,
		stepper: stepper,
		phase:   PhaseIdle,
	}, nil
}

func (r *Runner) Phase() Phase { return r.phase }

func (r *Runner) enter(p Phase, segment int) {
	r.phase = p
	if r.OnPhase != nil {
		r.OnPhase(p, segment)
	}
}

// Run executes every segment in time order. On error the partial result up
// to the last completed segment is returned alongside it.
func (r *Runner) Run(ctx context.Context) (Perturbed, error) {
	p := r.params
	n, err := p.SegmentCount()
	if err != nil {
		return Perturbed{}, err
	}

	osc, err := p.Oscillator(p.Start, p.Start+p.Dt)
	if err != nil {
		return Perturbed{}, err
	}

	// Each segment adds PointsPerSegment steps past the shared boundary.
	samples := n*p.PointsPerSegment + 1
	out := Perturbed{Segments: make([]Segment, 0, n)}
	out.Trajectory.Times = make([]float64, 0, samples)
	out.Trajectory.States = make([]dynamo.State, 0, samples)
	r.enter(PhaseIdle, -1)

	start := p.Start
	ic := osc.Initial
	for k := 0; k < n; k++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		r.enter(PhaseSegmentStart, k)
		seg, snap, err := r.perturb(osc, k, start, ic)
		if err != nil {
			return out, fmt.Errorf("segment %d: %w", k, err)
		}

		r.enter(PhaseIntegrating, k)
		traj, err := snap.Integrate(ctx, r.stepper, p.PointsPerSegment)
		if err != nil {
			return out, fmt.Errorf("segment %d: %w", k, err)
		}
		seg.Trajectory = traj
		out.Trajectory.Extend(traj)

		r.enter(PhaseSegmentEnd, k)
		out.Segments = append(out.Segments, seg)
		out.Attempts += seg.Attempts
		out.Photons += len(seg.Photons)
		ic = traj.Last()
		start = traj.End()
		osc = snap
	}

	out.Final = osc
	r.enter(PhaseDone, n-1)
	return out, nil
}

// perturb draws this segment's photons and returns the shifted snapshot over
// [start, start+dt] starting from ic.
func (r *Runner) perturb(osc physics.RLC, k int, start float64, ic dynamo.State) (Segment, physics.RLC, error) {
	st := r.sampler.Stream()
	freqs, err := st.Take(r.params.Intensity)
	if err != nil {
		return Segment{}, physics.RLC{}, err
	}
	shift, err := photon.Shift(freqs, r.coupler.Transform(freqs))
	if err != nil {
		return Segment{}, physics.RLC{}, err
	}

	interval := [2]float64{start, start + r.params.Dt}
	snap, err := osc.WithOmega(osc.Omega+shift).WithSegment(interval, ic)
	if err != nil {
		return Segment{}, physics.RLC{}, err
	}

	return Segment{
		Index:    k,
		Interval: interval,
		Omega:    snap.Omega,
		Shift:    shift,
		Photons:  freqs,
		Attempts: st.Attempts(),
	}, snap, nil
}

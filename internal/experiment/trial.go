package experiment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/san-kum/photonrlc/internal/dynamo"
	"github.com/san-kum/photonrlc/internal/metrics"
	"github.com/san-kum/photonrlc/internal/photon"
)

// TrialResult is the energy bookkeeping of one perturbed run against its
// baseline.
type TrialResult struct {
	Index int
	Seed  uint64

	Delta           float64
	BaselineEnergy  float64
	PerturbedEnergy float64
	BaselinePower   float64
	PerturbedPower  float64
	BaselinePeak    float64
	PerturbedPeak   float64

	// Stored energy at the start, at the end of the baseline, and at the end
	// of the perturbed run under its final shifted circuit.
	InitialStored   float64
	BaselineStored  float64
	PerturbedStored float64

	Segments   int
	Photons    int
	Attempts   int
	FinalOmega float64
	Elapsed    time.Duration

	Perturbed dynamo.Trajectory
	Baseline  dynamo.Trajectory
}

// Trial is one independent repetition: baseline run, perturbed run, delta.
type Trial struct {
	Params Params
	Index  int

	// Registry resolves Params.Integrator. Nil means NewRegistry().
	Registry *Registry
	OnPhase  func(phase Phase, segment int)
}

// RandomSeed draws a nonzero base seed.
func RandomSeed() uint64 {
	for {
		if s := rand.Uint64(); s != 0 {
			return s
		}
	}
}

// Rand returns the trial's private random stream. Two trials with the same
// seed and index draw identical photons.
func (tr Trial) Rand() *rand.Rand {
	return rand.New(rand.NewPCG(tr.Params.Seed, uint64(tr.Index)))
}

func (tr Trial) Run(ctx context.Context) (TrialResult, error) {
	started := time.Now()
	p := tr.Params
	if err := p.Validate(); err != nil {
		return TrialResult{}, err
	}

	reg := tr.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	stepper, err := reg.GetIntegrator(p.Integrator)
	if err != nil {
		return TrialResult{}, fmt.Errorf("%w: %v", dynamo.ErrInvalidParameter, err)
	}

	rng := tr.Rand()
	sampler, err := photon.NewSampler(p.Constants, p.Temperature, rng, photon.WithMaxAttempts(p.MaxAttempts))
	if err != nil {
		return TrialResult{}, err
	}
	coupler, err := photon.NewCoupler(p.Aperture, p.Sigma(), rng)
	if err != nil {
		return TrialResult{}, err
	}

	runner, err := NewRunner(p, sampler, coupler, stepper)
	if err != nil {
		return TrialResult{}, err
	}
	runner.OnPhase = tr.OnPhase

	pert, err := runner.Run(ctx)
	if err != nil {
		return TrialResult{}, fmt.Errorf("perturbed run: %w", err)
	}

	base, err := Baseline(ctx, p, stepper)
	if err != nil {
		return TrialResult{}, fmt.Errorf("baseline run: %w", err)
	}
	ref, err := p.Oscillator(p.Start, p.End)
	if err != nil {
		return TrialResult{}, err
	}

	acc, err := metrics.NewAccountant(p.Resistance)
	if err != nil {
		return TrialResult{}, err
	}
	cmp, err := acc.Compare(base, pert.Trajectory)
	if err != nil {
		return TrialResult{}, err
	}

	return TrialResult{
		Index:           tr.Index,
		Seed:            p.Seed,
		Delta:           cmp.Delta,
		BaselineEnergy:  cmp.BaselineEnergy,
		PerturbedEnergy: cmp.PerturbedEnergy,
		BaselinePower:   cmp.BaselinePower,
		PerturbedPower:  cmp.PerturbedPower,
		BaselinePeak:    cmp.BaselinePeak,
		PerturbedPeak:   cmp.PerturbedPeak,
		InitialStored:   storedEnergy(ref, p.Initial),
		BaselineStored:  storedEnergy(ref, base.Last()),
		PerturbedStored: storedEnergy(pert.Final, pert.Trajectory.Last()),
		Segments:        len(pert.Segments),
		Photons:         pert.Photons,
		Attempts:        pert.Attempts,
		FinalOmega:      pert.Final.Omega,
		Elapsed:         time.Since(started),
		Perturbed:       pert.Trajectory,
		Baseline:        base,
	}, nil
}

func storedEnergy(h dynamo.Hamiltonian, x dynamo.State) float64 {
	return h.Energy(x)
}

// Baseline integrates the unperturbed circuit over the full span with
// BaselinePoints as the step count.
func Baseline(ctx context.Context, p Params, stepper dynamo.Integrator) (dynamo.Trajectory, error) {
	osc, err := p.Oscillator(p.Start, p.End)
	if err != nil {
		return dynamo.Trajectory{}, err
	}
	return osc.Integrate(ctx, stepper, p.BaselinePoints)
}

package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/photonrlc/internal/dynamo"
)

// EnergyDelta is |P(perturbed)*perturbedDuration - P(baseline)*baselineDuration|
// with P the average power dissipated in resistance.
func EnergyDelta(baseline []float64, baselineDuration float64, perturbed []float64, perturbedDuration float64, resistance float64) (float64, error) {
	pb, err := AveragePower(resistance, baseline)
	if err != nil {
		return 0, fmt.Errorf("baseline: %w", err)
	}
	pp, err := AveragePower(resistance, perturbed)
	if err != nil {
		return 0, fmt.Errorf("perturbed: %w", err)
	}
	return math.Abs(pp*perturbedDuration - pb*baselineDuration), nil
}

// Comparison is the energy bookkeeping of one perturbed run against its baseline.
type Comparison struct {
	BaselinePower     float64
	PerturbedPower    float64
	BaselineDuration  float64
	PerturbedDuration float64
	BaselineEnergy    float64
	PerturbedEnergy   float64
	BaselinePeak      float64
	PerturbedPeak     float64
	Delta             float64
}

// Accountant compares trajectories of circuits sharing one resistance.
type Accountant struct {
	Resistance float64
}

func NewAccountant(resistance float64) (Accountant, error) {
	if !(resistance > 0) || math.IsInf(resistance, 1) {
		return Accountant{}, dynamo.InvalidParam("resistance", resistance)
	}
	return Accountant{Resistance: resistance}, nil
}

// Compare reads the current from component 0 of each trajectory. The duration
// of each is its last time minus its first.
func (a Accountant) Compare(baseline, perturbed dynamo.Trajectory) (Comparison, error) {
	if baseline.Empty() {
		return Comparison{}, fmt.Errorf("baseline: %w", dynamo.ErrEmptyInput)
	}
	if perturbed.Empty() {
		return Comparison{}, fmt.Errorf("perturbed: %w", dynamo.ErrEmptyInput)
	}

	meter := NewPowerMeter(a.Resistance)
	peak := NewPeak()

	var c Comparison
	c.BaselinePower = Replay(meter, baseline)
	c.BaselinePeak = Replay(peak, baseline)
	c.PerturbedPower = Replay(meter, perturbed)
	c.PerturbedPeak = Replay(peak, perturbed)

	c.BaselineDuration = baseline.Duration()
	c.PerturbedDuration = perturbed.Duration()
	c.BaselineEnergy = c.BaselinePower * c.BaselineDuration
	c.PerturbedEnergy = c.PerturbedPower * c.PerturbedDuration
	c.Delta = math.Abs(c.PerturbedEnergy - c.BaselineEnergy)
	return c, nil
}

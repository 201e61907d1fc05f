package automation

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/photonrlc/internal/dynamo"
	"github.com/san-kum/photonrlc/internal/experiment"
)

// ParameterSweep runs the trial aggregator once per value of one parameter.
type ParameterSweep struct {
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// Values spreads NumSteps points evenly over [ParamMin, ParamMax].
func (s ParameterSweep) Values() ([]float64, error) {
	switch {
	case s.NumSteps < 1:
		return nil, dynamo.InvalidParam("sweep steps", s.NumSteps)
	case s.NumSteps == 1:
		return []float64{s.ParamMin}, nil
	}
	return floats.Span(make([]float64, s.NumSteps), s.ParamMin, s.ParamMax), nil
}

// SweepPoint is the summary at one parameter value.
type SweepPoint struct {
	Value   float64 `json:"value"`
	Summary Summary `json:"summary"`
}

// RunSweep runs base with the swept parameter at each value. Every point uses
// the same seed so differences come from the parameter rather than the draws.
func RunSweep(ctx context.Context, sweep ParameterSweep, base experiment.Params, opts ...Option) ([]SweepPoint, error) {
	values, err := sweep.Values()
	if err != nil {
		return nil, err
	}
	if base.Seed == 0 {
		base.Seed = experiment.RandomSeed()
	}

	logger := newOptions(opts).logger
	points := make([]SweepPoint, 0, len(values))
	for i, v := range values {
		p, err := base.With(sweep.ParamName, v)
		if err != nil {
			return points, err
		}

		rep, err := RunTrials(ctx, p, opts...)
		if err != nil {
			return points, fmt.Errorf("%s=%g: %w", sweep.ParamName, v, err)
		}
		points = append(points, SweepPoint{Value: v, Summary: rep.Summary})

		logger.Info("sweep point",
			zap.Int("step", i+1),
			zap.Int("of", len(values)),
			zap.String("param", sweep.ParamName),
			zap.Float64("value", v),
			zap.Float64("mean", rep.Summary.Mean),
		)
	}
	return points, nil
}

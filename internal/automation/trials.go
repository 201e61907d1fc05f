package automation

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/photonrlc/internal/dynamo"
	"github.com/san-kum/photonrlc/internal/experiment"
	"github.com/san-kum/photonrlc/internal/logging"
	"github.com/san-kum/photonrlc/internal/telemetry"
)

// Report is the outcome of RunTrials.
type Report struct {
	Params  experiment.Params
	Seed    uint64
	Trials  []experiment.TrialResult // by index
	Deltas  []float64
	Summary Summary
	Started time.Time
	Elapsed time.Duration
}

type options struct {
	workers  int
	logger   *zap.Logger
	progress func(experiment.TrialResult)
	keep     int
	registry *experiment.Registry
}

type Option func(*options)

// WithWorkers bounds concurrent trials. n < 1 means runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithProgress registers a callback invoked once per finished trial. Calls
// are serialized but arrive in completion order, not index order.
func WithProgress(fn func(experiment.TrialResult)) Option {
	return func(o *options) { o.progress = fn }
}

// WithKeepTrajectories keeps the trajectories of the first n trials in the
// report and drops the rest.
func WithKeepTrajectories(n int) Option {
	return func(o *options) { o.keep = n }
}

func WithRegistry(r *experiment.Registry) Option {
	return func(o *options) { o.registry = r }
}

func newOptions(opts []Option) options {
	o := options{keep: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.NumCPU()
	}
	if o.registry == nil {
		o.registry = experiment.NewRegistry()
	}
	o.logger = logging.OrNop(o.logger)
	return o
}

// RunTrials runs p.Trials independent trials on a bounded worker pool and
// summarizes their energy deltas. A zero p.Seed is replaced by a random one,
// recorded in the report. The first failing trial cancels the rest.
func RunTrials(ctx context.Context, p experiment.Params, opts ...Option) (*Report, error) {
	if p.Trials < 1 {
		return nil, dynamo.InvalidParam("trials", p.Trials)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts)

	if p.Seed == 0 {
		p.Seed = experiment.RandomSeed()
	}

	rep := &Report{
		Params:  p,
		Seed:    p.Seed,
		Trials:  make([]experiment.TrialResult, p.Trials),
		Started: time.Now(),
	}

	o.logger.Info("running trials",
		zap.Int("trials", p.Trials),
		zap.Int("workers", o.workers),
		zap.Uint64("seed", p.Seed),
		zap.String("integrator", p.Integrator),
	)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i := 0; i < p.Trials; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := experiment.Trial{Params: p, Index: i, Registry: o.registry}.Run(gctx)
			if err != nil {
				recordFailure(err)
				o.logger.Error("trial failed", zap.Int("trial", i), zap.Error(err))
				return fmt.Errorf("trial %d: %w", i, err)
			}
			record(res)

			if i >= o.keep {
				res.Perturbed = dynamo.Trajectory{}
				res.Baseline = dynamo.Trajectory{}
			}
			rep.Trials[i] = res

			o.logger.Debug("trial complete",
				zap.Int("trial", i),
				zap.Float64("delta", res.Delta),
				zap.Float64("final_omega", res.FinalOmega),
				zap.Int("segments", res.Segments),
				zap.Duration("elapsed", res.Elapsed),
			)

			if o.progress != nil {
				mu.Lock()
				o.progress(res)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep.Deltas = make([]float64, len(rep.Trials))
	for i, res := range rep.Trials {
		rep.Deltas[i] = res.Delta
	}
	summary, err := Summarize(rep.Deltas)
	if err != nil {
		return nil, err
	}
	rep.Summary = summary
	rep.Elapsed = time.Since(rep.Started)

	o.logger.Info("trials complete",
		zap.Int("count", summary.Count),
		zap.Float64("mean", summary.Mean),
		zap.Float64("median", summary.Median),
		zap.Float64("std_dev", summary.StdDev),
		zap.Duration("elapsed", rep.Elapsed),
	)
	return rep, nil
}

func record(res experiment.TrialResult) {
	telemetry.TrialsTotal.WithLabelValues("ok").Inc()
	telemetry.TrialDuration.Observe(res.Elapsed.Seconds())
	telemetry.SegmentsTotal.Add(float64(res.Segments))
	telemetry.SamplerAttempts.WithLabelValues("accepted").Add(float64(res.Photons))
	telemetry.SamplerAttempts.WithLabelValues("rejected").Add(float64(res.Attempts - res.Photons))
	telemetry.EnergyDelta.Observe(res.Delta)
}

func recordFailure(err error) {
	result := "error"
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		result = "canceled"
	}
	telemetry.TrialsTotal.WithLabelValues(result).Inc()
}

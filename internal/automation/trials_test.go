package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"go.uber.org/goleak"

	"github.com/san-kum/photonrlc/internal/dynamo"
	"github.com/san-kum/photonrlc/internal/experiment"
)

// shortParams keeps the reference circuit but shortens the span to ten segments.
func shortParams(trials int) experiment.Params {
	p := experiment.DefaultParams()
	p.End = 1.1e-10
	p.BaselinePoints = 1000
	p.Trials = trials
	p.Seed = 17
	return p
}

func TestRunTrials_NoGoroutineLeak(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	rep, err := RunTrials(context.Background(), shortParams(6), WithWorkers(3))
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Trials) != 6 || len(rep.Deltas) != 6 {
		t.Fatalf("expected 6 trials, got %d/%d", len(rep.Trials), len(rep.Deltas))
	}
}

func TestRunTrials_OrderIndependentOfWorkers(t *testing.T) {
	serial, err := RunTrials(context.Background(), shortParams(4), WithWorkers(1))
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := RunTrials(context.Background(), shortParams(4), WithWorkers(4))
	if err != nil {
		t.Fatal(err)
	}

	for i := range serial.Deltas {
		if serial.Trials[i].Index != i {
			t.Errorf("trial %d stored at %d", serial.Trials[i].Index, i)
		}
		if serial.Deltas[i] != parallel.Deltas[i] {
			t.Errorf("trial %d: serial %g, parallel %g", i, serial.Deltas[i], parallel.Deltas[i])
		}
	}
	if serial.Summary != parallel.Summary {
		t.Errorf("summaries differ: %+v vs %+v", serial.Summary, parallel.Summary)
	}
}

func TestRunTrials_KeepTrajectories(t *testing.T) {
	rep, err := RunTrials(context.Background(), shortParams(3), WithKeepTrajectories(1))
	if err != nil {
		t.Fatal(err)
	}
	if rep.Trials[0].Perturbed.Empty() || rep.Trials[0].Baseline.Empty() {
		t.Error("first trial lost its trajectories")
	}
	for _, res := range rep.Trials[1:] {
		if !res.Perturbed.Empty() || !res.Baseline.Empty() {
			t.Errorf("trial %d kept its trajectories", res.Index)
		}
	}
}

func TestRunTrials_Progress(t *testing.T) {
	var calls atomic.Int32
	_, err := RunTrials(context.Background(), shortParams(5), WithWorkers(2), WithProgress(func(experiment.TrialResult) {
		calls.Add(1)
	}))
	if err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 5 {
		t.Errorf("progress called %d times, want 5", calls.Load())
	}
}

func TestRunTrials_RandomSeedRecorded(t *testing.T) {
	p := shortParams(1)
	p.Seed = 0

	rep, err := RunTrials(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Seed == 0 || rep.Trials[0].Seed != rep.Seed {
		t.Errorf("seed %d not recorded on trial (%d)", rep.Seed, rep.Trials[0].Seed)
	}
}

func TestRunTrials_InvalidCount(t *testing.T) {
	for _, n := range []int{0, -3} {
		if _, err := RunTrials(context.Background(), shortParams(n)); !errors.Is(err, dynamo.ErrInvalidParameter) {
			t.Errorf("trials=%d: expected ErrInvalidParameter, got %v", n, err)
		}
	}
}

func TestRunTrials_Canceled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := RunTrials(ctx, shortParams(8), WithWorkers(2)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunSweep(t *testing.T) {
	base := shortParams(2)
	points, err := RunSweep(context.Background(), ParameterSweep{
		ParamName: "temperature",
		ParamMin:  0.05,
		ParamMax:  0.15,
		NumSteps:  3,
	}, base)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	for _, pt := range points {
		if pt.Summary.Count != 2 {
			t.Errorf("value %g: count %d, want 2", pt.Value, pt.Summary.Count)
		}
	}

	if _, err := RunSweep(context.Background(), ParameterSweep{ParamName: "mass", NumSteps: 1}, base); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	doc := `name: temperatures
description: cold then warm
steps:
  - name: cold
    trials: 2
    params:
      temperature: 0.05
  - name: warm
    trials: 1
    params:
      temperature: 0.2
      intensity: 2
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Steps) != 2 || sc.Steps[1].Params["intensity"] != 2 {
		t.Fatalf("unexpected scenario: %+v", sc)
	}

	results, err := RunScenario(context.Background(), sc, shortParams(5))
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Report.Summary.Count != 2 || results[1].Report.Summary.Count != 1 {
		t.Errorf("counts = %d, %d", results[0].Report.Summary.Count, results[1].Report.Summary.Count)
	}
	if results[1].Report.Params.Intensity != 2 || results[1].Report.Params.Temperature != 0.2 {
		t.Errorf("overrides not applied: %+v", results[1].Report.Params)
	}
}

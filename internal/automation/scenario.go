package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/photonrlc/internal/experiment"
)

// Scenario is a scripted sequence of trial batches.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep overrides parameters of the base configuration for one batch.
type ScenarioStep struct {
	Name   string             `yaml:"name"`
	Trials int                `yaml:"trials"`
	Params map[string]float64 `yaml:"params"`
	SaveAs string             `yaml:"save_as"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// ScenarioResult pairs a step with its report.
type ScenarioResult struct {
	Step   ScenarioStep
	Report *Report
}

// RunScenario executes all steps in order against base.
func RunScenario(ctx context.Context, scenario *Scenario, base experiment.Params, opts ...Option) ([]ScenarioResult, error) {
	results := make([]ScenarioResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		p, err := step.Apply(base)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		rep, err := RunTrials(ctx, p, opts...)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, ScenarioResult{Step: step, Report: rep})
	}

	return results, nil
}

// Apply returns base with the step's overrides.
func (s ScenarioStep) Apply(base experiment.Params) (experiment.Params, error) {
	p := base
	for k, v := range s.Params {
		var err error
		if p, err = p.With(k, v); err != nil {
			return base, err
		}
	}
	if s.Trials > 0 {
		p.Trials = s.Trials
	}
	return p, nil
}

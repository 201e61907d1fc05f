package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/photonrlc/internal/dynamo"
	"github.com/san-kum/photonrlc/internal/experiment"
	"github.com/san-kum/photonrlc/internal/photon"
)

const (
	DefaultResistance  = 0.4e6
	DefaultInductance  = 10e-6
	DefaultCapacitance = 1e-15
	DefaultTemperature = 9e-2
	DefaultIntensity   = 1
	DefaultAperture    = 500e-9
	DefaultSigmaRatio  = 3.0
	DefaultEnd         = 5e-10
	DefaultDt          = 1e-11
	DefaultPoints      = 100
	DefaultBaseline    = 5000
	DefaultTrials      = 10
	DefaultIntegrator  = "rk45"
	DefaultTolerance   = 1e-6
)

type Config struct {
	Circuit   CircuitConfig   `yaml:"circuit"`
	Source    SourceConfig    `yaml:"source"`
	Coupling  CouplingConfig  `yaml:"coupling"`
	Timing    TimingConfig    `yaml:"timing"`
	Initial   InitialConfig   `yaml:"initial"`
	Trials    TrialsConfig    `yaml:"trials"`
	Solver    SolverConfig    `yaml:"solver"`
	Constants ConstantsConfig `yaml:"constants"`
}

type CircuitConfig struct {
	Resistance  float64 `yaml:"resistance"`
	Inductance  float64 `yaml:"inductance"`
	Capacitance float64 `yaml:"capacitance"`
}

type SourceConfig struct {
	Temperature float64 `yaml:"temperature"`
	Intensity   int     `yaml:"intensity"`
}

type CouplingConfig struct {
	Aperture   float64 `yaml:"aperture"`
	SigmaRatio float64 `yaml:"sigma_ratio"`
}

type TimingConfig struct {
	Start            float64 `yaml:"start"`
	End              float64 `yaml:"end"`
	Dt               float64 `yaml:"dt"`
	PointsPerSegment int     `yaml:"points_per_segment"`
	BaselinePoints   int     `yaml:"baseline_points"`
}

type InitialConfig struct {
	Position float64 `yaml:"position"`
	Velocity float64 `yaml:"velocity"`
}

type TrialsConfig struct {
	Count   int    `yaml:"count"`
	Workers int    `yaml:"workers"`
	Seed    uint64 `yaml:"seed"`
}

type SolverConfig struct {
	Integrator  string  `yaml:"integrator"`
	Tolerance   float64 `yaml:"tolerance"`
	MaxAttempts int     `yaml:"max_attempts"`
}

type ConstantsConfig struct {
	SpeedOfLight float64 `yaml:"speed_of_light"`
	Planck       float64 `yaml:"planck"`
	Boltzmann    float64 `yaml:"boltzmann"`
}

func DefaultConfig() *Config {
	std := photon.Standard()
	return &Config{
		Circuit: CircuitConfig{
			Resistance:  DefaultResistance,
			Inductance:  DefaultInductance,
			Capacitance: DefaultCapacitance,
		},
		Source: SourceConfig{
			Temperature: DefaultTemperature,
			Intensity:   DefaultIntensity,
		},
		Coupling: CouplingConfig{
			Aperture:   DefaultAperture,
			SigmaRatio: DefaultSigmaRatio,
		},
		Timing: TimingConfig{
			End:              DefaultEnd,
			Dt:               DefaultDt,
			PointsPerSegment: DefaultPoints,
			BaselinePoints:   DefaultBaseline,
		},
		Initial: InitialConfig{Position: 1},
		Trials:  TrialsConfig{Count: DefaultTrials},
		Solver: SolverConfig{
			Integrator:  DefaultIntegrator,
			Tolerance:   DefaultTolerance,
			MaxAttempts: photon.DefaultMaxAttempts,
		},
		Constants: ConstantsConfig{
			SpeedOfLight: std.SpeedOfLight,
			Planck:       std.Planck,
			Boltzmann:    std.Boltzmann,
		},
	}
}

// Load reads path over the defaults, so a file only needs the fields it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params converts the configuration to trial parameters.
func (c *Config) Params() experiment.Params {
	return experiment.Params{
		Resistance:       c.Circuit.Resistance,
		Inductance:       c.Circuit.Inductance,
		Capacitance:      c.Circuit.Capacitance,
		Temperature:      c.Source.Temperature,
		Intensity:        c.Source.Intensity,
		Aperture:         c.Coupling.Aperture,
		SigmaRatio:       c.Coupling.SigmaRatio,
		Start:            c.Timing.Start,
		End:              c.Timing.End,
		Dt:               c.Timing.Dt,
		PointsPerSegment: c.Timing.PointsPerSegment,
		BaselinePoints:   c.Timing.BaselinePoints,
		Initial:          dynamo.State{c.Initial.Position, c.Initial.Velocity},
		Trials:           c.Trials.Count,
		Seed:             c.Trials.Seed,
		Integrator:       c.Solver.Integrator,
		Tolerance:        c.Solver.Tolerance,
		MaxAttempts:      c.Solver.MaxAttempts,
		Constants: photon.Constants{
			SpeedOfLight: c.Constants.SpeedOfLight,
			Planck:       c.Constants.Planck,
			Boltzmann:    c.Constants.Boltzmann,
		},
	}
}

// Validate checks every field the trial pool depends on.
func (c *Config) Validate() error {
	if c.Trials.Count < 1 {
		return dynamo.InvalidParam("trials.count", c.Trials.Count)
	}
	if c.Trials.Workers < 0 {
		return dynamo.InvalidParam("trials.workers", c.Trials.Workers)
	}
	if c.Solver.MaxAttempts < 1 {
		return dynamo.InvalidParam("solver.max_attempts", c.Solver.MaxAttempts)
	}
	if _, err := experiment.NewRegistry().GetIntegrator(c.Solver.Integrator); err != nil {
		return fmt.Errorf("%w: solver.integrator: %v", dynamo.ErrInvalidParameter, err)
	}
	return c.Params().Validate()
}

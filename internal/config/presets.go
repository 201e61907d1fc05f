package config

import "sort"

// Presets are named starting points, each a full configuration.
var Presets = map[string]func() *Config{
	"reference": DefaultConfig,
	"warm": func() *Config {
		cfg := DefaultConfig()
		cfg.Source.Temperature = 0.5
		return cfg
	},
	"underdamped": func() *Config {
		cfg := DefaultConfig()
		cfg.Circuit.Resistance = 1e4
		cfg.Timing.End = 1e-9
		return cfg
	},
	"diffuse": func() *Config {
		cfg := DefaultConfig()
		cfg.Coupling.SigmaRatio = 1
		return cfg
	},
	"bright": func() *Config {
		cfg := DefaultConfig()
		cfg.Source.Intensity = 5
		return cfg
	},
	"quick": func() *Config {
		cfg := DefaultConfig()
		cfg.Timing.End = 1.1e-10
		cfg.Timing.BaselinePoints = 1000
		cfg.Trials.Count = 4
		return cfg
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

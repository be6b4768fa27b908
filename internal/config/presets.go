package config

import "sort"

var Presets = map[string]*Config{
	"default": DefaultConfig(),

	// both motors fire together: pure roll spin-up
	"symmetric": preset(func(c *Config) {
		c.Motors[1].Delay = 0
	}),

	"late-ignition": preset(func(c *Config) {
		c.Motors[1].Delay = 0.1
	}),

	"mismatched": preset(func(c *Config) {
		c.Motors[1] = MotorConfig{Source: "catalog:F15", Grains: 1}
	}),

	"single-grain": preset(func(c *Config) {
		c.Motors[0].Grains = 1
		c.Motors[1].Grains = 1
	}),

	"small-c6": preset(func(c *Config) {
		c.Motors = []MotorConfig{
			{Source: "catalog:C6", Grains: 1},
			{Source: "catalog:C6", Grains: 1, Delay: 0.01},
		}
		c.Design.Ixx, c.Design.Iyy, c.Design.Izz = 2.0, 2.0, 0.05
		c.Timeline.End = 3
		c.Timeline.Samples = 301
	}),

	"tipped": preset(func(c *Config) {
		c.InitState.Theta = 0.05
		c.InitState.Phi = 0.02
		c.InitState.WZ = 1.0
	}),

	"rk4": preset(func(c *Config) {
		c.Integrator = "rk4"
		c.Solver.MaxStep = 1e-3
		c.Solver.MaxSteps = 1_000_000
	}),
}

func preset(apply func(*Config)) *Config {
	c := DefaultConfig()
	apply(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

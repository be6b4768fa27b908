package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/spinsim/internal/dynamo"
	"github.com/san-kum/spinsim/internal/physics"
)

const (
	DefaultMotor      = "catalog:I200W"
	DefaultGrains     = 3
	DefaultDelay      = 0.02 // s, second motor
	DefaultEnd        = 7.0  // s
	DefaultSamples    = 701
	DefaultIntegrator = "rk45"
)

type Config struct {
	Design     DesignConfig    `yaml:"design"`
	Motors     []MotorConfig   `yaml:"motors"`
	InitState  InitStateConfig `yaml:"init_state"`
	Timeline   TimelineConfig  `yaml:"timeline"`
	Integrator string          `yaml:"integrator"`
	Solver     SolverConfig    `yaml:"solver"`
	Log        LogConfig       `yaml:"log"`
}

// DesignConfig is in SI units: metres and kg·m².
type DesignConfig struct {
	R1  float64 `yaml:"r1"`
	R2  float64 `yaml:"r2"`
	D1  float64 `yaml:"d1"`
	D2  float64 `yaml:"d2"`
	Ixx float64 `yaml:"ixx"`
	Iyy float64 `yaml:"iyy"`
	Izz float64 `yaml:"izz"`
}

// MotorConfig names a thrust curve source: "catalog:NAME", a .eng file path
// or a thrustcurve.org URL.
type MotorConfig struct {
	Source string  `yaml:"source"`
	Delay  float64 `yaml:"delay"`
	Grains int     `yaml:"grains"`
}

type InitStateConfig struct {
	WX    float64 `yaml:"wx"`
	WY    float64 `yaml:"wy"`
	WZ    float64 `yaml:"wz"`
	Psi   float64 `yaml:"psi"`
	Theta float64 `yaml:"theta"`
	Phi   float64 `yaml:"phi"`
}

type TimelineConfig struct {
	Start   float64 `yaml:"start"`
	End     float64 `yaml:"end"`
	Samples int     `yaml:"samples"`
}

type SolverConfig struct {
	RelTol      float64 `yaml:"rel_tol"`
	AbsTol      float64 `yaml:"abs_tol"`
	InitialStep float64 `yaml:"initial_step"`
	MinStep     float64 `yaml:"min_step"`
	MaxStep     float64 `yaml:"max_step"`
	MaxSteps    int     `yaml:"max_steps"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	d := physics.DefaultDesign()
	s := dynamo.DefaultConfig()
	return &Config{
		Design: DesignConfig{
			R1: d.R1, R2: d.R2, D1: d.D1, D2: d.D2,
			Ixx: d.Ixx, Iyy: d.Iyy, Izz: d.Izz,
		},
		Motors: []MotorConfig{
			{Source: DefaultMotor, Grains: DefaultGrains},
			{Source: DefaultMotor, Grains: DefaultGrains, Delay: DefaultDelay},
		},
		Timeline: TimelineConfig{
			End:     DefaultEnd,
			Samples: DefaultSamples,
		},
		Integrator: DefaultIntegrator,
		Solver: SolverConfig{
			RelTol:      s.RelTol,
			AbsTol:      s.AbsTol,
			InitialStep: s.InitialStep,
			MinStep:     s.MinStep,
			MaxStep:     s.MaxStep,
			MaxSteps:    s.MaxSteps,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
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

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Motors = append([]MotorConfig(nil), c.Motors...)
	return &out
}

func (c *Config) Validate() error {
	if _, err := c.VehicleDesign(); err != nil {
		return err
	}
	if len(c.Motors) != 2 {
		return fmt.Errorf("%w: need exactly 2 motors, got %d", dynamo.ErrInvalidInput, len(c.Motors))
	}
	for i, m := range c.Motors {
		if m.Source == "" {
			return fmt.Errorf("%w: motor %d has no source", dynamo.ErrInvalidInput, i+1)
		}
		if !(m.Delay >= 0) || math.IsInf(m.Delay, 0) {
			return fmt.Errorf("%w: motor %d delay %g", dynamo.ErrInvalidInput, i+1, m.Delay)
		}
		if m.Grains < 1 {
			return fmt.Errorf("%w: motor %d grains %d", dynamo.ErrInvalidInput, i+1, m.Grains)
		}
	}
	if !c.InitialState().IsValid() {
		return fmt.Errorf("%w: initial state is not finite", dynamo.ErrInvalidInput)
	}
	if c.Timeline.Samples < 1 {
		return fmt.Errorf("%w: timeline needs at least one sample", dynamo.ErrInvalidInput)
	}
	if err := dynamo.ValidateSpan(c.Span()); err != nil {
		return err
	}
	if c.Integrator == "" {
		return fmt.Errorf("%w: integrator not set", dynamo.ErrInvalidInput)
	}
	return c.SolverConfig().Validate()
}

func (c *Config) VehicleDesign() (physics.Design, error) {
	d := c.Design
	return physics.NewDesign(d.R1, d.R2, d.D1, d.D2, d.Ixx, d.Iyy, d.Izz)
}

func (c *Config) InitialState() dynamo.State {
	s := c.InitState
	return physics.BodyState{
		WX: s.WX, WY: s.WY, WZ: s.WZ,
		Psi: s.Psi, Theta: s.Theta, Phi: s.Phi,
	}.State()
}

// Span returns the requested output times.
func (c *Config) Span() []float64 {
	return dynamo.Linspace(c.Timeline.Start, c.Timeline.End, c.Timeline.Samples)
}

func (c *Config) SolverConfig() dynamo.Config {
	s := c.Solver
	return dynamo.Config{
		RelTol:      s.RelTol,
		AbsTol:      s.AbsTol,
		InitialStep: s.InitialStep,
		MinStep:     s.MinStep,
		MaxStep:     s.MaxStep,
		MaxSteps:    s.MaxSteps,
	}
}

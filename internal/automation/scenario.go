package automation

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/spinsim/internal/config"
	"github.com/san-kum/spinsim/internal/dynamo"
	"github.com/san-kum/spinsim/internal/experiment"
	"github.com/san-kum/spinsim/internal/logging"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (default when empty), optionally
// swaps the integrator, then sets sweep parameters by name.
type ScenarioStep struct {
	Label      string             `yaml:"label"`
	Preset     string             `yaml:"preset"`
	Integrator string             `yaml:"integrator"`
	Params     map[string]float64 `yaml:"params"`
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
		return nil, fmt.Errorf("%w: scenario %q has no steps", dynamo.ErrInvalidInput, scenario.Name)
	}
	return &scenario, nil
}

// StepConfig resolves one step into a run configuration and loads its motors.
func StepConfig(ctx context.Context, step ScenarioStep) (*config.Config, experiment.Config, error) {
	name := step.Preset
	if name == "" {
		name = "default"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, experiment.Config{}, fmt.Errorf("%w: unknown preset: %s", dynamo.ErrInvalidInput, name)
	}
	if step.Integrator != "" {
		cfg.Integrator = step.Integrator
	}

	expCfg, err := experiment.FromConfig(ctx, cfg)
	if err != nil {
		return nil, experiment.Config{}, err
	}
	expCfg.Label = step.Label

	keys := make([]string, 0, len(step.Params))
	for k := range step.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		apply, err := experiment.SweepParam(k)
		if err != nil {
			return nil, experiment.Config{}, err
		}
		apply(&expCfg, step.Params[k])
	}
	return cfg, expCfg, nil
}

// RunScenario executes all steps in order and stops at the first failure.
func RunScenario(ctx context.Context, scenario *Scenario, reg *experiment.Registry) ([]*experiment.Result, error) {
	log := logging.FromContext(ctx).With(logging.String("scenario", scenario.Name))
	results := make([]*experiment.Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		log.Info(ctx, "scenario step",
			logging.Int("step", i+1),
			logging.Int("of", len(scenario.Steps)),
			logging.String("label", step.Label))

		_, cfg, err := StepConfig(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		if cfg.Label == "" {
			cfg.Label = fmt.Sprintf("%s step %d", scenario.Name, i+1)
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(reg); err != nil {
			return nil, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, result)
	}
	return results, nil
}

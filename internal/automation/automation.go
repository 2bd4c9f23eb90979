package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/idealgas/internal/config"
	"github.com/san-kum/idealgas/internal/gas"
	"github.com/san-kum/idealgas/internal/metrics"
	"github.com/san-kum/idealgas/internal/sim"
	"github.com/san-kum/idealgas/internal/storage"
)

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// Scenario is a scripted sequence of runs loaded from YAML.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from Preset (default "default"), applies Params by
// name and then the remaining non-zero fields. SaveAs stores the run under
// that preset label when a store is given.
type ScenarioStep struct {
	Preset string             `yaml:"preset"`
	Policy string             `yaml:"policy"`
	Frames int                `yaml:"frames"`
	Seed   int64              `yaml:"seed"`
	Params map[string]float64 `yaml:"params"`
	SaveAs string             `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	return &scenario, nil
}

func (s ScenarioStep) Resolve() (*config.Config, error) {
	name := s.Preset
	if name == "" {
		name = "default"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}

	for k, v := range s.Params {
		if err := cfg.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	if s.Policy != "" {
		cfg.Policy = s.Policy
	}
	if s.Frames > 0 {
		cfg.Frames = s.Frames
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type StepResult struct {
	Step   int
	RunID  string
	Config *config.Config
	Result *sim.Result
}

// RunScenario executes every step in order and stops at the first failure,
// returning the results gathered so far. st may be nil.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, log io.Writer) ([]StepResult, error) {
	if log == nil {
		log = io.Discard
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		fmt.Fprintf(log, "running step %d/%d: %d particles, %d frames, %s\n",
			i+1, len(scenario.Steps), cfg.Particles, cfg.Frames, cfg.Policy)

		result, err := runConfig(ctx, cfg, 1)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: i + 1, Config: cfg, Result: result}
		if st != nil && step.SaveAs != "" {
			sr.RunID, err = st.Save(storage.RunInfo{
				Preset: step.SaveAs,
				Seed:   cfg.Seed,
				Config: cfg.GasConfig(),
				Border: gas.Color(cfg.BorderColor),
			}, result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}
	return results, nil
}

func runConfig(ctx context.Context, cfg *config.Config, recordEvery int) (*sim.Result, error) {
	gcfg := cfg.GasConfig()
	s := sim.New(gas.New(gcfg, rand.New(rand.NewSource(cfg.Seed))))
	for _, m := range metrics.Default(gcfg.Bounds) {
		s.AddMetric(m)
	}

	simCfg := sim.DefaultConfig()
	simCfg.Frames = cfg.Frames
	simCfg.RecordEvery = recordEvery
	return s.Run(ctx, simCfg)
}

// ParameterSweep runs Base once per evenly spaced value of Param in
// [Min, Max].
type ParameterSweep struct {
	Base     *config.Config
	Param    string
	Min      float64
	Max      float64
	NumSteps int
}

type SweepResult struct {
	ParamValue    float64
	Collisions    int
	WallBounces   int
	KineticEnergy float64
	EnergyDrift   float64
	Containment   float64
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, log io.Writer) ([]SweepResult, error) {
	if sweep.NumSteps <= 0 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	if log == nil {
		log = io.Discard
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.Min + float64(i)*paramStep

		cfg := sweep.Base.Clone()
		if err := cfg.SetParam(sweep.Param, paramVal); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.Param, paramVal, err)
		}

		result, err := runConfig(ctx, cfg, 0)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			ParamValue:    paramVal,
			Collisions:    result.Stats.Collisions,
			WallBounces:   result.Stats.WallBounces,
			KineticEnergy: result.Metrics["kinetic_energy"],
			EnergyDrift:   result.EnergyDrift,
			Containment:   result.Metrics["containment"],
		})

		fmt.Fprintf(log, "sweep %d/%d: %s=%.4f\n", i+1, sweep.NumSteps, sweep.Param, paramVal)
	}
	return results, nil
}

package config

import (
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/idealgas/internal/gas"
	"github.com/san-kum/idealgas/internal/viz"
)

const (
	DefaultFrames      = 600
	DefaultFPS         = 60
	DefaultBorderColor = "white"
)

var (
	ErrInvalidBounds        = errors.New("config: top_left must be above and left of bottom_right")
	ErrInvalidRadius        = errors.New("config: radius must be positive")
	ErrInvalidCount         = errors.New("config: particle count must not be negative")
	ErrInvalidVelocityRange = errors.New("config: min_velocity must not exceed max_velocity")
	ErrUnknownPolicy        = errors.New("config: unknown collision policy")
	ErrUnknownColor         = errors.New("config: unknown color")
)

type Config struct {
	Container   ContainerConfig `yaml:"container"`
	Particles   int             `yaml:"particles"`
	Radius      float64         `yaml:"radius"`
	Color       string          `yaml:"color"`
	BorderColor string          `yaml:"border_color"`
	MinVelocity float64         `yaml:"min_velocity"`
	MaxVelocity float64         `yaml:"max_velocity"`
	Policy      string          `yaml:"policy"`
	Frames      int             `yaml:"frames"`
	Seed        int64           `yaml:"seed"`
	FPS         int             `yaml:"fps"`
}

type ContainerConfig struct {
	TopLeft     [2]float64 `yaml:"top_left,flow"`
	BottomRight [2]float64 `yaml:"bottom_right,flow"`
}

func DefaultConfig() *Config {
	g := gas.DefaultConfig()
	return &Config{
		Container: ContainerConfig{
			TopLeft:     [2]float64{g.Bounds.TopLeft.X, g.Bounds.TopLeft.Y},
			BottomRight: [2]float64{g.Bounds.BottomRight.X, g.Bounds.BottomRight.Y},
		},
		Particles:   g.NumParticles,
		Radius:      g.Radius,
		Color:       string(g.Color),
		BorderColor: DefaultBorderColor,
		MinVelocity: g.MinVelocity,
		MaxVelocity: g.MaxVelocity,
		Policy:      string(g.Policy),
		Frames:      DefaultFrames,
		FPS:         DefaultFPS,
	}
}

// Load reads a YAML file on top of the defaults, so a file only needs the
// keys it wants to change.
func Load(path string) (*Config, error) {
	return LoadOnto(path, DefaultConfig())
}

// LoadOnto reads a YAML file on top of a copy of base. Keys missing from
// the file keep base's values.
func LoadOnto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
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

func (c *Config) Validate() error {
	tl, br := c.Container.TopLeft, c.Container.BottomRight
	if tl[0] >= br[0] || tl[1] >= br[1] {
		return fmt.Errorf("%w: got %v and %v", ErrInvalidBounds, tl, br)
	}
	if c.Radius <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidRadius, c.Radius)
	}
	if 2*c.Radius >= br[0]-tl[0] || 2*c.Radius >= br[1]-tl[1] {
		return fmt.Errorf("%w: diameter %g does not fit in the container", ErrInvalidRadius, 2*c.Radius)
	}
	if c.Particles < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCount, c.Particles)
	}
	if c.MinVelocity > c.MaxVelocity {
		return fmt.Errorf("%w: got [%g, %g]", ErrInvalidVelocityRange, c.MinVelocity, c.MaxVelocity)
	}
	if _, err := gas.ParsePolicy(c.Policy); err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownPolicy, c.Policy)
	}
	for _, col := range []string{c.Color, c.BorderColor} {
		if !viz.KnownColor(gas.Color(col)) {
			return fmt.Errorf("%w: %q (want #rrggbb or one of %v)", ErrUnknownColor, col, viz.ColorNames())
		}
	}
	return nil
}

// GasConfig converts the file representation into the physics settings.
// Call Validate first; an unknown policy falls back to direct.
func (c *Config) GasConfig() gas.Config {
	policy, err := gas.ParsePolicy(c.Policy)
	if err != nil {
		policy = gas.PolicyDirect
	}
	return gas.Config{
		Bounds: gas.Rect{
			TopLeft:     r2.Vec{X: c.Container.TopLeft[0], Y: c.Container.TopLeft[1]},
			BottomRight: r2.Vec{X: c.Container.BottomRight[0], Y: c.Container.BottomRight[1]},
		},
		NumParticles: c.Particles,
		Radius:       c.Radius,
		Color:        gas.Color(c.Color),
		MinVelocity:  c.MinVelocity,
		MaxVelocity:  c.MaxVelocity,
		Policy:       policy,
	}
}

var ErrUnknownParam = errors.New("config: unknown parameter")

// ParamNames lists the numeric settings SetParam understands. Display-only
// settings such as fps are left out since headless runs ignore them.
var ParamNames = []string{"particles", "radius", "min_velocity", "max_velocity", "frames"}

// SetParam sets one numeric setting by its YAML name. Integer settings are
// truncated.
func (c *Config) SetParam(name string, v float64) error {
	switch name {
	case "particles":
		c.Particles = int(v)
	case "radius":
		c.Radius = v
	case "min_velocity":
		c.MinVelocity = v
	case "max_velocity":
		c.MaxVelocity = v
	case "frames":
		c.Frames = int(v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

package config

import "sort"

var Presets = map[string]func() *Config{
	"default": DefaultConfig,
	"dense": func() *Config {
		c := DefaultConfig()
		c.Particles = 80
		c.Radius = 6
		c.Color = "cyan"
		return c
	},
	"sparse": func() *Config {
		c := DefaultConfig()
		c.Particles = 5
		c.Radius = 15
		return c
	},
	"hot": func() *Config {
		c := DefaultConfig()
		c.MinVelocity = -8
		c.MaxVelocity = 8
		c.Color = "red"
		return c
	},
	"substep": func() *Config {
		c := DefaultConfig()
		c.Particles = 40
		c.Radius = 8
		c.Policy = "substep"
		return c
	},
	"pair": func() *Config {
		c := DefaultConfig()
		c.Particles = 2
		c.Radius = 30
		c.Color = "yellow"
		return c
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

package gas

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	DefaultNumParticles = 15
	DefaultMinVelocity  = -3.0
	DefaultMaxVelocity  = 3.0
)

// Rect is an axis-aligned box. TopLeft holds the smaller coordinates on
// both axes (screen convention, y grows downward).
type Rect struct {
	TopLeft     r2.Vec
	BottomRight r2.Vec
}

func (r Rect) Width() float64  { return r.BottomRight.X - r.TopLeft.X }
func (r Rect) Height() float64 { return r.BottomRight.Y - r.TopLeft.Y }

// Contains reports whether p lies inside r, edges included, allowing eps of
// slack on every side.
func (r Rect) Contains(p r2.Vec, eps float64) bool {
	return p.X >= r.TopLeft.X-eps && p.X <= r.BottomRight.X+eps &&
		p.Y >= r.TopLeft.Y-eps && p.Y <= r.BottomRight.Y+eps
}

// Source is the random capability used to populate a container.
// *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

type Config struct {
	Bounds       Rect
	NumParticles int
	Radius       float64
	Color        Color
	MinVelocity  float64
	MaxVelocity  float64
	Policy       Policy
}

func DefaultConfig() Config {
	return Config{
		Bounds: Rect{
			TopLeft:     r2.Vec{X: 100, Y: 100},
			BottomRight: r2.Vec{X: 600, Y: 400},
		},
		NumParticles: DefaultNumParticles,
		Radius:       DefaultRadius,
		Color:        DefaultColor,
		MinVelocity:  DefaultMinVelocity,
		MaxVelocity:  DefaultMaxVelocity,
		Policy:       PolicyDirect,
	}
}

// Stats counts events since the container was built.
type Stats struct {
	Frames      int `json:"frames"`
	Collisions  int `json:"collisions"`
	WallBounces int `json:"wall_bounces"`
}

// Container owns the particles and advances them one frame at a time.
type Container struct {
	cfg       Config
	particles []Particle
	stats     Stats
}

// New populates a container with cfg.NumParticles particles of the
// configured radius and color, placed uniformly inside the walls and given
// uniform per-axis velocities in [MinVelocity, MaxVelocity].
func New(cfg Config, rng Source) *Container {
	c := &Container{
		cfg:       cfg,
		particles: make([]Particle, 0, cfg.NumParticles),
	}

	inset := r2.Vec{X: cfg.Radius, Y: cfg.Radius}
	lo := r2.Add(cfg.Bounds.TopLeft, inset)
	hi := r2.Sub(cfg.Bounds.BottomRight, inset)
	vlo := r2.Vec{X: cfg.MinVelocity, Y: cfg.MinVelocity}
	vhi := r2.Vec{X: cfg.MaxVelocity, Y: cfg.MaxVelocity}

	for i := 0; i < cfg.NumParticles; i++ {
		pos := randomVec(rng, lo, hi)
		vel := randomVec(rng, vlo, vhi)
		c.particles = append(c.particles, NewParticleWith(pos, vel, cfg.Color, cfg.Radius))
	}
	return c
}

// NewFromParticles builds a container around caller-supplied particles.
// Out-of-bounds positions snap to the nearest container corner and each
// velocity component is clamped to [MinVelocity, MaxVelocity].
// cfg.NumParticles is ignored.
func NewFromParticles(cfg Config, particles []Particle) *Container {
	c := &Container{
		cfg:       cfg,
		particles: make([]Particle, len(particles)),
	}
	copy(c.particles, particles)

	for i := range c.particles {
		p := &c.particles[i]
		p.SetPosition(c.clampPosition(p.Position()))
		p.SetVelocity(r2.Vec{
			X: clamp(p.Velocity().X, cfg.MinVelocity, cfg.MaxVelocity),
			Y: clamp(p.Velocity().Y, cfg.MinVelocity, cfg.MaxVelocity),
		})
	}
	c.cfg.NumParticles = len(c.particles)
	return c
}

func (c *Container) Bounds() Rect   { return c.cfg.Bounds }
func (c *Container) Config() Config { return c.cfg }
func (c *Container) Len() int       { return len(c.particles) }
func (c *Container) Stats() Stats   { return c.stats }
func (c *Container) Frame() int     { return c.stats.Frames }

// Particles returns a copy of the particles in insertion order.
func (c *Container) Particles() []Particle {
	out := make([]Particle, len(c.particles))
	copy(out, c.particles)
	return out
}

// AdvanceOneFrame moves the simulation forward by one tick. For each
// particle in order it first resolves collisions with every later particle,
// then moves it along x and y, reflecting off the walls.
func (c *Container) AdvanceOneFrame() {
	for i := range c.particles {
		c.resolveCollisions(i)
		c.moveX(&c.particles[i])
		c.moveY(&c.particles[i])
	}
	c.stats.Frames++
}

func (c *Container) Advance(frames int) {
	for i := 0; i < frames; i++ {
		c.AdvanceOneFrame()
	}
}

// clampPosition leaves in-bounds positions alone and sends anything outside
// to the corner closest to it.
func (c *Container) clampPosition(p r2.Vec) r2.Vec {
	b := c.cfg.Bounds
	if b.Contains(p, 0) {
		return p
	}
	return r2.Vec{
		X: nearest(p.X, b.TopLeft.X, b.BottomRight.X),
		Y: nearest(p.Y, b.TopLeft.Y, b.BottomRight.Y),
	}
}

func randomVec(rng Source, lo, hi r2.Vec) r2.Vec {
	return r2.Vec{
		X: lo.X + rng.Float64()*(hi.X-lo.X),
		Y: lo.Y + rng.Float64()*(hi.Y-lo.Y),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func nearest(v, a, b float64) float64 {
	if math.Abs(v-a) <= math.Abs(v-b) {
		return a
	}
	return b
}

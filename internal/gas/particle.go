package gas

import "gonum.org/v1/gonum/spatial/r2"

// Color names a particle's draw color. It has no effect on the physics.
type Color string

const (
	DefaultRadius = 10.0
	DefaultColor  = Color("orange")
)

// Particle is a single gas molecule. Radius and color are fixed when the
// particle is built; position and velocity are free to change and are not
// validated.
type Particle struct {
	position r2.Vec
	velocity r2.Vec
	radius   float64
	color    Color
}

// NewParticle builds a particle with the default radius and color.
func NewParticle(position, velocity r2.Vec) Particle {
	return NewParticleWith(position, velocity, DefaultColor, DefaultRadius)
}

func NewParticleWith(position, velocity r2.Vec, color Color, radius float64) Particle {
	return Particle{
		position: position,
		velocity: velocity,
		radius:   radius,
		color:    color,
	}
}

func (p Particle) Position() r2.Vec { return p.position }
func (p Particle) Velocity() r2.Vec { return p.velocity }
func (p Particle) Radius() float64  { return p.radius }
func (p Particle) Color() Color     { return p.color }

func (p *Particle) SetPosition(pos r2.Vec) { p.position = pos }
func (p *Particle) SetVelocity(vel r2.Vec) { p.velocity = vel }

// Speed is the magnitude of the particle's velocity.
func (p Particle) Speed() float64 { return r2.Norm(p.velocity) }

// KineticEnergy sums 1/2 |v|^2 over the particles. Mass is not modeled,
// every particle counts as unit mass.
func KineticEnergy(ps []Particle) float64 {
	e := 0.0
	for _, p := range ps {
		e += 0.5 * r2.Dot(p.velocity, p.velocity)
	}
	return e
}

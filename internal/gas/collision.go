package gas

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Policy selects how overlapping pairs are resolved.
type Policy string

const (
	// PolicyDirect swaps velocity components in place; the pair keeps the
	// overlapping positions it was found in.
	PolicyDirect Policy = "direct"
	// PolicySubstep rewinds the pair to the moment of contact, exchanges
	// velocities there and replays the rewound interval.
	PolicySubstep Policy = "substep"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyDirect, "":
		return PolicyDirect, nil
	case PolicySubstep:
		return PolicySubstep, nil
	}
	return "", fmt.Errorf("unknown collision policy %q", s)
}

// Colliding reports whether a and b overlap and are moving toward each
// other. Coincident particles never collide.
func Colliding(a, b Particle) bool {
	dx := r2.Sub(a.position, b.position)
	dv := r2.Sub(a.velocity, b.velocity)
	return r2.Norm(dx) < a.radius+b.radius && r2.Dot(dv, dx) < 0
}

// ElasticVelocity returns the post-collision velocity of a body at x1
// moving with v1 after hitting an equal-mass body at x2 moving with v2.
// Coincident positions leave v1 unchanged.
func ElasticVelocity(v1, v2, x1, x2 r2.Vec) r2.Vec {
	dx := r2.Sub(x1, x2)
	dist2 := r2.Dot(dx, dx)
	if dist2 == 0 {
		return v1
	}
	k := r2.Dot(r2.Sub(v1, v2), dx) / dist2
	return r2.Sub(v1, r2.Scale(k, dx))
}

// resolveCollisions checks particle i against every later particle. The
// current velocity of i is re-read for each pair so a particle touching two
// others in one frame conserves momentum across both exchanges.
func (c *Container) resolveCollisions(i int) {
	a := &c.particles[i]
	for j := i + 1; j < len(c.particles); j++ {
		b := &c.particles[j]
		if !Colliding(*a, *b) {
			continue
		}
		if c.cfg.Policy == PolicySubstep {
			substep(a, b)
		} else {
			exchange(a, b)
		}
		c.stats.Collisions++
	}
}

func exchange(a, b *Particle) {
	v1 := ElasticVelocity(a.velocity, b.velocity, a.position, b.position)
	v2 := ElasticVelocity(b.velocity, a.velocity, b.position, a.position)
	a.velocity, b.velocity = v1, v2
}

// substep rewinds a and b (at most one frame) to the time their surfaces
// touched, exchanges velocities at contact and then advances them by the
// rewound interval with the new velocities.
func substep(a, b *Particle) {
	t := contactTime(*a, *b)
	a.position = r2.Add(a.position, r2.Scale(t, a.velocity))
	b.position = r2.Add(b.position, r2.Scale(t, b.velocity))

	exchange(a, b)

	a.position = r2.Add(a.position, r2.Scale(-t, a.velocity))
	b.position = r2.Add(b.position, r2.Scale(-t, b.velocity))
}

// contactTime solves |dx + dv*t| = r1 + r2 for the most recent t <= 0,
// clamped to [-1, 0].
func contactTime(a, b Particle) float64 {
	dx := r2.Sub(a.position, b.position)
	dv := r2.Sub(a.velocity, b.velocity)
	sum := a.radius + b.radius

	qa := r2.Dot(dv, dv)
	if qa == 0 {
		return 0
	}
	qb := 2 * r2.Dot(dx, dv)
	qc := r2.Dot(dx, dx) - sum*sum

	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		disc = 0
	}
	t := (-qb - math.Sqrt(disc)) / (2 * qa)
	return clamp(t, -1, 0)
}

package metrics

import "github.com/san-kum/idealgas/internal/gas"

// Containment is the fraction of observed frames in which every particle
// centre was inside the container bounds.
type Containment struct {
	name       string
	bounds     gas.Rect
	eps        float64
	violations int
	samples    int
}

func NewContainment(bounds gas.Rect, eps float64) *Containment {
	return &Containment{
		name:   "containment",
		bounds: bounds,
		eps:    eps,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(frame int, ps []gas.Particle) {
	c.samples++
	for _, p := range ps {
		if !c.bounds.Contains(p.Position(), c.eps) {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}

package metrics

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/idealgas/internal/gas"
)

func MomentumOf(ps []gas.Particle) r2.Vec {
	var m r2.Vec
	for _, p := range ps {
		m = r2.Add(m, p.Velocity())
	}
	return m
}

// Momentum reports the mean magnitude of the total momentum. Wall bounces
// change it; pair collisions do not.
type Momentum struct {
	name    string
	samples int
	total   float64
}

func NewMomentum() *Momentum {
	return &Momentum{name: "momentum"}
}

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Observe(frame int, ps []gas.Particle) {
	m.total += r2.Norm(MomentumOf(ps))
	m.samples++
}

func (m *Momentum) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *Momentum) Reset() {
	m.total = 0
	m.samples = 0
}

package metrics

import (
	"github.com/san-kum/idealgas/internal/gas"
	"github.com/san-kum/idealgas/internal/sim"
)

// Default is the metric set attached to every recorded run.
func Default(bounds gas.Rect) []sim.Metric {
	return []sim.Metric{
		NewKineticEnergy(),
		NewEnergyDrift(),
		NewMomentum(),
		NewTotalSpeed(),
		NewContainment(bounds, 1e-6),
	}
}

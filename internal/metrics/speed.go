package metrics

import (
	"math"

	"github.com/san-kum/idealgas/internal/gas"
)

func TotalSpeedOf(ps []gas.Particle) float64 {
	total := 0.0
	for _, p := range ps {
		total += p.Speed()
	}
	return total
}

// TotalSpeed holds the sum of particle speeds at the last observed frame.
type TotalSpeed struct {
	name  string
	value float64
}

func NewTotalSpeed() *TotalSpeed {
	return &TotalSpeed{name: "total_speed"}
}

func (s *TotalSpeed) Name() string { return s.name }

func (s *TotalSpeed) Observe(frame int, ps []gas.Particle) {
	s.value = TotalSpeedOf(ps)
}

func (s *TotalSpeed) Value() float64 { return s.value }
func (s *TotalSpeed) Reset()         { s.value = 0 }

// SpeedHistogram buckets particle speeds into bins equal-width bins from 0
// to the fastest particle. It returns the counts and the bin width.
func SpeedHistogram(ps []gas.Particle, bins int) ([]float64, float64) {
	if bins <= 0 {
		return nil, 0
	}
	counts := make([]float64, bins)
	if len(ps) == 0 {
		return counts, 0
	}

	maxSpeed := 0.0
	for _, p := range ps {
		maxSpeed = math.Max(maxSpeed, p.Speed())
	}
	if maxSpeed == 0 {
		counts[0] = float64(len(ps))
		return counts, 0
	}

	width := maxSpeed / float64(bins)
	for _, p := range ps {
		idx := int(p.Speed() / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}
	return counts, width
}

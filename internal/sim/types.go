package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/idealgas/internal/gas"
)

var (
	// ErrInvalidState indicates a particle with a NaN or Inf coordinate.
	ErrInvalidState = errors.New("sim: invalid particle state (NaN or Inf detected)")

	// ErrContextCanceled indicates the run was interrupted.
	ErrContextCanceled = errors.New("sim: run canceled by context")
)

// Frame is a snapshot of every particle after a tick. Index 0 is the state
// before the first tick.
type Frame struct {
	Index     int
	Particles []gas.Particle
}

// IsValid reports whether every coordinate in the frame is finite.
func (f Frame) IsValid() bool {
	for _, p := range f.Particles {
		pos, vel := p.Position(), p.Velocity()
		for _, v := range [...]float64{pos.X, pos.Y, vel.X, vel.Y} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

type Metric interface {
	Name() string
	Observe(frame int, particles []gas.Particle)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

type Config struct {
	Frames int
	// RecordEvery keeps one snapshot every n frames; 0 disables recording.
	RecordEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Frames:        600,
		RecordEvery:   1,
		ValidateState: true,
	}
}

type Result struct {
	Frames      []Frame
	Metrics     map[string]float64
	Stats       gas.Stats
	FramesRun   int
	EnergyDrift float64
}

type SimError struct {
	Frame   int
	Message string
	Wrapped error
}

func (e SimError) Error() string {
	return fmt.Sprintf("frame %d: %s", e.Frame, e.Message)
}

func (e SimError) Unwrap() error { return e.Wrapped }

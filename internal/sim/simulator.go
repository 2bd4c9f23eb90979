package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/idealgas/internal/gas"
)

// Simulator drives a container for a fixed number of frames, feeding
// metrics and observers after every tick.
type Simulator struct {
	container *gas.Container
	metrics   []Metric
	observers []Observer
}

func New(c *gas.Container) *Simulator {
	return &Simulator{
		container: c,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Container() *gas.Container { return s.container }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	capacity := 1
	if cfg.RecordEvery > 0 {
		capacity += cfg.Frames / cfg.RecordEvery
	}
	result := &Result{
		Frames:  make([]Frame, 0, capacity),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	first := s.snapshot(0)
	s.observe(first)
	if cfg.RecordEvery > 0 {
		result.Frames = append(result.Frames, first)
	}
	initialEnergy := gas.KineticEnergy(first.Particles)

	last := first
	for i := 1; i <= cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, initialEnergy, last)
			return result, SimError{Frame: i, Message: "canceled", Wrapped: ErrContextCanceled}
		default:
		}

		s.container.AdvanceOneFrame()
		result.FramesRun++

		frame := s.snapshot(i)
		if cfg.ValidateState && !frame.IsValid() {
			s.finish(result, initialEnergy, last)
			return result, SimError{Frame: i, Message: "invalid state", Wrapped: ErrInvalidState}
		}

		s.observe(frame)
		if cfg.RecordEvery > 0 && i%cfg.RecordEvery == 0 {
			result.Frames = append(result.Frames, frame)
		}
		last = frame
	}

	s.finish(result, initialEnergy, last)
	return result, nil
}

// RunWithCallback streams frames to fn until it returns false, the frame
// budget runs out or ctx is canceled. Metrics and observers are not used.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, fn func(Frame) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	if !fn(s.snapshot(0)) {
		return nil
	}
	for i := 1; i <= cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.container.AdvanceOneFrame()
		frame := s.snapshot(i)
		if cfg.ValidateState && !frame.IsValid() {
			return fmt.Errorf("invalid state at frame %d: %w", i, ErrInvalidState)
		}
		if !fn(frame) {
			return nil
		}
	}
	return nil
}

func validateConfig(cfg Config) error {
	if cfg.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", cfg.Frames)
	}
	if cfg.RecordEvery < 0 {
		return fmt.Errorf("record interval must not be negative, got %d", cfg.RecordEvery)
	}
	return nil
}

func (s *Simulator) snapshot(i int) Frame {
	return Frame{Index: i, Particles: s.container.Particles()}
}

func (s *Simulator) observe(f Frame) {
	for _, m := range s.metrics {
		m.Observe(f.Index, f.Particles)
	}
	for _, o := range s.observers {
		o.OnFrame(f)
	}
}

func (s *Simulator) finish(result *Result, initialEnergy float64, last Frame) {
	result.Stats = s.container.Stats()
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(gas.KineticEnergy(last.Particles)-initialEnergy) / initialEnergy
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/idealgas/internal/sim"
)

type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisVX
	AxisVY
	AxisSpeed
)

var axisNames = [...]string{"x", "y", "vx", "vy", "speed"}

func (a Axis) String() string {
	if a < 0 || int(a) >= len(axisNames) {
		return "unknown"
	}
	return axisNames[a]
}

func ParseAxis(s string) (Axis, bool) {
	switch s {
	case "x":
		return AxisX, true
	case "y":
		return AxisY, true
	case "vx":
		return AxisVX, true
	case "vy":
		return AxisVY, true
	case "speed":
		return AxisSpeed, true
	}
	return 0, false
}

// Trace pulls one quantity of one particle out of a recording. Frames that
// do not contain the particle are skipped.
func Trace(frames []sim.Frame, particle int, axis Axis) []float64 {
	out := make([]float64, 0, len(frames))
	for _, f := range frames {
		if particle < 0 || particle >= len(f.Particles) {
			continue
		}
		p := f.Particles[particle]
		switch axis {
		case AxisX:
			out = append(out, p.Position().X)
		case AxisY:
			out = append(out, p.Position().Y)
		case AxisVX:
			out = append(out, p.Velocity().X)
		case AxisVY:
			out = append(out, p.Velocity().Y)
		default:
			out = append(out, p.Speed())
		}
	}
	return out
}

// PowerSpectrum returns the magnitude of the first half of the DFT of data
// after removing its mean.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	ps := make([]float64, len(coeffs)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantFrequency is the strongest non-DC frequency in cycles per sample.
func DominantFrequency(data []float64) float64 {
	ps := PowerSpectrum(data)
	if len(ps) < 2 {
		return 0
	}

	maxIdx := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[maxIdx] {
			maxIdx = i
		}
	}
	return float64(maxIdx) / float64(len(data))
}

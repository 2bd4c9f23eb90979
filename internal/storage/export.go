package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/idealgas/internal/sim"
)

type ParticleData struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Radius float64 `json:"radius"`
	Color  string  `json:"color"`
}

type FrameData struct {
	Index     int            `json:"index"`
	Particles []ParticleData `json:"particles"`
}

type ExportData struct {
	Run    RunMetadata `json:"run"`
	Steps  int         `json:"steps"`
	Frames []FrameData `json:"frames"`
}

// ExportJSON writes a run and its frames as a single indented document.
func ExportJSON(w io.Writer, meta RunMetadata, frames []sim.Frame) error {
	data := ExportData{
		Run:    meta,
		Steps:  len(frames),
		Frames: make([]FrameData, len(frames)),
	}

	for i, f := range frames {
		fd := FrameData{Index: f.Index, Particles: make([]ParticleData, len(f.Particles))}
		for j, p := range f.Particles {
			pos, vel := p.Position(), p.Velocity()
			fd.Particles[j] = ParticleData{
				X:      pos.X,
				Y:      pos.Y,
				VX:     vel.X,
				VY:     vel.Y,
				Radius: p.Radius(),
				Color:  string(p.Color()),
			}
		}
		data.Frames[i] = fd
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

package viz

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/idealgas/internal/gas"
)

// Projector maps container coordinates onto a canvas with one uniform scale
// so circles stay round. The bounds are centred on the canvas.
type Projector struct {
	bounds gas.Rect
	scale  float64
	offX   float64
	offY   float64
}

// NewProjector fits bounds into a w x h sub-pixel area.
func NewProjector(bounds gas.Rect, w, h int) Projector {
	bw, bh := bounds.Width(), bounds.Height()
	if bw <= 0 || bh <= 0 {
		return Projector{bounds: bounds, scale: 1}
	}

	scale := math.Min(float64(w-1)/bw, float64(h-1)/bh)
	return Projector{
		bounds: bounds,
		scale:  scale,
		offX:   (float64(w-1) - bw*scale) / 2,
		offY:   (float64(h-1) - bh*scale) / 2,
	}
}

func (p Projector) Scale() float64 { return p.scale }

func (p Projector) Point(v r2.Vec) (int, int) {
	x := p.offX + (v.X-p.bounds.TopLeft.X)*p.scale
	y := p.offY + (v.Y-p.bounds.TopLeft.Y)*p.scale
	return int(math.Round(x)), int(math.Round(y))
}

func (p Projector) Length(l float64) int {
	return int(math.Round(l * p.scale))
}

// DrawScene clears c and draws the container walls and one circle per
// particle in its own color.
func DrawScene(c *Canvas, proj Projector, bounds gas.Rect, particles []gas.Particle, border gas.Color) {
	c.Clear()

	c.Pen = Hex(border)
	x0, y0 := proj.Point(bounds.TopLeft)
	x1, y1 := proj.Point(bounds.BottomRight)
	c.DrawRect(x0, y0, x1, y1)

	for _, p := range particles {
		c.Pen = Hex(p.Color())
		x, y := proj.Point(p.Position())
		c.DrawCircle(x, y, proj.Length(p.Radius()))
	}
	c.Pen = ""
}

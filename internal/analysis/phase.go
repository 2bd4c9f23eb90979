package analysis

import (
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/idealgas/internal/sim"
)

// PhasePortrait pairs two quantities of one particle frame by frame, for
// example x against vx. Wall bounces show up as jumps between velocity
// levels and collisions as scattered points.
type PhasePortrait struct {
	X, Y   Axis
	Points []r2.Vec
}

func NewPhasePortrait(frames []sim.Frame, particle int, x, y Axis) *PhasePortrait {
	xs := Trace(frames, particle, x)
	ys := Trace(frames, particle, y)

	portrait := &PhasePortrait{X: x, Y: y, Points: make([]r2.Vec, len(xs))}
	for i := range xs {
		portrait.Points[i] = r2.Vec{X: xs[i], Y: ys[i]}
	}
	return portrait
}

// ASCII plots the points on a width x height grid with 10% padding on
// every side. Zero axes are drawn when they fall inside the plot.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX, rangeY = maxX-minX, maxY-minY

	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	for _, pt := range p.Points {
		r, c := row(pt.Y), col(pt.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			grid[r][c] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := 0; r < height; r++ {
			if c >= 0 && c < width && grid[r][c] == ' ' {
				grid[r][c] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := 0; c < width; c++ {
			if r >= 0 && r < height && grid[r][c] == ' ' {
				grid[r][c] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, line := range grid {
		sb.WriteString(string(line))
		sb.WriteRune('\n')
	}
	return sb.String()
}

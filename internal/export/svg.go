package export

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/idealgas/internal/gas"
	"github.com/san-kum/idealgas/internal/viz"
)

const (
	background = "#0a0a0a"
	margin     = 10.0
)

// FrameToSVG draws the container walls and every particle in container
// coordinates. Each trail is drawn as a polyline in the color of the
// particle with the same index.
func FrameToSVG(bounds gas.Rect, particles []gas.Particle, border gas.Color, trails ...[]r2.Vec) string {
	x0, y0 := bounds.TopLeft.X-margin, bounds.TopLeft.Y-margin
	w, h := bounds.Width()+2*margin, bounds.Height()+2*margin

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="%g %g %g %g">
<rect x="%g" y="%g" width="100%%" height="100%%" fill="%s"/>
<rect x="%g" y="%g" width="%g" height="%g" fill="none" stroke="%s" stroke-width="2"/>
`, w, h, x0, y0, w, h, x0, y0, background,
		bounds.TopLeft.X, bounds.TopLeft.Y, bounds.Width(), bounds.Height(), viz.Hex(border))

	for i, trail := range trails {
		if len(trail) < 2 || i >= len(particles) {
			continue
		}
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-opacity="0.5" stroke-width="1" d="`, viz.Hex(particles[i].Color()))
		for j, p := range trail {
			if j == 0 {
				fmt.Fprintf(&sb, "M%.2f,%.2f", p.X, p.Y)
			} else {
				fmt.Fprintf(&sb, " L%.2f,%.2f", p.X, p.Y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	for _, p := range particles {
		pos := p.Position()
		fmt.Fprintf(&sb, `<circle cx="%.2f" cy="%.2f" r="%g" fill="%s"/>
`, pos.X, pos.Y, p.Radius(), viz.Hex(p.Color()))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// Trails collects the position history of every particle across frames.
func Trails(frames [][]gas.Particle) [][]r2.Vec {
	if len(frames) == 0 {
		return nil
	}
	trails := make([][]r2.Vec, len(frames[0]))
	for _, ps := range frames {
		for i, p := range ps {
			if i < len(trails) {
				trails[i] = append(trails[i], p.Position())
			}
		}
	}
	return trails
}

var pixelMap = [4][2]int{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// CanvasToSVG renders every lit braille dot as a small circle, keeping the
// pen color of its cell.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	dotRadius := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)

			fill := canvas.Colors[row][col]
			if fill == "" {
				fill = "#00ff00"
			}

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, dotRadius, fill)
				}
			}
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

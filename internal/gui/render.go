package gui

import (
	"fmt"

	"github.com/san-kum/idealgas/internal/gas"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	a.drawContainer()
	a.DrawHUD()

	rl.EndDrawing()
}

func (a *App) point(x, y float64) (float32, float32) {
	b := a.Container.Bounds()
	return a.offX + float32(x-b.TopLeft.X)*a.scale, a.offY + float32(y-b.TopLeft.Y)*a.scale
}

func (a *App) drawContainer() {
	b := a.Container.Bounds()
	x, y := a.point(b.TopLeft.X, b.TopLeft.Y)
	rect := rl.NewRectangle(x, y, float32(b.Width())*a.scale, float32(b.Height())*a.scale)
	rl.DrawRectangleLinesEx(rect, 2, toColor(a.Opts.Border))

	for _, p := range a.Container.Particles() {
		pos := p.Position()
		px, py := a.point(pos.X, pos.Y)
		rl.DrawCircleV(rl.NewVector2(px, py), float32(p.Radius())*a.scale, toColor(p.Color()))
	}
}

func (a *App) DrawHUD() {
	a.drawText(a.Opts.Title, 30, 30, 24, ColSelect)

	stats := a.Container.Stats()
	ps := a.Container.Particles()
	a.drawText(fmt.Sprintf("frame %d  particles %d  collisions %d  bounces %d  energy %.3f",
		stats.Frames, len(ps), stats.Collisions, stats.WallBounces, gas.KineticEnergy(ps)),
		200, 34, 16, ColText)

	status := "RUNNING"
	col := ColSelect
	if !a.Running {
		status = "PAUSED"
		col = ColTextDim
	}
	a.drawText(status, 1150, 30, 16, col)

	a.DrawTelemetry()

	a.drawText("[SPACE] PAUSE  [S] STEP  [R] RESET  [Q] QUIT", 800, 680, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, 680, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

// DrawTelemetry plots the total speed history as a line strip.
func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 30, 610
	width, height := 400, 50

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("speed: %.2f", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}

package viz

import (
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/idealgas/internal/gas"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(2, 1)

	c.Set(0, 0)
	c.Set(3, 3)
	if c.Grid[0][0] != 0x2801 {
		t.Errorf("cell 0 = %U, want U+2801", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 {
		t.Errorf("cell 1 = %U, want U+2880", c.Grid[0][1])
	}

	c.Unset(0, 0)
	if c.Grid[0][0] != blank {
		t.Errorf("cell 0 not cleared: %U", c.Grid[0][0])
	}

	// out of range is ignored
	c.Set(-1, 0)
	c.Set(4, 0)
	c.Set(0, 4)
	if c.IsSet(4, 0) {
		t.Error("out of range dot reported as set")
	}
}

func TestCanvasClear(t *testing.T) {
	c := NewCanvas(3, 2)
	c.Pen = "#ff0000"
	c.DrawLine(0, 0, 5, 7)
	c.Clear()

	for i := range c.Grid {
		for j := range c.Grid[i] {
			if c.Grid[i][j] != blank || c.Colors[i][j] != "" {
				t.Fatalf("cell (%d,%d) not cleared", i, j)
			}
		}
	}
}

func TestDrawRect(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawRect(1, 1, 12, 10)

	for _, p := range [][2]int{{1, 1}, {12, 1}, {12, 10}, {1, 10}, {6, 1}, {1, 5}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("expected (%d,%d) on the rectangle", p[0], p[1])
		}
	}
	if c.IsSet(6, 5) {
		t.Error("rectangle interior should be empty")
	}
}

func TestDrawCircle(t *testing.T) {
	c := NewCanvas(20, 10)
	c.DrawCircle(20, 20, 5)

	for _, p := range [][2]int{{25, 20}, {15, 20}, {20, 25}, {20, 15}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("expected (%d,%d) on the circle", p[0], p[1])
		}
	}
	if c.IsSet(20, 20) {
		t.Error("circle centre should be empty")
	}

	dot := NewCanvas(2, 1)
	dot.DrawCircle(1, 1, 0)
	if !dot.IsSet(1, 1) {
		t.Error("zero radius should light the centre")
	}
}

func TestCanvasString(t *testing.T) {
	c := NewCanvas(4, 2)
	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if len([]rune(lines[0])) != 4 {
		t.Errorf("expected 4 cells, got %d", len([]rune(lines[0])))
	}
}

func TestProjector(t *testing.T) {
	bounds := gas.Rect{TopLeft: r2.Vec{X: 100, Y: 100}, BottomRight: r2.Vec{X: 600, Y: 400}}

	tests := []struct {
		name string
		w, h int
	}{
		{"wide", 161, 97},
		{"tall", 101, 301},
		{"exact", 501, 301},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProjector(bounds, tt.w, tt.h)

			x0, y0 := p.Point(bounds.TopLeft)
			x1, y1 := p.Point(bounds.BottomRight)
			if x0 < 0 || y0 < 0 || x1 > tt.w-1 || y1 > tt.h-1 {
				t.Errorf("bounds project outside area: (%d,%d)-(%d,%d)", x0, y0, x1, y1)
			}
			if x1-x0 != tt.w-1 && y1-y0 != tt.h-1 {
				t.Errorf("bounds should fill one axis: (%d,%d)-(%d,%d)", x0, y0, x1, y1)
			}
		})
	}

	exact := NewProjector(bounds, 501, 301)
	if x, y := exact.Point(r2.Vec{X: 350, Y: 250}); x != 250 || y != 150 {
		t.Errorf("centre projects to (%d,%d)", x, y)
	}
	if exact.Length(10) != 10 {
		t.Errorf("Length(10) = %d", exact.Length(10))
	}
}

func TestDrawScene(t *testing.T) {
	bounds := gas.Rect{TopLeft: r2.Vec{X: 0, Y: 0}, BottomRight: r2.Vec{X: 79, Y: 39}}
	c := NewCanvas(40, 10)
	proj := NewProjector(bounds, 80, 40)

	p := gas.NewParticleWith(r2.Vec{X: 40, Y: 20}, r2.Vec{}, "red", 5)
	DrawScene(c, proj, bounds, []gas.Particle{p}, "white")

	if !c.IsSet(0, 0) || !c.IsSet(79, 39) {
		t.Error("border corners not drawn")
	}
	if !c.IsSet(45, 20) {
		t.Error("particle outline not drawn")
	}
	if c.Colors[20/4][45/2] != Hex("red") {
		t.Errorf("particle cell color = %q", c.Colors[20/4][45/2])
	}
	if c.Colors[0][0] != Hex("white") {
		t.Errorf("border cell color = %q", c.Colors[0][0])
	}
	if c.Pen != "" {
		t.Error("pen should be reset after drawing")
	}
}

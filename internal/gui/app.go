package gui

import (
	"github.com/san-kum/idealgas/internal/gas"
	"github.com/san-kum/idealgas/internal/metrics"
	"github.com/san-kum/idealgas/internal/viz"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	windowWidth  = 1280
	windowHeight = 720
	maxTelemetry = 400
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
)

type Options struct {
	FPS    int
	Border gas.Color
	Title  string
}

// App owns the window state for one container. Build is called again on
// reset.
type App struct {
	Build     func() *gas.Container
	Container *gas.Container
	Opts      Options
	Running   bool
	Telemetry []float64
	Font      rl.Font

	scale      float32
	offX, offY float32
}

func initWindow(opts Options) {
	rl.InitWindow(windowWidth, windowHeight, opts.Title)
	rl.SetTargetFPS(int32(opts.FPS))
	rl.SetExitKey(rl.KeyQ)
}

// loadFont prefers Liberation Mono and falls back to raylib's built-in font.
func loadFont() rl.Font {
	font := rl.LoadFontEx("/usr/share/fonts/liberation/LiberationMono-Regular.ttf", 32, nil, 0)
	if font.Texture.ID == 0 {
		return rl.GetFontDefault()
	}
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

func NewApp(build func() *gas.Container, opts Options) *App {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Border == "" {
		opts.Border = "white"
	}
	if opts.Title == "" {
		opts.Title = "idealgas"
	}

	a := &App{
		Build:     build,
		Opts:      opts,
		Running:   true,
		Telemetry: make([]float64, 0, maxTelemetry),
		Font:      loadFont(),
	}
	a.reset()
	return a
}

// Run opens the window and blocks until it is closed.
func Run(build func() *gas.Container, opts Options) {
	initWindow(opts)
	defer rl.CloseWindow()

	app := NewApp(build, opts)
	app.RunLoop()
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		a.Update()
		a.Draw()
	}
}

func (a *App) reset() {
	a.Container = a.Build()
	a.Telemetry = a.Telemetry[:0]
	a.fit()
	a.record()
}

// fit centres the container in the window, leaving room for the HUD.
func (a *App) fit() {
	b := a.Container.Bounds()
	availW, availH := float32(windowWidth-120), float32(windowHeight-200)
	a.scale = min(availW/float32(b.Width()), availH/float32(b.Height()))
	a.offX = (windowWidth - float32(b.Width())*a.scale) / 2
	a.offY = 80 + (availH-float32(b.Height())*a.scale)/2
}

func (a *App) record() {
	a.Telemetry = append(a.Telemetry, metrics.TotalSpeedOf(a.Container.Particles()))
	if len(a.Telemetry) > maxTelemetry {
		a.Telemetry = a.Telemetry[1:]
	}
}

func (a *App) Update() {
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.reset()
		return
	}

	step := a.Running || rl.IsKeyPressed(rl.KeyS)
	if step {
		a.Container.AdvanceOneFrame()
		a.record()
	}
}

func toColor(c gas.Color) rl.Color {
	r, g, b := viz.RGB(c)
	return rl.NewColor(r, g, b, 255)
}

package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/idealgas/internal/gas"
	"github.com/san-kum/idealgas/internal/metrics"
)

const (
	canvasWidth     = 80
	canvasHeight    = 24
	historyCapacity = 600
)

var (
	canvasStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statsStyle  = lipgloss.NewStyle().Padding(1, 2).Width(46)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpText    = "SP:Pause S:Step R:Reset\nT:Theme  ?:Help   Q:Quit"
)

type TickMsg time.Time

type Options struct {
	Title  string
	FPS    int
	Border gas.Color
	Theme  string
}

// Model is the bubbletea program behind `idealgas live`. Each tick
// advances the container by one frame unless paused.
type Model struct {
	build     func() *gas.Container
	container *gas.Container
	opts      Options
	canvas    *Canvas
	proj      Projector
	running   bool
	showHelp  bool
	theme     int
	energy    []float64
	speed     []float64
}

// NewModel calls build once now and again on every reset.
func NewModel(build func() *gas.Container, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Border == "" {
		opts.Border = "white"
	}
	if opts.Title == "" {
		opts.Title = "ideal gas"
	}

	m := Model{
		build:   build,
		opts:    opts,
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		running: true,
		theme:   themeIndex(opts.Theme),
	}
	m.reset()
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "s":
			if !m.running {
				m.step()
			}
		case "r":
			m.reset()
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	m.container.AdvanceOneFrame()
	m.record()
}

func (m *Model) reset() {
	m.container = m.build()
	m.proj = NewProjector(m.container.Bounds(), canvasWidth*2, canvasHeight*4)
	m.energy = m.energy[:0]
	m.speed = m.speed[:0]
	m.record()
}

func (m *Model) record() {
	ps := m.container.Particles()
	m.energy = appendCapped(m.energy, gas.KineticEnergy(ps))
	m.speed = appendCapped(m.speed, metrics.TotalSpeedOf(ps))
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

func (m Model) Container() *gas.Container { return m.container }
func (m Model) Running() bool             { return m.running }
func (m Model) Theme() Theme              { return Themes[m.theme] }

func (m Model) View() string {
	theme := Themes[m.theme]
	DrawScene(m.canvas, m.proj, m.container.Bounds(), m.container.Particles(), m.opts.Border)
	canvasView := canvasStyle.BorderForeground(theme.Muted).Render(m.canvas.Render())

	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.opts.Title), theme.Primary, theme.Secondary) + "\n")
	if m.running {
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	stats := m.container.Stats()
	cfg := m.container.Config()
	rows := []struct{ label, value string }{
		{"Frame", fmt.Sprintf("%d", stats.Frames)},
		{"Particles", fmt.Sprintf("%d", m.container.Len())},
		{"Policy", string(cfg.Policy)},
		{"Collisions", fmt.Sprintf("%d", stats.Collisions)},
		{"Wall bounces", fmt.Sprintf("%d", stats.WallBounces)},
		{"Energy", fmt.Sprintf("%.4f", last(m.energy))},
		{"Total speed", fmt.Sprintf("%.4f", last(m.speed))},
	}
	for _, r := range rows {
		s.WriteString(MetricLabel.Render(r.label) + MetricValue.Render(r.value) + "\n")
	}

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString("\n" + MetricLabel.Render("Speed") + SparklineChart(m.speed, 30) + "\n")
	s.WriteString("\n" + KeyHint.Render(helpText))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  S        - Step one frame (paused)  ║
║  R        - Reset simulation         ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

func last(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return xs[len(xs)-1]
}

// RunLive blocks until the user quits.
func RunLive(build func() *gas.Container, opts Options) error {
	_, err := tea.NewProgram(NewModel(build, opts), tea.WithAltScreen()).Run()
	return err
}

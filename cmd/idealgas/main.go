package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/idealgas/internal/analysis"
	"github.com/san-kum/idealgas/internal/automation"
	"github.com/san-kum/idealgas/internal/config"
	"github.com/san-kum/idealgas/internal/export"
	"github.com/san-kum/idealgas/internal/gas"
	"github.com/san-kum/idealgas/internal/gui"
	"github.com/san-kum/idealgas/internal/metrics"
	"github.com/san-kum/idealgas/internal/optim"
	"github.com/san-kum/idealgas/internal/sim"
	"github.com/san-kum/idealgas/internal/storage"
	"github.com/san-kum/idealgas/internal/viz"
)

var (
	dataDir     string
	preset      string
	configFile  string
	particles   int
	radius      float64
	color       string
	border      string
	minVelocity float64
	maxVelocity float64
	policy      string
	frames      int
	seed        int64
	frameRate   int
	recordEvery int
	saveConfig  string
	theme       string
	// analyze
	particleIdx int
	axis        string
	phase       bool
	phaseAxis   string
	// svg
	frameIdx  int
	withTrail bool
	asCanvas  bool
	outFile   string
	// ensemble
	numRuns int
	// stream
	streamEvery int
	// sweep and search
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	gridSpec   []string
	metricName string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "idealgas",
		Short:        "2d ideal gas particle simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".idealgas", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and record it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().IntVar(&recordEvery, "record-every", 1, "record one frame every n frames (0 disables)")
	runCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the resolved config, seed included, to this yaml file")

	streamCmd := &cobra.Command{
		Use:   "stream",
		Short: "write frames as CSV while the simulation runs",
		Args:  cobra.NoArgs,
		RunE:  streamSimulation,
	}
	addSimFlags(streamCmd)
	streamCmd.Flags().IntVar(&streamEvery, "every", 1, "write one frame every n frames")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the gas in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "watch the gas in a window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
	addSimFlags(guiCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy, total speed and the final speed distribution",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis or phase portrait of one particle's trace",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&particleIdx, "particle", 0, "particle index")
	analyzeCmd.Flags().StringVar(&axis, "axis", "x", "quantity to analyze (x, y, vx, vy, speed)")
	analyzeCmd.Flags().BoolVar(&phase, "phase", false, "plot a phase portrait of --axis against --vs")
	analyzeCmd.Flags().StringVar(&phaseAxis, "vs", "vx", "vertical quantity of the phase portrait")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export recorded frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render one recorded frame as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().IntVar(&frameIdx, "frame", -1, "frame index (-1 for the last recorded frame)")
	svgCmd.Flags().BoolVar(&withTrail, "trail", false, "draw particle trails up to the frame")
	svgCmd.Flags().BoolVar(&asCanvas, "braille", false, "render through the terminal canvas")
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure frames per second for several particle counts",
		Args:  cobra.NoArgs,
		RunE:  benchContainer,
	}

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run several seeds concurrently and compare them",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addSimFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 4, "number of seeds")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run one parameter across a range of values",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "particles", "parameter to sweep ("+strings.Join(config.ParamNames, ", ")+")")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 5, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 50, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "grid search for the settings that minimize a metric",
		Args:  cobra.NoArgs,
		RunE:  runSearch,
	}
	addSimFlags(searchCmd)
	searchCmd.Flags().StringArrayVar(&gridSpec, "grid", nil, "name=v1,v2,... (repeatable; names: "+strings.Join(config.ParamNames, ", ")+")")
	searchCmd.Flags().StringVar(&metricName, "metric", "energy_drift", "metric to minimize")

	rootCmd.AddCommand(runCmd, streamCmd, liveCmd, guiCmd, listCmd, plotCmd, analyzeCmd, exportJSONCmd,
		exportCSVCmd, svgCmd, presetsCmd, benchCmd, ensembleCmd, scenarioCmd, sweepCmd, searchCmd)
	return rootCmd
}

func addSimFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().StringVar(&preset, "preset", "default", "preset configuration")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().IntVar(&particles, "particles", def.Particles, "number of particles")
	cmd.Flags().Float64Var(&radius, "radius", def.Radius, "particle radius")
	colors := "name or #rrggbb (" + strings.Join(viz.ColorNames(), ", ") + ")"
	cmd.Flags().StringVar(&color, "color", def.Color, "particle color: "+colors)
	cmd.Flags().StringVar(&border, "border", def.BorderColor, "container border color: "+colors)
	cmd.Flags().Float64Var(&minVelocity, "min-velocity", def.MinVelocity, "lowest initial velocity component")
	cmd.Flags().Float64Var(&maxVelocity, "max-velocity", def.MaxVelocity, "highest initial velocity component")
	cmd.Flags().StringVar(&policy, "policy", def.Policy, "collision policy (direct, substep)")
	cmd.Flags().IntVar(&frames, "frames", def.Frames, "number of frames")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().IntVar(&frameRate, "fps", def.FPS, "frame rate")
}

// resolveConfig layers the preset, then the config file, then any flag the
// user set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	if configFile != "" {
		fileCfg, err := config.LoadOnto(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
	}

	flags := cmd.Flags()
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	if flags.Changed("radius") {
		cfg.Radius = radius
	}
	if flags.Changed("color") {
		cfg.Color = color
	}
	if flags.Changed("border") {
		cfg.BorderColor = border
	}
	if flags.Changed("min-velocity") {
		cfg.MinVelocity = minVelocity
	}
	if flags.Changed("max-velocity") {
		cfg.MaxVelocity = maxVelocity
	}
	if flags.Changed("policy") {
		cfg.Policy = policy
	}
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func builder(cfg *config.Config) func() *gas.Container {
	gcfg := cfg.GasConfig()
	s := cfg.Seed
	return func() *gas.Container {
		return gas.New(gcfg, rand.New(rand.NewSource(s)))
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Fprintf(out, "config written to %s\n", saveConfig)
	}

	c := builder(cfg)()
	s := sim.New(c)
	for _, m := range metrics.Default(c.Bounds()) {
		s.AddMetric(m)
	}
	s.AddObserver(newProgress(out, cfg.Frames))

	fmt.Fprintf(out, "running %d particles for %d frames (policy %s, seed %d)...\n",
		c.Len(), cfg.Frames, cfg.Policy, cfg.Seed)
	start := time.Now()

	simCfg := sim.DefaultConfig()
	simCfg.Frames = cfg.Frames
	simCfg.RecordEvery = recordEvery
	result, err := s.Run(cmd.Context(), simCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunInfo{
		Preset: preset,
		Seed:   cfg.Seed,
		Config: c.Config(),
		Border: gas.Color(cfg.BorderColor),
	}, result)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "completed in %v\n", elapsed)
	fmt.Fprintf(out, "run id: %s\n", runID)
	fmt.Fprintf(out, "frames: %d (recorded %d)\n", result.FramesRun, len(result.Frames))
	fmt.Fprintf(out, "collisions: %d  wall bounces: %d\n", result.Stats.Collisions, result.Stats.WallBounces)
	fmt.Fprintln(out, "\nmetrics:")
	printMetrics(out, result.Metrics)
	return nil
}

// progress reports every tenth of a run and the final frame.
type progress struct {
	out   io.Writer
	total int
	step  int
}

func newProgress(out io.Writer, total int) *progress {
	return &progress{out: out, total: total, step: max(1, total/10)}
}

func (p *progress) OnFrame(f sim.Frame) {
	if f.Index == 0 || (f.Index%p.step != 0 && f.Index != p.total) {
		return
	}
	fmt.Fprintf(p.out, "  frame %d/%d (%d%%)\n", f.Index, p.total, 100*f.Index/p.total)
}

func streamSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if streamEvery <= 0 {
		return fmt.Errorf("every must be positive, got %d", streamEvery)
	}

	simCfg := sim.DefaultConfig()
	simCfg.Frames = cfg.Frames
	return streamFrames(cmd, sim.New(builder(cfg)()), simCfg, streamEvery)
}

// streamFrames writes every n-th frame as soon as it is produced and stops
// the run on the first write error.
func streamFrames(cmd *cobra.Command, s *sim.Simulator, cfg sim.Config, every int) error {
	fw := storage.NewFrameWriter(cmd.OutOrStdout())

	var writeErr error
	err := s.RunWithCallback(cmd.Context(), cfg, func(f sim.Frame) bool {
		if f.Index%every != 0 {
			return true
		}
		if writeErr = fw.Write(f); writeErr != nil {
			return false
		}
		writeErr = fw.Flush()
		return writeErr == nil
	})
	if err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}
	return fw.Flush()
}

func printMetrics(out io.Writer, m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %.6f\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	return viz.RunLive(builder(cfg), viz.Options{
		Title:  preset,
		FPS:    cfg.FPS,
		Border: gas.Color(cfg.BorderColor),
		Theme:  theme,
	})
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	gui.Run(builder(cfg), gui.Options{
		Title:  "idealgas :: " + preset,
		FPS:    cfg.FPS,
		Border: gas.Color(cfg.BorderColor),
	})
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tFRAMES\tPARTICLES\tPOLICY\tCOLLISIONS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%d\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Particles,
			run.Policy,
			run.Stats.Collisions,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Frame, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	recorded, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(recorded) == 0 {
		return nil, nil, fmt.Errorf("run %s has no recorded frames", runID)
	}
	return meta, recorded, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, recorded, err := loadRun(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "particles: %d  policy: %s\n", meta.Particles, meta.Policy)
	fmt.Fprintf(out, "samples: %d\n\n", len(recorded))

	energy := make([]float64, len(recorded))
	speed := make([]float64, len(recorded))
	for i, f := range recorded {
		energy[i] = gas.KineticEnergy(f.Particles)
		speed[i] = metrics.TotalSpeedOf(f.Particles)
	}

	for _, series := range []struct {
		caption string
		data    []float64
	}{
		{"kinetic energy", energy},
		{"total speed", speed},
	} {
		if len(series.data) < 2 {
			continue
		}
		fmt.Fprintln(out, asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		))
		fmt.Fprintln(out)
	}

	last := recorded[len(recorded)-1]
	counts, width := metrics.SpeedHistogram(last.Particles, 10)
	fmt.Fprintf(out, "speed distribution at frame %d:\n", last.Index)
	for i, n := range counts {
		fmt.Fprintf(out, "  %6.2f-%6.2f | %s %d\n",
			float64(i)*width, float64(i+1)*width, strings.Repeat("#", int(n)), int(n))
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, recorded, err := loadRun(args[0])
	if err != nil {
		return err
	}

	ax, ok := analysis.ParseAxis(axis)
	if !ok {
		return fmt.Errorf("unknown axis: %s", axis)
	}

	if phase {
		vs, ok := analysis.ParseAxis(phaseAxis)
		if !ok {
			return fmt.Errorf("unknown axis: %s", phaseAxis)
		}
		return plotPhase(cmd.OutOrStdout(), meta, recorded, ax, vs)
	}

	data := analysis.Trace(recorded, particleIdx, ax)
	if len(data) < 4 {
		return fmt.Errorf("not enough samples for particle %d", particleIdx)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "frequency analysis: %s\n", meta.ID)
	fmt.Fprintf(out, "particle %d, %s, %d samples\n\n", particleIdx, axis, len(data))

	ps := analysis.PowerSpectrum(data)
	plotData := ps[:max(2, len(ps)/4)]
	fmt.Fprintln(out, asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum ("+axis+")"),
	))
	fmt.Fprintln(out)

	// samples may be spaced more than one frame apart
	spacing := 1.0
	if len(recorded) > 1 {
		spacing = float64(recorded[1].Index - recorded[0].Index)
	}
	freq := analysis.DominantFrequency(data) / spacing
	fmt.Fprintf(out, "dominant frequency: %.5f cycles/frame\n", freq)
	if freq > 0 {
		fmt.Fprintf(out, "period: %.1f frames\n", 1.0/freq)
	}
	return nil
}

func plotPhase(out io.Writer, meta *storage.RunMetadata, recorded []sim.Frame, x, y analysis.Axis) error {
	portrait := analysis.NewPhasePortrait(recorded, particleIdx, x, y)
	if len(portrait.Points) == 0 {
		return fmt.Errorf("particle %d was not recorded", particleIdx)
	}

	fmt.Fprintf(out, "phase portrait: %s\n", meta.ID)
	fmt.Fprintf(out, "particle %d, %s (horizontal) vs %s (vertical), %d samples\n\n",
		particleIdx, x, y, len(portrait.Points))
	fmt.Fprint(out, portrait.ASCII(80, 24))
	return nil
}

// output opens outFile or falls back to the command's stdout.
func output(cmd *cobra.Command) (io.Writer, func() error, error) {
	if outFile == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, recorded, err := loadRun(args[0])
	if err != nil {
		return err
	}

	w, closeFn, err := output(cmd)
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, *meta, recorded); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, recorded, err := loadRun(args[0])
	if err != nil {
		return err
	}

	w, closeFn, err := output(cmd)
	if err != nil {
		return err
	}
	if err := storage.WriteFramesCSV(w, recorded); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, recorded, err := loadRun(args[0])
	if err != nil {
		return err
	}

	idx := len(recorded) - 1
	if frameIdx >= 0 {
		idx = -1
		for i, f := range recorded {
			if f.Index == frameIdx {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("frame %d was not recorded", frameIdx)
		}
	}
	frame := recorded[idx]
	bounds := meta.Bounds.Rect()
	borderColor := meta.Border
	if borderColor == "" {
		borderColor = config.DefaultBorderColor
	}

	var svg string
	if asCanvas {
		canvas := viz.NewCanvas(80, 24)
		proj := viz.NewProjector(bounds, canvas.Width*2, canvas.Height*4)
		viz.DrawScene(canvas, proj, bounds, frame.Particles, borderColor)
		svg = export.CanvasToSVG(canvas, 4)
	} else {
		var trails [][]gas.Particle
		if withTrail {
			for _, f := range recorded[:idx+1] {
				trails = append(trails, f.Particles)
			}
		}
		svg = export.FrameToSVG(bounds, frame.Particles, borderColor, export.Trails(trails)...)
	}

	w, closeFn, err := output(cmd)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, svg); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPARTICLES\tRADIUS\tVELOCITY\tPOLICY\tCOLOR")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%g\t[%g, %g]\t%s\t%s\n",
			name, p.Particles, p.Radius, p.MinVelocity, p.MaxVelocity, p.Policy, p.Color)
	}
	return w.Flush()
}

func benchContainer(cmd *cobra.Command, args []string) error {
	const benchFrames = 500
	counts := []int{15, 50, 100, 200}
	policies := []gas.Policy{gas.PolicyDirect, gas.PolicySubstep}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "benchmarking %d frames\n\n", benchFrames)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tPOLICY\tCOLLISIONS\tTIME\tFRAMES/SEC")

	for _, n := range counts {
		for _, p := range policies {
			cfg := gas.DefaultConfig()
			cfg.NumParticles = n
			cfg.Radius = 4
			cfg.Policy = p
			c := gas.New(cfg, rand.New(rand.NewSource(42)))

			start := time.Now()
			c.Advance(benchFrames)
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%s\t%d\t%v\t%.0f\n",
				n, p, c.Stats().Collisions, elapsed, float64(benchFrames)/elapsed.Seconds())
		}
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if numRuns <= 0 {
		return fmt.Errorf("runs must be positive, got %d", numRuns)
	}

	gcfg := cfg.GasConfig()
	ens := sim.NewEnsemble(gcfg, numRuns, cfg.Seed, func() []sim.Metric {
		return metrics.Default(gcfg.Bounds)
	})

	simCfg := sim.DefaultConfig()
	simCfg.Frames = cfg.Frames
	simCfg.RecordEvery = 0

	start := time.Now()
	results, err := ens.Run(cmd.Context(), simCfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d runs of %d frames in %v\n\n", numRuns, cfg.Frames, time.Since(start))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tCOLLISIONS\tBOUNCES\tENERGY\tDRIFT\tCONTAINED")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.4f\t%.2e\t%.3f\n",
			cfg.Seed+int64(i),
			r.Stats.Collisions,
			r.Stats.WallBounces,
			r.Metrics["kinetic_energy"],
			r.EnergyDrift,
			r.Metrics["containment"],
		)
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if sc.Name != "" {
		fmt.Fprintf(out, "scenario: %s\n", sc.Name)
	}
	results, err := automation.RunScenario(cmd.Context(), sc, st, out)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tPARTICLES\tFRAMES\tPOLICY\tCOLLISIONS\tDRIFT\tRUN")
	for _, r := range results {
		runID := r.RunID
		if runID == "" {
			runID = "-"
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%d\t%.2e\t%s\n",
			r.Step, r.Config.Particles, r.Result.FramesRun, r.Config.Policy,
			r.Result.Stats.Collisions, r.Result.EnergyDrift, runID)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:     cfg,
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
	}, out)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tCOLLISIONS\tBOUNCES\tENERGY\tDRIFT\tCONTAINED\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%d\t%d\t%.4f\t%.2e\t%.3f\n",
			r.ParamValue, r.Collisions, r.WallBounces, r.KineticEnergy, r.EnergyDrift, r.Containment)
	}
	return w.Flush()
}

// parseGrid reads "name=v1,v2" specs in order.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("grid spec %q: want name=v1,v2", spec)
		}
		var vals []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid spec %q: %w", spec, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

// searchBuild applies one grid point to a copy of base. The run length
// follows the candidate's frames so a grid over frames takes effect.
func searchBuild(base *config.Config) optim.Build {
	return func(params map[string]float64) (*sim.Simulator, sim.Config, error) {
		c := base.Clone()
		for k, v := range params {
			if err := c.SetParam(k, v); err != nil {
				return nil, sim.Config{}, err
			}
		}
		if err := c.Validate(); err != nil {
			return nil, sim.Config{}, fmt.Errorf("%v: %w", params, err)
		}

		s := sim.New(builder(c)())
		for _, m := range metrics.Default(c.GasConfig().Bounds) {
			s.AddMetric(m)
		}

		simCfg := sim.DefaultConfig()
		simCfg.Frames = c.Frames
		simCfg.RecordEvery = 0
		return s, simCfg, nil
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	names, ranges, err := parseGrid(gridSpec)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("at least one --grid is required")
	}

	best, val, all, err := optim.NewGridSearch(names, ranges).Search(cmd.Context(), searchBuild(cfg), metricName)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(metricName))
	for _, c := range all {
		for _, n := range names {
			fmt.Fprintf(w, "%g\t", c.Params[n])
		}
		fmt.Fprintf(w, "%.6g\n", c.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nbest %s = %.6g at", metricName, val)
	for _, n := range names {
		fmt.Fprintf(out, " %s=%g", n, best[n])
	}
	fmt.Fprintln(out)
	return nil
}

package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/idealgas/internal/gas"
	"github.com/san-kum/idealgas/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var ErrMalformedRow = errors.New("storage: malformed frame row")

var frameHeader = []string{"frame", "particle", "x", "y", "vx", "vy", "radius", "color"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type Bounds struct {
	TopLeft     [2]float64 `json:"top_left"`
	BottomRight [2]float64 `json:"bottom_right"`
}

func BoundsOf(r gas.Rect) Bounds {
	return Bounds{
		TopLeft:     [2]float64{r.TopLeft.X, r.TopLeft.Y},
		BottomRight: [2]float64{r.BottomRight.X, r.BottomRight.Y},
	}
}

func (b Bounds) Rect() gas.Rect {
	return gas.Rect{
		TopLeft:     r2.Vec{X: b.TopLeft[0], Y: b.TopLeft[1]},
		BottomRight: r2.Vec{X: b.BottomRight[0], Y: b.BottomRight[1]},
	}
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Preset      string             `json:"preset"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Frames      int                `json:"frames"`
	Particles   int                `json:"particles"`
	Policy      string             `json:"policy"`
	Bounds      Bounds             `json:"bounds"`
	Border      gas.Color          `json:"border_color,omitempty"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
	Stats       gas.Stats          `json:"stats"`
}

// RunInfo describes how a run was set up.
type RunInfo struct {
	Preset string
	Seed   int64
	Config gas.Config
	Border gas.Color
}

// Save writes a run directory holding metadata.json and frames.csv and
// returns the run ID. A run that fails to save leaves no directory behind.
func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", info.Preset, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	numParticles := info.Config.NumParticles
	if len(result.Frames) > 0 {
		numParticles = len(result.Frames[0].Particles)
	}

	meta := RunMetadata{
		ID:          runID,
		Preset:      info.Preset,
		Timestamp:   now,
		Seed:        info.Seed,
		Frames:      result.FramesRun,
		Particles:   numParticles,
		Policy:      string(info.Config.Policy),
		Bounds:      BoundsOf(info.Config.Bounds),
		Border:      info.Border,
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
		Stats:       result.Stats,
	}

	if err := writeRun(runDir, meta, result.Frames); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

// writeRun writes the frames before the metadata, so List never sees a
// run whose frames are missing.
func writeRun(dir string, meta RunMetadata, frames []sim.Frame) error {
	err := writeFile(filepath.Join(dir, framesFile), func(w io.Writer) error {
		return WriteFramesCSV(w, frames)
	})
	if err != nil {
		return fmt.Errorf("write frames: %w", err)
	}

	err = writeFile(filepath.Join(dir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
	if err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(f)
}

// FrameWriter streams frames as CSV rows in the format ReadFramesCSV
// reads. The header goes out with the first frame or on Flush.
type FrameWriter struct {
	w      *csv.Writer
	row    []string
	header bool
}

func NewFrameWriter(out io.Writer) *FrameWriter {
	return &FrameWriter{w: csv.NewWriter(out), row: make([]string, len(frameHeader))}
}

func (fw *FrameWriter) writeHeader() error {
	if fw.header {
		return nil
	}
	fw.header = true
	return fw.w.Write(frameHeader)
}

// Write emits one row per particle of f.
func (fw *FrameWriter) Write(f sim.Frame) error {
	if err := fw.writeHeader(); err != nil {
		return err
	}
	row := fw.row
	for i, p := range f.Particles {
		pos, vel := p.Position(), p.Velocity()
		row[0] = strconv.Itoa(f.Index)
		row[1] = strconv.Itoa(i)
		row[2] = formatFloat(pos.X)
		row[3] = formatFloat(pos.Y)
		row[4] = formatFloat(vel.X)
		row[5] = formatFloat(vel.Y)
		row[6] = formatFloat(p.Radius())
		row[7] = string(p.Color())
		if err := fw.w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (fw *FrameWriter) Flush() error {
	if err := fw.writeHeader(); err != nil {
		return err
	}
	fw.w.Flush()
	return fw.w.Error()
}

// WriteFramesCSV writes one row per particle per frame.
func WriteFramesCSV(out io.Writer, frames []sim.Frame) error {
	fw := NewFrameWriter(out)
	for _, f := range frames {
		if err := fw.Write(f); err != nil {
			return err
		}
	}
	return fw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the metadata of every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata for %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadFrames rebuilds the recorded frames of a run.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadFramesCSV(file)
}

// ReadFramesCSV parses the format written by WriteFramesCSV. Rows of the
// same frame must be contiguous.
func ReadFramesCSV(in io.Reader) ([]sim.Frame, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = len(frameHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Frame{}, nil
	}

	frames := make([]sim.Frame, 0)
	for line, record := range records[1:] {
		idx, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+2, ErrMalformedRow)
		}

		var vals [5]float64
		for k := range vals {
			vals[k], err = strconv.ParseFloat(record[k+2], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line+2, ErrMalformedRow)
			}
		}

		p := gas.NewParticleWith(
			r2.Vec{X: vals[0], Y: vals[1]},
			r2.Vec{X: vals[2], Y: vals[3]},
			gas.Color(record[7]),
			vals[4],
		)

		if n := len(frames); n == 0 || frames[n-1].Index != idx {
			frames = append(frames, sim.Frame{Index: idx})
		}
		last := &frames[len(frames)-1]
		last.Particles = append(last.Particles, p)
	}
	return frames, nil
}

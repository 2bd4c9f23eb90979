package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/idealgas/internal/gas"
	"github.com/san-kum/idealgas/internal/sim"
)

func testResult(t *testing.T, frames int) (gas.Config, *sim.Result) {
	t.Helper()

	cfg := gas.DefaultConfig()
	cfg.NumParticles = 4
	c := gas.New(cfg, rand.New(rand.NewSource(7)))

	result, err := sim.New(c).Run(context.Background(), sim.Config{Frames: frames, RecordEvery: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	result.Metrics["kinetic_energy"] = 1.5
	return cfg, result
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, result := testResult(t, 10)
	runID, err := st.Save(RunInfo{Preset: "default", Seed: 42, Config: cfg, Border: "red"}, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "default_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Preset != "default" {
		t.Errorf("expected preset 'default', got '%s'", meta.Preset)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Frames != 10 || meta.Particles != 4 {
		t.Errorf("expected 10 frames of 4 particles, got %d of %d", meta.Frames, meta.Particles)
	}
	if meta.Policy != "direct" {
		t.Errorf("expected policy direct, got %s", meta.Policy)
	}
	if meta.Border != "red" {
		t.Errorf("expected border red, got %q", meta.Border)
	}
	if meta.Bounds.Rect() != cfg.Bounds {
		t.Errorf("bounds roundtrip mismatch: %+v", meta.Bounds)
	}
	if meta.Metrics["kinetic_energy"] != 1.5 {
		t.Errorf("expected kinetic_energy 1.5, got %f", meta.Metrics["kinetic_energy"])
	}
	if meta.Stats != result.Stats {
		t.Errorf("stats mismatch: %+v vs %+v", meta.Stats, result.Stats)
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != len(result.Frames) {
		t.Fatalf("expected %d frames, got %d", len(result.Frames), len(frames))
	}
	for i := range frames {
		if frames[i].Index != result.Frames[i].Index {
			t.Errorf("frame %d: index %d", i, frames[i].Index)
		}
		for j, p := range frames[i].Particles {
			if p != result.Frames[i].Particles[j] {
				t.Errorf("frame %d particle %d: got %+v want %+v", i, j, p, result.Frames[i].Particles[j])
			}
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	cfg, result := testResult(t, 2)
	first, err := st.Save(RunInfo{Preset: "dense", Seed: 1, Config: cfg}, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := st.Save(RunInfo{Preset: "sparse", Seed: 2, Config: cfg}, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first || runs[1].ID != second {
		t.Errorf("runs not in save order: %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nope"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, result := testResult(t, 1)
	runID, err := st.Save(RunInfo{Preset: "default", Config: cfg}, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "frames.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	data, err := os.ReadFile(filepath.Join(runDir, "frames.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "frame,particle,x,y,vx,vy,radius,color" {
		t.Errorf("unexpected header %q", lines[0])
	}
	// two frames of four particles
	if len(lines) != 1+2*4 {
		t.Errorf("expected 9 lines, got %d", len(lines))
	}
}

func TestWriteRunFailureLeavesNoMetadata(t *testing.T) {
	runDir := t.TempDir()
	// a directory in the way makes creating frames.csv fail
	if err := os.Mkdir(filepath.Join(runDir, "frames.csv"), 0755); err != nil {
		t.Fatal(err)
	}

	_, result := testResult(t, 1)
	if err := writeRun(runDir, RunMetadata{ID: "broken"}, result.Frames); err == nil {
		t.Fatal("expected write error")
	}
	if _, err := os.Stat(filepath.Join(runDir, "metadata.json")); !os.IsNotExist(err) {
		t.Errorf("metadata.json written for a run without frames: %v", err)
	}

	st := New(filepath.Dir(runDir))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, r := range runs {
		if r.ID == "broken" {
			t.Error("half-written run listed")
		}
	}
}

func TestFrameWriterStreams(t *testing.T) {
	_, result := testResult(t, 3)

	var buf bytes.Buffer
	fw := NewFrameWriter(&buf)
	for _, f := range result.Frames {
		if err := fw.Write(f); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	if err := fw.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	var whole bytes.Buffer
	if err := WriteFramesCSV(&whole, result.Frames); err != nil {
		t.Fatal(err)
	}
	if buf.String() != whole.String() {
		t.Errorf("streamed output differs from WriteFramesCSV:\n%s\nvs\n%s", buf.String(), whole.String())
	}

	var empty bytes.Buffer
	if err := NewFrameWriter(&empty).Flush(); err != nil {
		t.Fatal(err)
	}
	if empty.String() != "frame,particle,x,y,vx,vy,radius,color\n" {
		t.Errorf("empty stream = %q, want header only", empty.String())
	}
}

func TestReadFramesCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		frames  int
		wantErr bool
	}{
		{"header only", "frame,particle,x,y,vx,vy,radius,color\n", 0, false},
		{"empty", "", 0, false},
		{
			"two frames",
			"frame,particle,x,y,vx,vy,radius,color\n0,0,1,2,3,4,10,red\n0,1,5,6,7,8,10,red\n5,0,1,2,3,4,10,red\n",
			2, false,
		},
		{"bad number", "frame,particle,x,y,vx,vy,radius,color\n0,0,x,2,3,4,10,red\n", 0, true},
		{"short row", "frame,particle,x,y,vx,vy,radius,color\n0,0,1\n", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames, err := ReadFramesCSV(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(frames) != tt.frames {
				t.Errorf("expected %d frames, got %d", tt.frames, len(frames))
			}
		})
	}
}

func TestReadFramesCSVMalformed(t *testing.T) {
	_, err := ReadFramesCSV(strings.NewReader("frame,particle,x,y,vx,vy,radius,color\nzero,0,1,2,3,4,10,red\n"))
	if !errors.Is(err, ErrMalformedRow) {
		t.Errorf("expected ErrMalformedRow, got %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	p := gas.NewParticleWith(r2.Vec{X: 150, Y: 200}, r2.Vec{X: 1, Y: -2}, "blue", 5)
	frames := []sim.Frame{{Index: 0, Particles: []gas.Particle{p}}}
	meta := RunMetadata{ID: "pair_1", Preset: "pair", Frames: 0, Particles: 1}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, frames); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Run.ID != "pair_1" || got.Steps != 1 {
		t.Errorf("unexpected header: %+v", got)
	}
	want := ParticleData{X: 150, Y: 200, VX: 1, VY: -2, Radius: 5, Color: "blue"}
	if got.Frames[0].Particles[0] != want {
		t.Errorf("particle = %+v, want %+v", got.Frames[0].Particles[0], want)
	}
}

package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestParseEmptyDocumentUsesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	d := Default()
	if cfg.Seed != d.Seed || cfg.Streaming.RenderDistance != d.Streaming.RenderDistance {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Streaming.GenerationWorkers < 1 || cfg.Streaming.MeshWorkers < 1 {
		t.Errorf("worker counts not derived: %+v", cfg.Streaming)
	}
	if cfg.Generation.SeaLevel != 70 || !cfg.Generation.Caves {
		t.Errorf("generation defaults = %+v", cfg.Generation)
	}
}

func TestParseOverrides(t *testing.T) {
	doc := `
seed: 1234
streaming:
  render_distance: 4
  max_render_distance: 12
  hysteresis: 3
  slow_tick: 5ms
generation:
  sea_level: 62
  caves: false
  resample_vegetation_biome: true
  warp_erosion: true
log:
  level: DEBUG
  format: json
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Seed != 1234 {
		t.Errorf("seed = %d", cfg.Seed)
	}
	s := cfg.Streaming
	if s.RenderDistance != 4 || s.MaxRenderDistance != 12 || s.Hysteresis != 3 || s.SlowTick != 5*time.Millisecond {
		t.Errorf("streaming = %+v", s)
	}
	if s.MaxInFlight != 16 {
		t.Errorf("unset key lost its default: max_in_flight = %d", s.MaxInFlight)
	}
	g := cfg.Generation.GeneratorOptions()
	if g.SeaLevel != 62 || g.Caves || !g.ResampleVegetationBiome || !g.WarpErosion {
		t.Errorf("generator options = %+v", g)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
}

func TestRenderDistanceClamped(t *testing.T) {
	for _, tc := range []struct{ in, want int }{{0, 1}, {-5, 1}, {40, 32}, {12, 12}} {
		cfg := Default()
		cfg.Streaming.RenderDistance = tc.in
		cfg.Streaming.MaxRenderDistance = 32
		cfg.Normalize()
		if cfg.Streaming.RenderDistance != tc.want {
			t.Errorf("render distance %d normalised to %d, want %d", tc.in, cfg.Streaming.RenderDistance, tc.want)
		}
	}
}

func TestMaxRenderDistanceCoversRenderDistance(t *testing.T) {
	cfg := Default()
	cfg.Streaming.RenderDistance = 20
	cfg.Streaming.MaxRenderDistance = 10
	cfg.Normalize()
	if cfg.Streaming.MaxRenderDistance != 20 {
		t.Errorf("max render distance = %d, want 20", cfg.Streaming.MaxRenderDistance)
	}
	opts := cfg.StreamerOptions()
	if opts.Radius != 20 || opts.MaxRadius != 20 {
		t.Errorf("streamer options = %+v", opts)
	}
}

func TestSchemaRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "streaming:\n  render_distnce: 4\n",
		"wrong type":    "seed: forty-two\n",
		"bad format":    "log:\n  format: xml\n",
		"bad duration":  "streaming:\n  slow_tick: soon\n",
		"negative hyst": "streaming:\n  hysteresis: -1\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: err = %v, want ErrInvalid", name, err)
		}
	}
}

func TestValidateSeaLevel(t *testing.T) {
	_, err := Parse([]byte("generation:\n  sea_level: 400\n"))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if !strings.Contains(err.Error(), "sea_level") {
		t.Errorf("error does not name the field: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxelstream.yaml")
	if err := os.WriteFile(path, []byte("seed: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Seed != 7 {
		t.Errorf("seed = %d", cfg.Seed)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file err = %v", err)
	}
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, LogConfig{Level: "info", Format: "json"}).Info("hello", "k", 1)
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("json handler not selected: %q", buf.String())
	}

	buf.Reset()
	log := NewLogger(&buf, LogConfig{Level: "warn", Format: "text"})
	log.Info("dropped")
	log.Warn("kept")
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Errorf("level filter not applied: %q", buf.String())
	}
}

func TestRenderSettingsClamp(t *testing.T) {
	s := NewRenderSettings(50, 16)
	if got := s.RenderDistance(); got != 16 {
		t.Errorf("initial distance = %d, want 16", got)
	}
	if got := s.Adjust(-100); got != MinRenderDistance {
		t.Errorf("Adjust(-100) = %d", got)
	}
	if got := s.SetRenderDistance(6); got != 6 {
		t.Errorf("SetRenderDistance(6) = %d", got)
	}
}

func TestRenderSettingsConcurrent(t *testing.T) {
	s := NewRenderSettings(8, 32)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(delta int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Adjust(delta)
				_ = s.RenderDistance()
			}
		}(i%2*2 - 1)
	}
	wg.Wait()
	if d := s.RenderDistance(); d < MinRenderDistance || d > 32 {
		t.Errorf("distance %d escaped its bounds", d)
	}
}

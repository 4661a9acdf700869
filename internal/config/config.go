package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"voxelstream/internal/world"
)

//go:embed config.schema.json
var schemaJSON string

// ErrInvalid is wrapped by every error caused by a bad config document.
var ErrInvalid = errors.New("invalid config")

// Render distance bounds in chunks.
const (
	MinRenderDistance = 1
	MaxRenderDistance = 32
)

// Config is the full runtime configuration of a streaming host.
type Config struct {
	Seed       int64            `yaml:"seed"`
	Streaming  StreamingConfig  `yaml:"streaming"`
	Generation GenerationConfig `yaml:"generation"`
	Assets     AssetsConfig     `yaml:"assets"`
	Log        LogConfig        `yaml:"log"`
}

// StreamingConfig mirrors world.StreamerOptions.
type StreamingConfig struct {
	RenderDistance    int           `yaml:"render_distance"`
	MaxRenderDistance int           `yaml:"max_render_distance"`
	Hysteresis        int           `yaml:"hysteresis"`
	MaxInFlight       int           `yaml:"max_in_flight"`
	GenerationWorkers int           `yaml:"generation_workers"`
	MeshWorkers       int           `yaml:"mesh_workers"`
	CompletionQueue   int           `yaml:"completion_queue"`
	UploadsPerTick    int           `yaml:"uploads_per_tick"`
	UploadsPerSecond  float64       `yaml:"uploads_per_second"`
	UploadBurst       int           `yaml:"upload_burst"`
	SlowTick          time.Duration `yaml:"slow_tick"`
}

// AssetsConfig locates on-disk assets.
type AssetsConfig struct {
	ModelsDir string `yaml:"models_dir"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Seed: 42,
		Streaming: StreamingConfig{
			RenderDistance:    8,
			MaxRenderDistance: 16,
			Hysteresis:        2,
			MaxInFlight:       16,
			CompletionQueue:   256,
			UploadsPerTick:    16,
			UploadBurst:       16,
			SlowTick:          20 * time.Millisecond,
		},
		Generation: DefaultGeneration(),
		Assets:     AssetsConfig{ModelsDir: "assets/models"},
		Log:        LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a YAML config file. Missing keys keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, or returns the normalised defaults when path is empty.
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		cfg.Normalize()
		return cfg, nil
	}
	return Load(path)
}

// Parse decodes, schema-checks, normalises and validates a YAML document.
func Parse(data []byte) (Config, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("%w: parse: %w", ErrInvalid, err)
	}
	if raw != nil {
		if err := checkSchema(raw); err != nil {
			return Config{}, err
		}
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: decode: %w", ErrInvalid, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func checkSchema(raw any) error {
	schema, err := jsonschema.CompileString("config.schema.json", schemaJSON)
	if err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	// The validator works on JSON values, so normalise YAML scalars first.
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Normalize clamps ranges and fills zero values with defaults.
func (c *Config) Normalize() {
	d := Default()
	s := &c.Streaming

	s.RenderDistance = clamp(s.RenderDistance, MinRenderDistance, MaxRenderDistance)
	if s.MaxRenderDistance <= 0 {
		s.MaxRenderDistance = d.Streaming.MaxRenderDistance
	}
	s.MaxRenderDistance = clamp(s.MaxRenderDistance, s.RenderDistance, MaxRenderDistance)
	if s.Hysteresis < 0 {
		s.Hysteresis = d.Streaming.Hysteresis
	}
	if s.MaxInFlight <= 0 {
		s.MaxInFlight = d.Streaming.MaxInFlight
	}
	if s.GenerationWorkers <= 0 {
		s.GenerationWorkers = max(1, runtime.NumCPU()-1)
	}
	if s.MeshWorkers <= 0 {
		s.MeshWorkers = max(1, runtime.NumCPU()/2)
	}
	if s.CompletionQueue <= 0 {
		s.CompletionQueue = d.Streaming.CompletionQueue
	}
	if s.UploadsPerTick <= 0 {
		s.UploadsPerTick = d.Streaming.UploadsPerTick
	}
	if s.UploadBurst <= 0 {
		s.UploadBurst = d.Streaming.UploadBurst
	}

	if c.Assets.ModelsDir == "" {
		c.Assets.ModelsDir = d.Assets.ModelsDir
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// Validate reports semantic errors the schema cannot express.
func (c *Config) Validate() error {
	if c.Streaming.UploadsPerSecond < 0 {
		return fmt.Errorf("%w: streaming.uploads_per_second cannot be negative", ErrInvalid)
	}
	if c.Streaming.SlowTick < 0 {
		return fmt.Errorf("%w: streaming.slow_tick cannot be negative", ErrInvalid)
	}
	if err := c.Generation.validate(); err != nil {
		return err
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// StreamerOptions converts the streaming section for world.NewChunkStreamer.
func (c *Config) StreamerOptions() world.StreamerOptions {
	s := c.Streaming
	return world.StreamerOptions{
		Radius:            s.RenderDistance,
		MaxRadius:         s.MaxRenderDistance,
		Hysteresis:        s.Hysteresis,
		MaxInFlight:       s.MaxInFlight,
		GenerationWorkers: s.GenerationWorkers,
		MeshWorkers:       s.MeshWorkers,
		CompletionQueue:   s.CompletionQueue,
		UploadsPerTick:    s.UploadsPerTick,
		UploadsPerSecond:  s.UploadsPerSecond,
		UploadBurst:       s.UploadBurst,
		SlowTick:          s.SlowTick,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Command voxelstream drives the chunk streamer without a window. It walks
// an observer through the world, logs streaming statistics and can dump
// the resident chunks for offline comparison.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/closer"

	"voxelstream/internal/config"
	"voxelstream/internal/meshing"
	"voxelstream/internal/profiling"
	"voxelstream/internal/registry"
	"voxelstream/internal/snapshot"
	"voxelstream/internal/world"
	"voxelstream/pkg/stampmodel"
)

type options struct {
	configPath string
	seed       int64
	radius     int
	ticks      int
	walk       float64
	interval   time.Duration
	dumpDir    string
	modelsDir  string
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "", "YAML config file")
	flag.Int64Var(&o.seed, "seed", 0, "world seed (overrides config)")
	flag.IntVar(&o.radius, "radius", 0, "render distance in chunks (overrides config)")
	flag.IntVar(&o.ticks, "ticks", 0, "ticks to run; 0 runs until the area around the observer settles")
	flag.Float64Var(&o.walk, "walk", 0, "blocks the observer moves along +x per tick")
	flag.DurationVar(&o.interval, "interval", 16*time.Millisecond, "delay between ticks")
	flag.StringVar(&o.dumpDir, "dump-dir", "", "write resident chunks here on exit")
	flag.StringVar(&o.modelsDir, "models", "", "stamp model directory (overrides config)")
	flag.Parse()
	return o
}

// applyOverrides copies explicitly set flags over the file configuration.
func applyOverrides(cfg *config.Config, o options) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Seed = o.seed
		case "radius":
			cfg.Streaming.RenderDistance = o.radius
			cfg.Streaming.MaxRenderDistance = max(cfg.Streaming.MaxRenderDistance, o.radius)
		case "models":
			cfg.Assets.ModelsDir = o.modelsDir
		}
	})
	cfg.Normalize()
}

func main() {
	defer closer.Close()

	o := parseFlags()
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		closer.Exit(2)
	}
	applyOverrides(&cfg, o)
	log := config.NewLogger(os.Stderr, cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	closer.Bind(func() {
		cancel()
		<-finished
	})

	if err := run(ctx, cfg, o, log, finished); err != nil {
		log.Error("voxelstream failed", "error", err)
		closer.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, o options, log *slog.Logger, finished chan struct{}) error {
	defer close(finished)

	reg := registry.Default()
	stamps := world.LoadStamps(stampmodel.DirFS(cfg.Assets.ModelsDir), reg, log)
	gen := world.NewGenerator(cfg.Seed, stamps, cfg.Generation.GeneratorOptions())
	store := world.NewChunkStore()
	streamer := world.NewChunkStreamer(cfg.StreamerOptions(), store, gen, meshing.NewBuilder(reg), world.NopUploader{}, log)
	defer streamer.Close()

	log.Info("streaming started",
		"seed", cfg.Seed,
		"radius", streamer.Radius(),
		"hysteresis", streamer.Hysteresis(),
		"generation_workers", cfg.Streaming.GenerationWorkers,
		"mesh_workers", cfg.Streaming.MeshWorkers)

	start := time.Now()
	pos := mgl32.Vec3{0, float32(cfg.Generation.SeaLevel), 0}
	var total world.TickStats
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for tick := 1; ; tick++ {
		profiling.ResetFrame()
		st := streamer.Tick(pos)
		accumulate(&total, st)

		if tick%60 == 0 {
			log.Debug("tick",
				"n", tick,
				"observer", streamer.Observer(),
				"resident", store.Len(),
				"in_flight", store.InFlightCount(),
				"uploaded", st.Uploaded,
				"evicted", st.Evicted)
		}

		if o.ticks > 0 && tick >= o.ticks {
			break
		}
		if o.ticks == 0 && o.walk == 0 && streamer.Settled() {
			break
		}

		select {
		case <-ctx.Done():
			log.Info("interrupted", "tick", tick)
			return nil
		case <-ticker.C:
		}
		pos[0] += float32(o.walk)
	}

	log.Info("streaming finished",
		"elapsed", time.Since(start).Round(time.Millisecond),
		"resident", store.Len(),
		"registered", total.Registered,
		"remeshed", total.Remeshed,
		"uploaded", total.Uploaded,
		"evicted", total.Evicted,
		"stale", total.Stale,
		"failures", streamer.Failures(),
		"abandoned", streamer.Abandoned())

	if o.dumpDir != "" {
		return dump(store, cfg.Seed, o.dumpDir, log)
	}
	return nil
}

func accumulate(total *world.TickStats, st world.TickStats) {
	total.Submitted += st.Submitted
	total.Registered += st.Registered
	total.Remeshed += st.Remeshed
	total.Uploaded += st.Uploaded
	total.Evicted += st.Evicted
	total.Stale += st.Stale
}

func dump(store *world.ChunkStore, seed int64, dir string, log *slog.Logger) error {
	for _, c := range store.Snapshot() {
		path, err := snapshot.WriteFile(dir, c, seed)
		if err != nil {
			return fmt.Errorf("dump chunk %v: %w", c.Coord, err)
		}
		log.Debug("chunk dumped", "coord", c.Coord, "path", path, "digest", snapshot.Digest(c))
	}
	log.Info("chunks dumped", "dir", dir, "count", store.Len())
	return nil
}

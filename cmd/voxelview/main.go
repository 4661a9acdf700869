// Command voxelview opens a window and flies a camera through the streamed
// world. WASD moves, space and shift rise and sink, the mouse looks around,
// +/- change the render distance and escape quits.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"voxelstream/internal/config"
	"voxelstream/internal/graphics"
	"voxelstream/internal/graphics/chunkbuf"
	"voxelstream/internal/meshing"
	"voxelstream/internal/profiling"
	"voxelstream/internal/registry"
	"voxelstream/internal/world"
	"voxelstream/pkg/stampmodel"
)

const (
	winW = 1280
	winH = 720

	flySpeed         = 24.0 // blocks per second
	mouseSensitivity = 0.1
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML config file")
	seed := flag.Int64("seed", 0, "world seed (overrides config)")
	fps := flag.Int("fps", 120, "frame rate cap, 0 disables")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			cfg.Seed = *seed
		}
	})
	log := config.NewLogger(os.Stderr, cfg.Log)

	if err := run(cfg, *fps, log); err != nil {
		log.Error("voxelview failed", "error", err)
		os.Exit(1)
	}
}

func setupWindow() (*glfw.Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(winW, winH, "voxelview", nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return nil, err
	}

	glfw.SwapInterval(0)
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	return window, nil
}

func run(cfg config.Config, fps int, log *slog.Logger) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	window, err := setupWindow()
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	log.Info("OpenGL context ready", "version", gl.GoStr(gl.GetString(gl.VERSION)))

	renderer, err := graphics.NewChunkRenderer()
	if err != nil {
		return err
	}
	defer renderer.Dispose()

	reg := registry.Default()
	stamps := world.LoadStamps(stampmodel.DirFS(cfg.Assets.ModelsDir), reg, log)
	gen := world.NewGenerator(cfg.Seed, stamps, cfg.Generation.GeneratorOptions())
	store := world.NewChunkStore()
	streamer := world.NewChunkStreamer(cfg.StreamerOptions(), store, gen, meshing.NewBuilder(reg), chunkbuf.NewUploader(), log)
	// Close releases GL buffers, so it must run before the context goes away.
	defer streamer.Close()

	spawnY := float32(gen.TargetHeightAt(0, 0)) + 20
	cam := graphics.NewCamera(winW, winH, mgl32.Vec3{0.5, spawnY, 0.5})
	render := config.NewRenderSettings(cfg.Streaming.RenderDistance, cfg.Streaming.MaxRenderDistance)
	bindInput(window, cam, render, streamer, log)

	gl.Enable(gl.DEPTH_TEST)
	gl.ClearColor(graphics.SkyColor.X(), graphics.SkyColor.Y(), graphics.SkyColor.Z(), 1)

	limiter := graphics.NewFrameLimiter(fps)
	frames := 0
	lastFPSCheck := time.Now()
	lastTime := time.Now()

	for !window.ShouldClose() {
		profiling.ResetFrame()
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()
		move(window, cam, dt)

		streamer.Tick(cam.Position)

		w, h := window.GetFramebufferSize()
		if h > 0 {
			cam.AspectRatio = float32(w) / float32(h)
		}
		gl.Viewport(0, 0, int32(w), int32(h))
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		renderer.Render(store, cam, float32(render.RenderDistance()*world.ChunkSize))

		func() { defer profiling.Track("glfw.SwapBuffers")(); window.SwapBuffers() }()
		frames++

		if time.Since(lastFPSCheck) >= time.Second {
			log.Info("frame stats",
				"fps", frames,
				"observer", streamer.Observer(),
				"resident", store.Len(),
				"drawn", renderer.Drawn,
				"in_flight", store.InFlightCount(),
				"top", profiling.TopN(3))
			frames = 0
			lastFPSCheck = time.Now()
		}
		limiter.Wait()
	}
	return nil
}

func bindInput(window *glfw.Window, cam *graphics.Camera, render *config.RenderSettings, streamer *world.ChunkStreamer, log *slog.Logger) {
	firstMouse := true
	var lastX, lastY float64
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if firstMouse {
			lastX, lastY = xpos, ypos
			firstMouse = false
		}
		cam.Look(float32(xpos-lastX), float32(ypos-lastY), mouseSensitivity)
		lastX, lastY = xpos, ypos
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyEqual, glfw.KeyKPAdd:
			streamer.SetRadius(render.Adjust(1))
			log.Info("render distance", "chunks", streamer.Radius())
		case glfw.KeyMinus, glfw.KeyKPSubtract:
			streamer.SetRadius(render.Adjust(-1))
			log.Info("render distance", "chunks", streamer.Radius())
		}
	})
}

func move(window *glfw.Window, cam *graphics.Camera, dt float32) {
	pressed := func(k glfw.Key) float32 {
		if window.GetKey(k) == glfw.Press {
			return 1
		}
		return 0
	}
	step := flySpeed * dt
	if window.GetKey(glfw.KeyLeftControl) == glfw.Press {
		step *= 4
	}
	forward := pressed(glfw.KeyW) - pressed(glfw.KeyS)
	right := pressed(glfw.KeyD) - pressed(glfw.KeyA)
	up := pressed(glfw.KeySpace) - pressed(glfw.KeyLeftShift)
	cam.Move(forward*step, right*step, up*step)
}

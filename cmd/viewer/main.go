// Command viewer opens a window and renders one glTF or GLB asset with an orbit camera. The asset is reloaded
// when it or any file it references changes on disk.
//
// Usage:
//
//	viewer [-config viewer.toml] [-log debug] [path/to/asset.glb]
//
// Keys: drag or arrows/WASD orbit, scroll or Q/E zoom, Space pauses, N cycles animations, R reloads,
// Esc quits.
package main

import (
	"flag"
	"runtime"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine"
	"github.com/Carmen-Shannon/oxy-gl/engine/assets"
	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/config"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu/glcontext"
	"github.com/Carmen-Shannon/oxy-gl/engine/loader"
	"github.com/Carmen-Shannon/oxy-gl/engine/logging"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"

	"github.com/go-gl/mathgl/mgl32"
)

func init() {
	// GLFW and GL must be driven from the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "TOML settings file")
	level := flag.String("log", "", "log level, overrides the config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logging.Fatal("%v", err)
		}
	}
	if flag.NArg() > 0 {
		cfg.Asset.Path = flag.Arg(0)
	}
	if *level != "" {
		cfg.Logging.Level = *level
	}
	if err := logging.SetLevel(cfg.Logging.Level); err != nil {
		logging.Fatal("%v", err)
	}
	if cfg.Asset.Path == "" {
		logging.Fatal("no asset given: pass a .gltf or .glb path or set asset.path")
	}

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
		window.WithVSync(cfg.Window.VSync),
	)
	if err != nil {
		logging.Fatal("%v", err)
	}
	defer win.Close()

	ctx, err := glcontext.New()
	if err != nil {
		logging.Fatal("%v", err)
	}

	growth, _ := cfg.Render.GrowthPolicy()
	ldr := loader.NewLoader(ctx, loader.BackendTypeGLTF,
		loader.WithWorkers(cfg.Loader.Workers),
		loader.WithGrowthPolicy(growth),
	)

	cam := camera.NewCamera(
		camera.WithFov(mgl32.DegToRad(cfg.Camera.Fov)),
		camera.WithClipPlanes(cfg.Camera.Near, cfg.Camera.Far),
		camera.WithController(camera.NewOrbitController(
			camera.WithRadiusBounds(min(cfg.Camera.Radius/10, 0.5), max(cfg.Camera.Radius*10, 50)),
			camera.WithRadius(cfg.Camera.Radius),
			camera.WithAzimuth(mgl32.DegToRad(cfg.Camera.Azimuth)),
			camera.WithElevation(mgl32.DegToRad(cfg.Camera.Elevation)),
			camera.WithTarget(mgl32.Vec3(cfg.Camera.Target)),
		)),
	)

	r, err := renderer.NewRenderer(ctx,
		renderer.WithCamera(cam),
		renderer.WithClearColor(mgl32.Vec4(cfg.Render.ClearColor)),
		renderer.WithGrowthPolicy(growth),
		renderer.WithCullFace(cfg.Render.CullFace),
		renderer.WithSpin(cfg.Render.SpinRate),
	)
	if err != nil {
		logging.Fatal("%v", err)
	}

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithTitle(cfg.Window.Title),
		engine.WithProfiling(cfg.Render.Profiling),
		engine.WithRenderFrameLimit(cfg.Window.FrameLimit),
	)

	v := &viewer{loader: ldr, renderer: r, path: cfg.Asset.Path}
	files, err := v.load()
	if err != nil {
		logging.Fatal("%v", err)
	}

	if cfg.Asset.Watch {
		w, err := assets.NewWatcher(files)
		if err != nil {
			logging.Fatal("%v", err)
		}
		defer w.Close()
		go func() {
			for range w.Changes() {
				eng.Post(func() {
					if files, err := v.load(); err != nil {
						logging.Error("reload failed, keeping the previous asset: %v", err)
					} else if err := w.SetFiles(files); err != nil {
						logging.Warn("%v", err)
					}
				})
			}
		}()
	}

	eng.SetKeyCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeyR:
			if _, err := v.load(); err != nil {
				logging.Error("reload failed, keeping the previous asset: %v", err)
			}
		case common.KeyN:
			v.nextAnimation()
		}
	})

	eng.Run()
	ldr.Destroy()
}

// viewer owns the single displayed asset.
type viewer struct {
	loader   loader.Loader
	renderer renderer.Renderer
	path     string

	name      string
	animation int
}

// load reads the asset from disk and replaces the displayed one. On failure the displayed asset is kept.
func (v *viewer) load() ([]string, error) {
	a, err := assets.ReadResources(v.path)
	if err != nil {
		return nil, err
	}
	g, err := v.loader.Reload(a.Name, a.Document, a.Resources)
	if err != nil {
		return nil, err
	}
	v.name = a.Name
	v.animation = 0
	v.renderer.AddAsset(a.Name, g, mgl32.Ident4())
	return a.Files, nil
}

// nextAnimation cycles through the asset's animations and then the static pose.
func (v *viewer) nextAnimation() {
	g, ok := v.renderer.Assets()[v.name]
	if !ok || len(g.Animations()) == 0 {
		return
	}
	v.animation++
	if v.animation >= len(g.Animations()) {
		v.animation = renderer.NoAnimation
	}
	if err := v.renderer.SetAnimation(v.name, v.animation); err != nil {
		logging.Warn("%v", err)
		return
	}
	if v.animation == renderer.NoAnimation {
		logging.Info("%s: static pose", v.name)
		return
	}
	logging.Info("%s: playing %q", v.name, g.Animations()[v.animation].Name)
}

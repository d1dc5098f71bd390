package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/logging"
	"github.com/Carmen-Shannon/oxy-gl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
)

// engine implements the Engine interface.
// Drives the renderer from the window's message loop on the thread that owns the GL context.
type engine struct {
	window   window.Window
	renderer renderer.Renderer

	profiler         *profiler.Profiler
	profilingEnabled bool

	tasks    chan func()
	quitOnce sync.Once
	quit     chan struct{}

	frameCallback func(elapsed float32)
	keyCallback   func(keyCode uint32)

	title string

	width, height int

	start       time.Time
	paused      bool
	pausedAt    time.Time
	pausedTotal time.Duration

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	lastFrame        time.Time
}

// Engine is the main entry point for the engine.
// It owns the frame loop: each iteration drains the posted tasks, runs the frame callback and renders one
// frame. Everything except Post and Quit runs on the thread that owns the GL context.
type Engine interface {
	// Window returns the underlying window, or nil when the engine runs headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer frames are drawn with.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetFrameCallback registers the function called every frame before rendering.
	//
	// Parameters:
	//   - callback: function receiving the playback time in seconds
	SetFrameCallback(callback func(elapsed float32))

	// SetKeyCallback registers the function called for key presses the camera controller did not consume.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyCallback(callback func(keyCode uint32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// TogglePause freezes or resumes the playback clock that drives animation and spin.
	TogglePause()

	// Post queues a task to run on the render thread before the next frame. Safe to call from any
	// goroutine. Tasks posted after Quit are dropped.
	//
	// Parameters:
	//   - task: the function to run
	Post(task func())

	// Run starts the frame loop and blocks until the window closes or Quit is called. The renderer is
	// destroyed before it returns; closing the window is left to the caller.
	Run()

	// Quit stops the frame loop. Safe to call multiple times and from any goroutine.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine with the provided options. A renderer is required; the window is optional
// so that frames can be driven headless.
//
// Parameters:
//   - options: functional options for engine configuration (window, renderer, profiling, frame limit)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tasks:    make(chan func(), 64),
		quit:     make(chan struct{}),
		profiler: profiler.NewProfiler(time.Second),
		title:    "oxy-gl",
		start:    time.Now(),
	}
	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.width, e.height = e.window.Width(), e.window.Height()
		e.bindInput()
	}
	if e.renderer != nil && e.width > 0 && e.height > 0 {
		e.renderer.Resize(e.width, e.height)
	}
	return e
}

// bindInput forwards window events to the renderer and the camera controller.
func (e *engine) bindInput() {
	e.window.SetResizeCallback(func(width, height int) {
		e.width, e.height = width, height
		e.renderer.Resize(width, height)
	})
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		if ctrl := e.renderer.Camera().Controller(); ctrl != nil && ctrl.HandleKey(keyCode) {
			return
		}
		if keyCode == common.KeySpace {
			e.TogglePause()
			return
		}
		if e.keyCallback != nil {
			e.keyCallback(keyCode)
		}
	})
	e.window.SetScrollCallback(func(delta float32) {
		if ctrl := e.renderer.Camera().Controller(); ctrl != nil {
			ctrl.Zoom(delta)
		}
	})
	e.window.SetDragCallback(func(dx, dy float32) {
		if ctrl := e.renderer.Camera().Controller(); ctrl != nil {
			ctrl.Drag(dx, dy)
		}
	})
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetFrameCallback(callback func(elapsed float32)) {
	e.frameCallback = callback
}

func (e *engine) SetKeyCallback(callback func(keyCode uint32)) {
	e.keyCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) TogglePause() {
	now := time.Now()
	if e.paused {
		e.pausedTotal += now.Sub(e.pausedAt)
	} else {
		e.pausedAt = now
	}
	e.paused = !e.paused
}

func (e *engine) Post(task func()) {
	select {
	case <-e.quit:
		return
	default:
	}
	select {
	case e.tasks <- task:
	case <-e.quit:
	}
}

func (e *engine) Run() {
	if e.window == nil {
		for e.running() {
			e.frame()
		}
		e.renderer.Destroy()
		return
	}

	e.window.SetUpdateCallback(func() {
		if !e.running() {
			e.window.RequestClose()
			return
		}
		e.frame()
	})
	e.window.ProcessMessages()
	e.Quit()
	// The context is still current here; the caller closes the window afterwards.
	e.renderer.Destroy()
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quit)
	})
}

func (e *engine) running() bool {
	select {
	case <-e.quit:
		return false
	default:
		return true
	}
}

// elapsed returns the playback time in seconds, excluding paused spans.
func (e *engine) elapsed(now time.Time) float32 {
	d := now.Sub(e.start) - e.pausedTotal
	if e.paused {
		d -= now.Sub(e.pausedAt)
	}
	return float32(d.Seconds())
}

// frame drains the posted tasks and renders one frame. A panic inside a frame is logged and stops the
// loop instead of crashing the process.
func (e *engine) frame() {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("render loop recovered from panic: %v", r)
			e.Quit()
		}
	}()

	e.drain()

	now := time.Now()
	t := e.elapsed(now)
	if e.frameCallback != nil {
		e.frameCallback(t)
	}

	aspect := float32(1)
	if e.width > 0 && e.height > 0 {
		aspect = float32(e.width) / float32(e.height)
	}
	e.renderer.Render(aspect, t)

	if e.profilingEnabled && e.profiler != nil {
		if report, ok := e.profiler.Tick(e.renderer.Stats()); ok && e.window != nil {
			e.window.SetTitle(fmt.Sprintf("%s | %.0f FPS", e.title, report.FPS))
		}
	}

	if e.renderFrameLimit > 0 && !e.lastFrame.IsZero() {
		if remaining := e.renderFrameLimit - time.Since(e.lastFrame); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	e.lastFrame = time.Now()
}

// drain runs every task posted so far.
func (e *engine) drain() {
	for {
		select {
		case task := <-e.tasks:
			task()
		default:
			return
		}
	}
}

// package renderer orchestrates a frame: it clears the framebuffer, sets the reversed-Z depth state, uploads
// the camera matrices, walks every registered asset into the batcher and submits the batches.
package renderer

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/engine/camera"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/logging"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/arena"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/drawcall"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/scene"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	errUnknownAsset     = errors.New("unknown asset")
	errUnknownAnimation = errors.New("unknown animation")
)

// NoAnimation disables animation playback for an asset.
const NoAnimation = -1

// glBasis turns the asset's +Z forward into the GL camera's -Z forward.
var glBasis = mgl32.HomogRotate3DY(math32.Pi)

type assetEntry struct {
	gltf      scene.Gltf
	root      mgl32.Mat4
	animation int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu sync.Mutex

	ctx     gpu.Context
	camera  camera.Camera
	program shader.Program
	batcher drawcall.Batcher

	programOptions []shader.ProgramBuilderOption
	growth         arena.GrowthPolicy
	clearColor     mgl32.Vec4
	cullFace       bool
	spin           float32

	assets map[string]*assetEntry
	order  []string
}

// Renderer draws the registered assets through one program and one batcher. Every method except Assets
// must be called on the goroutine that owns the context.
type Renderer interface {
	// AddAsset registers an asset under name. An asset already registered under the same name is
	// destroyed and replaced. The first animation of the asset, if any, starts playing.
	//
	// Parameters:
	//   - name: the registration key
	//   - g: the asset, owned by the renderer from now on
	//   - root: the transform applied above the asset's scene roots
	AddAsset(name string, g scene.Gltf, root mgl32.Mat4)

	// RemoveAsset destroys the asset registered under name and forgets the batches it produced.
	// Unknown names are ignored.
	//
	// Parameters:
	//   - name: the registration key
	RemoveAsset(name string)

	// Assets returns the registered assets by name.
	//
	// Returns:
	//   - map[string]scene.Gltf: a copy of the registry
	Assets() map[string]scene.Gltf

	// SetRootTransform replaces the root transform of a registered asset.
	//
	// Parameters:
	//   - name: the registration key
	//   - root: the new root transform
	//
	// Returns:
	//   - error: error if no asset is registered under name
	SetRootTransform(name string, root mgl32.Mat4) error

	// SetAnimation selects the animation an asset plays, or NoAnimation to show its rest pose.
	//
	// Parameters:
	//   - name: the registration key
	//   - animation: the animation index or NoAnimation
	//
	// Returns:
	//   - error: error if the asset or the animation does not exist
	SetAnimation(name string, animation int) error

	// Camera returns the camera the frame is viewed through.
	Camera() camera.Camera

	// Render draws one frame.
	//
	// Parameters:
	//   - aspect: the framebuffer aspect ratio (width / height)
	//   - elapsed: seconds since playback started, drives animation and spin
	Render(aspect, elapsed float32)

	// Resize sets the viewport to the new framebuffer size.
	//
	// Parameters:
	//   - width: framebuffer width in pixels
	//   - height: framebuffer height in pixels
	Resize(width, height int)

	// Stats returns the batcher counts of the last frame.
	//
	// Returns:
	//   - drawcall.Stats: materials bound, draws issued and instances drawn
	Stats() drawcall.Stats

	// Destroy releases the program, the batcher and every registered asset.
	Destroy()
}

var _ Renderer = &renderer{}

// NewRenderer creates the mesh program and the batcher.
//
// Parameters:
//   - ctx: the context to render with
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the new renderer
//   - error: error if the program fails to compile, link or validate
func NewRenderer(ctx gpu.Context, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		ctx:        ctx,
		growth:     arena.GrowExact,
		clearColor: mgl32.Vec4{0, 0, 0, 1},
		cullFace:   true,
		assets:     make(map[string]*assetEntry),
	}
	for _, option := range options {
		option(r)
	}
	if r.camera == nil {
		r.camera = camera.NewCamera()
	}

	program, err := shader.NewProgram(ctx, r.programOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mesh program: %w", err)
	}
	r.program = program
	r.batcher = drawcall.NewBatcher(ctx, drawcall.WithGrowthPolicy(r.growth))

	usage := program.Usage()
	logging.Debug("mesh program ready: %d texture units, %d uniform blocks, largest block %d bytes",
		usage.TextureUnits, usage.UniformBlocks, usage.LargestBlock)
	return r, nil
}

func (r *renderer) AddAsset(name string, g scene.Gltf, root mgl32.Mat4) {
	entry := &assetEntry{gltf: g, root: root, animation: NoAnimation}
	if len(g.Animations()) > 0 {
		entry.animation = 0
	}

	r.mu.Lock()
	old, replaced := r.assets[name]
	r.assets[name] = entry
	if !replaced {
		r.order = append(r.order, name)
		sort.Strings(r.order)
	}
	r.mu.Unlock()

	if replaced && old.gltf != g {
		old.gltf.Destroy()
		r.forget()
	}
	logging.Info("asset %s added: %d nodes, %d meshes, %d animations",
		name, len(g.Nodes()), len(g.Meshes()), len(g.Animations()))
}

func (r *renderer) RemoveAsset(name string) {
	r.mu.Lock()
	entry, ok := r.assets[name]
	if ok {
		delete(r.assets, name)
		r.order = removeName(r.order, name)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	entry.gltf.Destroy()
	r.forget()
	logging.Info("asset %s removed", name)
}

func (r *renderer) Assets() map[string]scene.Gltf {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make(map[string]scene.Gltf, len(r.assets))
	for name, entry := range r.assets {
		result[name] = entry.gltf
	}
	return result
}

func (r *renderer) SetRootTransform(name string, root mgl32.Mat4) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.assets[name]
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownAsset, name)
	}
	entry.root = root
	return nil
}

func (r *renderer) SetAnimation(name string, animation int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.assets[name]
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownAsset, name)
	}
	if animation != NoAnimation && (animation < 0 || animation >= len(entry.gltf.Animations())) {
		return fmt.Errorf("%w: %s has no animation %d", errUnknownAnimation, name, animation)
	}
	entry.animation = animation
	return nil
}

func (r *renderer) Camera() camera.Camera {
	return r.camera
}

func (r *renderer) Render(aspect, elapsed float32) {
	ctx := r.ctx

	ctx.ClearColor(r.clearColor[0], r.clearColor[1], r.clearColor[2], r.clearColor[3])
	ctx.ClearDepth(0)
	ctx.Clear(gpu.ClearColorBit | gpu.ClearDepthBit)
	ctx.Enable(gpu.CapDepthTest)
	ctx.DepthFunc(gpu.CompareGreater)
	if r.cullFace {
		ctx.Enable(gpu.CapCullFace)
	} else {
		ctx.Disable(gpu.CapCullFace)
	}

	r.camera.SetAspect(aspect)
	r.camera.Update()
	r.program.Use()
	r.program.SetProjection(r.camera.ProjectionMatrix())
	r.program.SetView(r.camera.ViewMatrix().Mul4(glBasis))

	r.batcher.Clear()
	spin := mgl32.HomogRotate3DY(r.spin * elapsed)

	r.mu.Lock()
	for _, name := range r.order {
		entry := r.assets[name]
		root := entry.root.Mul4(spin)
		if entry.animation == NoAnimation {
			entry.gltf.Draw(r.batcher, root)
			continue
		}
		entry.gltf.DrawWithOverrides(r.batcher, root, entry.gltf.Pose(entry.animation, elapsed))
	}
	r.mu.Unlock()

	r.batcher.Draw(r.program.InstanceSlots())
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.ctx.Viewport(0, 0, width, height)
	r.camera.SetAspect(float32(width) / float32(height))
}

func (r *renderer) Stats() drawcall.Stats {
	return r.batcher.Stats()
}

func (r *renderer) Destroy() {
	r.mu.Lock()
	assets := r.assets
	r.assets = make(map[string]*assetEntry)
	r.order = nil
	r.mu.Unlock()

	for _, entry := range assets {
		entry.gltf.Destroy()
	}
	r.batcher.Destroy()
	r.program.Destroy()
}

// forget drops the batches of destroyed assets. The instances queued by the last frame still reference
// them, so the batcher is cleared first; live assets re-create their batches on the next Render.
func (r *renderer) forget() {
	r.batcher.Clear()
	r.batcher.Prune()
}

func removeName(names []string, name string) []string {
	for i, n := range names {
		if n == name {
			return append(names[:i], names[i+1:]...)
		}
	}
	return names
}

package drawcall

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/arena"

	"github.com/go-gl/mathgl/mgl32"
)

// instanceStride is the byte size of one column-major mat4 instance transform.
const instanceStride = 64

// Stats summarizes the submissions of the last Draw.
type Stats struct {
	Materials int
	Draws     int
	Instances int
}

type batch struct {
	call       DrawCall
	transforms []mgl32.Mat4
}

type materialGroup struct {
	material MaterialBinding
	batches  []batch
	index    map[DrawCall]int
}

// batcher is the implementation of the Batcher interface.
type batcher struct {
	ctx       gpu.Context
	instances arena.Arena

	groups []materialGroup
	index  map[MaterialBinding]int

	stats Stats
}

// Batcher accumulates instances for a frame, grouped by material and then by DrawCall, and submits one
// instanced draw per distinct DrawCall. Groups keep their first-seen order and their storage across
// frames.
type Batcher interface {
	// Add queues one instance.
	//
	// Parameters:
	//   - material: the bindings the instance is drawn with
	//   - call: the draw descriptor, equal descriptors share a submission
	//   - transform: the instance model transform
	Add(material MaterialBinding, call DrawCall, transform mgl32.Mat4)

	// Draw binds each material with queued instances once and issues one DrawElementsInstanced per
	// non-empty descriptor. Transforms are uploaded to the instance arena and sourced from the four
	// consecutive attribute locations in slots, one matrix column per slot, advancing once per instance.
	//
	// Parameters:
	//   - slots: the attribute locations of the model transform columns
	Draw(slots [4]uint32)

	// Clear empties every batch and the instance arena while keeping their capacity.
	Clear()

	// Prune forgets every material group and descriptor with no queued instances. Call it after the
	// assets that produced them are destroyed.
	Prune()

	// Stats returns the counts of the last Draw.
	//
	// Returns:
	//   - Stats: materials bound, draws issued and instances drawn
	Stats() Stats

	// Destroy deletes the instance arena.
	Destroy()
}

var _ Batcher = &batcher{}

// NewBatcher creates a Batcher whose instance transforms live in a STREAM_DRAW array buffer arena.
//
// Parameters:
//   - ctx: the context draws are issued on
//   - options: functional options to configure the instance arena
//
// Returns:
//   - Batcher: the new batcher
func NewBatcher(ctx gpu.Context, options ...BatcherBuilderOption) Batcher {
	cfg := &batcherConfig{policy: arena.GrowExact}
	for _, opt := range options {
		opt(cfg)
	}

	b := &batcher{
		ctx:   ctx,
		index: make(map[MaterialBinding]int),
	}
	b.instances = cfg.arena
	if b.instances == nil {
		b.instances = arena.NewArena(ctx,
			arena.WithTarget(gpu.BufferTargetArray),
			arena.WithUsage(gpu.UsageStreamDraw),
			arena.WithGrowthPolicy(cfg.policy),
			arena.WithInitialSize(cfg.initialSize),
		)
	}
	return b
}

func (b *batcher) Add(material MaterialBinding, call DrawCall, transform mgl32.Mat4) {
	gi, ok := b.index[material]
	if !ok {
		gi = len(b.groups)
		b.groups = append(b.groups, materialGroup{material: material, index: make(map[DrawCall]int)})
		b.index[material] = gi
	}
	g := &b.groups[gi]

	bi, ok := g.index[call]
	if !ok {
		bi = len(g.batches)
		g.batches = append(g.batches, batch{call: call})
		g.index[call] = bi
	}
	g.batches[bi].transforms = append(g.batches[bi].transforms, transform)
}

func (b *batcher) Draw(slots [4]uint32) {
	b.stats = Stats{}

	for gi := range b.groups {
		g := &b.groups[gi]
		if !g.hasInstances() {
			continue
		}
		g.material.Bind(b.ctx)
		b.stats.Materials++

		for bi := range g.batches {
			bt := &g.batches[bi]
			if len(bt.transforms) == 0 {
				continue
			}
			b.submit(bt, slots)
			b.stats.Draws++
			b.stats.Instances += len(bt.transforms)
		}
	}
}

// submit uploads the transforms of bt and issues its instanced draw.
func (b *batcher) submit(bt *batch, slots [4]uint32) {
	call := bt.call
	b.ctx.BindVertexArray(call.VertexArray)

	buf, offset := b.instances.Allocate(common.SliceToBytes(bt.transforms))
	b.ctx.BindBuffer(gpu.BufferTargetArray, buf)
	for i, loc := range slots {
		b.ctx.EnableVertexAttribArray(loc)
		b.ctx.VertexAttribPointer(loc, 4, gpu.TypeFloat, false, instanceStride, offset+16*i)
		b.ctx.VertexAttribDivisor(loc, 1)
	}

	if call.HasConstantAttribute {
		b.ctx.VertexAttrib4f(call.ConstantAttribute, 1, 1, 1, 1)
	}
	b.ctx.FrontFace(call.FrontFace)
	b.ctx.BindBuffer(gpu.BufferTargetElementArray, call.IndexBuffer)
	b.ctx.DrawElementsInstanced(call.Mode, call.IndexCount, call.IndexType, call.IndexOffset, len(bt.transforms))
}

func (b *batcher) Clear() {
	for gi := range b.groups {
		for bi := range b.groups[gi].batches {
			b.groups[gi].batches[bi].transforms = b.groups[gi].batches[bi].transforms[:0]
		}
	}
	b.instances.Clear()
}

func (b *batcher) Prune() {
	groups := b.groups[:0]
	clear(b.index)
	for _, g := range b.groups {
		batches := g.batches[:0]
		clear(g.index)
		for _, bt := range g.batches {
			if len(bt.transforms) == 0 {
				continue
			}
			g.index[bt.call] = len(batches)
			batches = append(batches, bt)
		}
		if len(batches) == 0 {
			continue
		}
		g.batches = batches
		b.index[g.material] = len(groups)
		groups = append(groups, g)
	}
	b.groups = groups
}

func (b *batcher) Stats() Stats {
	return b.stats
}

func (b *batcher) Destroy() {
	b.instances.Destroy()
	b.groups = nil
	clear(b.index)
}

func (g *materialGroup) hasInstances() bool {
	for i := range g.batches {
		if len(g.batches[i].transforms) > 0 {
			return true
		}
	}
	return false
}

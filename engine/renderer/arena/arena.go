// package arena implements a bump allocator over a single driver buffer. The arena keeps a CPU mirror of
// everything written since the last Clear so that the driver storage can be re-allocated larger and
// refilled without reading back from the GPU.
package arena

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
)

// GrowthPolicy selects how the driver storage grows when an allocation does not fit.
type GrowthPolicy int

const (
	// GrowExact grows the storage by exactly the size of the allocation that did not fit.
	GrowExact GrowthPolicy = iota
	// GrowGeometric at least doubles the storage, trading memory for fewer re-uploads.
	GrowGeometric
)

// arena is the implementation of the Arena interface.
type arena struct {
	ctx gpu.Context

	buffer    gpu.Buffer
	target    gpu.BufferTarget
	usage     gpu.BufferUsage
	policy    GrowthPolicy
	alignment int

	offset int
	size   int
	mirror []byte
}

// Arena is a bump allocator over one driver buffer. Ranges returned by Allocate never overlap until Clear
// is called. Binding the element array target modifies the bound vertex array, so index data is allocated
// with a vertex array bound whose element binding may be replaced by the arena buffer.
type Arena interface {
	// Allocate copies data into the arena and returns where it landed.
	// When the data does not fit the storage is re-allocated larger and the mirror is re-uploaded first.
	//
	// Parameters:
	//   - data: the bytes to place
	//
	// Returns:
	//   - gpu.Buffer: the driver buffer that now holds data
	//   - int: the byte offset of data within that buffer
	Allocate(data []byte) (gpu.Buffer, int)

	// Clear discards every allocation. The driver storage and the mirror capacity are kept.
	Clear()

	// Buffer returns the driver buffer backing the arena. The name is stable across growth.
	//
	// Returns:
	//   - gpu.Buffer: the buffer name
	Buffer() gpu.Buffer

	// Offset returns the next free byte.
	//
	// Returns:
	//   - int: bytes allocated since the last Clear, including alignment padding
	Offset() int

	// Size returns the driver storage size.
	//
	// Returns:
	//   - int: allocated storage in bytes
	Size() int

	// Destroy deletes the driver buffer. Further use of the arena is invalid.
	Destroy()
}

var _ Arena = &arena{}

// NewArena creates an Arena on ctx. The default is an ARRAY_BUFFER with DYNAMIC_DRAW usage, exact growth,
// no alignment and no initial storage.
//
// Parameters:
//   - ctx: the context that owns the buffer
//   - options: functional options to configure target, usage, growth and alignment
//
// Returns:
//   - Arena: the new arena
func NewArena(ctx gpu.Context, options ...ArenaBuilderOption) Arena {
	a := &arena{
		ctx:       ctx,
		target:    gpu.BufferTargetArray,
		usage:     gpu.UsageDynamicDraw,
		policy:    GrowExact,
		alignment: 1,
	}
	for _, opt := range options {
		opt(a)
	}

	a.buffer = ctx.CreateBuffer()
	if a.size > 0 {
		ctx.BindBuffer(a.target, a.buffer)
		ctx.BufferData(a.target, a.size, nil, a.usage)
	}
	a.mirror = make([]byte, 0, a.size)
	return a
}

func (a *arena) Allocate(data []byte) (gpu.Buffer, int) {
	start := common.AlignUp(a.offset, a.alignment)
	end := start + len(data)
	if end >= a.size {
		a.grow(len(data), end)
	}

	if pad := start - a.offset; pad > 0 {
		a.mirror = append(a.mirror, make([]byte, pad)...)
	}
	if len(data) > 0 {
		a.ctx.BindBuffer(a.target, a.buffer)
		a.ctx.BufferSubData(a.target, start, data)
		a.mirror = append(a.mirror, data...)
	}
	a.offset = end
	return a.buffer, start
}

// grow re-allocates the storage so that end fits and restores everything allocated so far.
func (a *arena) grow(n, end int) {
	var size int
	switch a.policy {
	case GrowGeometric:
		size = max(2*a.size, end+1)
	default:
		size = max(a.size+n, end)
	}
	if size == a.size {
		return
	}

	a.ctx.BindBuffer(a.target, a.buffer)
	a.ctx.BufferData(a.target, size, nil, a.usage)
	if len(a.mirror) > 0 {
		a.ctx.BufferSubData(a.target, 0, a.mirror)
	}
	a.size = size
}

func (a *arena) Clear() {
	a.offset = 0
	a.mirror = a.mirror[:0]
}

func (a *arena) Buffer() gpu.Buffer {
	return a.buffer
}

func (a *arena) Offset() int {
	return a.offset
}

func (a *arena) Size() int {
	return a.size
}

func (a *arena) Destroy() {
	if a.buffer == 0 {
		return
	}
	a.ctx.DeleteBuffer(a.buffer)
	a.buffer = 0
	a.mirror = nil
	a.offset, a.size = 0, 0
}

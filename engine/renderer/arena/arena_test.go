package arena

import (
	"bytes"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu/recorder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaRangesDoNotOverlap(t *testing.T) {
	ctx := recorder.NewRecorder()
	a := NewArena(ctx)

	chunks := [][]byte{
		bytes.Repeat([]byte{1}, 3),
		bytes.Repeat([]byte{2}, 16),
		bytes.Repeat([]byte{3}, 1),
		bytes.Repeat([]byte{4}, 64),
	}

	type span struct{ start, end int }
	var spans []span
	for _, c := range chunks {
		buf, off := a.Allocate(c)
		assert.Equal(t, a.Buffer(), buf)
		spans = append(spans, span{off, off + len(c)})
	}

	for i := range spans {
		for j := i + 1; j < len(spans); j++ {
			overlap := spans[i].start < spans[j].end && spans[j].start < spans[i].end
			assert.False(t, overlap, "allocation %d overlaps %d", i, j)
		}
	}

	contents := ctx.BufferContents(a.Buffer())
	for i, s := range spans {
		assert.Equal(t, chunks[i], contents[s.start:s.end], "allocation %d", i)
	}
}

func TestArenaClearRestartsAtZero(t *testing.T) {
	ctx := recorder.NewRecorder()
	a := NewArena(ctx)

	a.Allocate(make([]byte, 40))
	size := a.Size()
	a.Clear()

	assert.Equal(t, 0, a.Offset())
	assert.Equal(t, size, a.Size())

	_, off := a.Allocate([]byte{9})
	assert.Equal(t, 0, off)
}

func TestArenaGrowthReuploadsMirror(t *testing.T) {
	ctx := recorder.NewRecorder()
	a := NewArena(ctx, WithInitialSize(4))

	a.Allocate([]byte{1, 2})
	ctx.Reset()
	_, off := a.Allocate([]byte{3, 4, 5, 6})
	assert.Equal(t, 2, off)

	data := ctx.CallsTo("BufferData")
	require.Len(t, data, 1)
	assert.Equal(t, 8, data[0].Args[1], "exact growth adds the allocation size")

	subs := ctx.CallsTo("BufferSubData")
	require.Len(t, subs, 2)
	assert.Equal(t, 0, subs[0].Args[1], "mirror re-uploaded from byte 0")
	assert.Equal(t, 2, subs[0].Args[2])

	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 0, 0}, ctx.BufferContents(a.Buffer()))
}

func TestArenaGrowsWhenAllocationEndsAtCapacity(t *testing.T) {
	ctx := recorder.NewRecorder()
	a := NewArena(ctx, WithInitialSize(8))

	a.Allocate(make([]byte, 8))
	assert.Equal(t, 16, a.Size())
}

func TestArenaGeometricGrowth(t *testing.T) {
	ctx := recorder.NewRecorder()
	a := NewArena(ctx, WithInitialSize(16), WithGrowthPolicy(GrowGeometric))

	a.Allocate(make([]byte, 20))
	assert.Equal(t, 32, a.Size())
	a.Allocate(make([]byte, 100))
	assert.Equal(t, 121, a.Size())
}

func TestArenaAlignment(t *testing.T) {
	ctx := recorder.NewRecorder()
	a := NewArena(ctx, WithAlignment(256), WithTarget(gpu.BufferTargetUniform), WithUsage(gpu.UsageStaticDraw))

	_, first := a.Allocate(make([]byte, 48))
	_, second := a.Allocate(make([]byte, 48))

	assert.Equal(t, 0, first)
	assert.Equal(t, 256, second)
	assert.Equal(t, 304, a.Offset())
	assert.Equal(t, gpu.UsageStaticDraw, ctx.BufferUsage(a.Buffer()))
}

func TestArenaDestroyIsIdempotent(t *testing.T) {
	ctx := recorder.NewRecorder()
	a := NewArena(ctx)
	a.Allocate([]byte{1})

	a.Destroy()
	a.Destroy()

	assert.Equal(t, 0, ctx.Live())
	assert.Len(t, ctx.CallsTo("DeleteBuffer"), 1)
}

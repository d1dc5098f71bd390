package engine

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu/recorder"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headless(t *testing.T) (Engine, recorder.Recorder) {
	t.Helper()
	ctx := recorder.NewRecorder()
	r, err := renderer.NewRenderer(ctx)
	require.NoError(t, err)
	return NewEngine(WithRenderer(r)), ctx
}

func TestRunDrainsTasksBeforeTheFrame(t *testing.T) {
	e, ctx := headless(t)

	var order []string
	e.Post(func() { order = append(order, "task") })
	e.SetFrameCallback(func(elapsed float32) {
		order = append(order, "frame")
		e.Quit()
	})
	e.Run()

	assert.Equal(t, []string{"task", "frame"}, order)
	assert.NotEmpty(t, ctx.CallsTo("Clear"), "a frame was rendered")
	assert.Equal(t, 0, ctx.Live(), "the renderer is destroyed when Run returns")
}

func TestRunStopsAfterQuitFromAnotherGoroutine(t *testing.T) {
	e, _ := headless(t)

	frames := 0
	e.SetFrameCallback(func(float32) {
		frames++
		if frames == 1 {
			go e.Quit()
		}
	})

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
	assert.GreaterOrEqual(t, frames, 1)

	e.Quit()
	e.Post(func() { t.Error("tasks posted after Quit must not run") })
}

func TestTogglePauseFreezesElapsed(t *testing.T) {
	e, _ := headless(t)
	impl := e.(*engine)

	impl.TogglePause()
	frozen := impl.elapsed(impl.pausedAt.Add(time.Second))
	assert.InDelta(t, impl.elapsed(impl.pausedAt), frozen, 1e-6)

	impl.pausedAt = impl.pausedAt.Add(-2 * time.Second)
	impl.TogglePause()
	assert.GreaterOrEqual(t, impl.pausedTotal, 2*time.Second)
	assert.False(t, impl.paused)
}

func TestFrameRecoversFromPanics(t *testing.T) {
	e, _ := headless(t)
	e.SetFrameCallback(func(float32) { panic("boom") })

	assert.NotPanics(t, func() { e.Run() })
}

func TestRenderFrameLimit(t *testing.T) {
	e, _ := headless(t)
	e.SetRenderFrameLimit(50)
	assert.Equal(t, 20*time.Millisecond, e.(*engine).renderFrameLimit)

	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.(*engine).renderFrameLimit)

	limited := NewEngine(WithRenderFrameLimit(100), WithTitle("viewer"), WithProfiling(true))
	assert.Equal(t, 10*time.Millisecond, limited.(*engine).renderFrameLimit)
	assert.Equal(t, "viewer", limited.(*engine).title)
	assert.True(t, limited.(*engine).profilingEnabled)
}

package playback

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/ByLCY/memeforge/layer"
	"github.com/ByLCY/memeforge/renderer"
)

// manualTicker 由测试手动发送 tick。
type manualTicker struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               { m.once.Do(func() { close(m.stopped) }) }

// tick 阻塞到循环接收为止。
func (m *manualTicker) tick(t *testing.T) {
	t.Helper()
	select {
	case m.ch <- time.Now():
	case <-time.After(2 * time.Second):
		t.Fatalf("loop did not receive tick")
	}
}

// trySend 模拟媒体继续解码：没有接收者时直接放弃。
func (m *manualTicker) trySend() bool {
	select {
	case m.ch <- time.Now():
		return true
	case <-time.After(20 * time.Millisecond):
		return false
	}
}

// frameSource 提供 n 帧（n < 0 表示无限）。
type frameSource struct {
	mu   sync.Mutex
	n    int
	read int
}

func (s *frameSource) Frame() (image.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.n >= 0 && s.read >= s.n {
		return nil, false
	}
	s.read++
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), true
}

type countingCompositor struct {
	mu     sync.Mutex
	calls  int
	layers int
	err    error
}

func (c *countingCompositor) Render(s *renderer.Surface, bg image.Image, layers []layer.TextLayer, p renderer.Profile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.calls++
	c.layers = len(layers)
	s.Resize(4, 4)
	return nil
}

func (c *countingCompositor) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type harness struct {
	loop      *Loop
	ticker    *manualTicker
	comp      *countingCompositor
	presented chan struct{}
}

func newHarness(src Source) *harness {
	h := &harness{
		ticker:    newManualTicker(),
		comp:      &countingCompositor{},
		presented: make(chan struct{}, 16),
	}
	h.loop = NewLoop(Options{
		Source:     src,
		Compositor: h.comp,
		Store:      layer.NewStore(),
		Profile:    renderer.VideoProfile,
		Present:    func(*renderer.Surface) { h.presented <- struct{}{} },
		NewTicker:  func(time.Duration) Ticker { return h.ticker },
	})
	return h
}

func (h *harness) waitPresent(t *testing.T) {
	t.Helper()
	select {
	case <-h.presented:
	case <-time.After(2 * time.Second):
		t.Fatalf("frame was not presented")
	}
}

func TestPlayRendersEveryTick(t *testing.T) {
	h := newHarness(&frameSource{n: -1})
	if err := h.loop.Play(context.Background()); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if h.loop.State() != Playing {
		t.Fatalf("expected playing")
	}
	for i := 0; i < 3; i++ {
		h.ticker.tick(t)
		h.waitPresent(t)
	}
	if got := h.comp.count(); got != 3 {
		t.Fatalf("expected 3 renders, got %d", got)
	}
	if h.comp.layers != 2 {
		t.Fatalf("every tick should composite all layers, got %d", h.comp.layers)
	}
	h.loop.Pause()
}

func TestNoRedrawAfterPause(t *testing.T) {
	h := newHarness(&frameSource{n: -1})
	if err := h.loop.Play(context.Background()); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	h.ticker.tick(t)
	h.waitPresent(t)

	h.loop.Pause()
	if h.loop.State() != Stopped {
		t.Fatalf("expected stopped after pause")
	}
	select {
	case <-h.ticker.stopped:
	default:
		t.Fatalf("pause should stop the ticker")
	}
	before := h.comp.count()
	for i := 0; i < 3; i++ {
		if h.ticker.trySend() {
			t.Fatalf("暂停后循环不应再接收 tick")
		}
	}
	if got := h.comp.count(); got != before {
		t.Fatalf("暂停后不应再重绘：before=%d after=%d", before, got)
	}
	select {
	case <-h.presented:
		t.Fatalf("no frame should be presented after pause")
	default:
	}
}

func TestLoopEndsAtEndOfStream(t *testing.T) {
	h := newHarness(&frameSource{n: 2})
	if err := h.loop.Play(context.Background()); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	h.ticker.tick(t)
	h.waitPresent(t)
	h.ticker.tick(t)
	h.waitPresent(t)
	h.ticker.tick(t) // 第三帧不存在，循环结束

	if err := h.loop.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.loop.State() != Stopped {
		t.Fatalf("loop should stop at end of stream")
	}
	if got := h.comp.count(); got != 2 {
		t.Fatalf("expected 2 renders, got %d", got)
	}
}

func TestContextCancelStops(t *testing.T) {
	h := newHarness(&frameSource{n: -1})
	ctx, cancel := context.WithCancel(context.Background())
	if err := h.loop.Play(ctx); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	cancel()
	h.loop.Wait()
	if h.loop.State() != Stopped {
		t.Fatalf("cancelled context should stop the loop")
	}
}

func TestRenderErrorStopsLoop(t *testing.T) {
	h := newHarness(&frameSource{n: -1})
	h.comp.err = errors.New("boom")
	if err := h.loop.Play(context.Background()); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	h.ticker.tick(t)
	if err := h.loop.Wait(); err == nil {
		t.Fatalf("expected render error to surface")
	}
}

func TestToggleAndPlayTwice(t *testing.T) {
	h := newHarness(&frameSource{n: -1})
	ctx := context.Background()
	if err := h.loop.Toggle(ctx); err != nil || h.loop.State() != Playing {
		t.Fatalf("toggle should start playback: %v", err)
	}
	if err := h.loop.Play(ctx); err != nil {
		t.Fatalf("second play should be a no-op: %v", err)
	}
	if err := h.loop.Toggle(ctx); err != nil || h.loop.State() != Stopped {
		t.Fatalf("toggle should pause playback: %v", err)
	}
	h.loop.Pause() // 已停止时再次暂停无副作用
}

func TestStepAndClose(t *testing.T) {
	h := newHarness(&frameSource{n: 1})
	ok, err := h.loop.Step()
	if err != nil || !ok {
		t.Fatalf("first step should render: ok=%v err=%v", ok, err)
	}
	h.waitPresent(t)
	if ok, _ := h.loop.Step(); ok {
		t.Fatalf("second step should report end of stream")
	}

	h.loop.Close()
	if _, err := h.loop.Step(); err == nil {
		t.Fatalf("step without a source should fail")
	}
	if err := h.loop.Play(context.Background()); err == nil {
		t.Fatalf("play without a source should fail")
	}

	h.loop.SetSource(&frameSource{n: -1})
	if ok, err := h.loop.Step(); !ok || err != nil {
		t.Fatalf("step after SetSource should render: ok=%v err=%v", ok, err)
	}
}

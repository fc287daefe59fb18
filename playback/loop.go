package playback

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/ByLCY/memeforge/layer"
	"github.com/ByLCY/memeforge/renderer"
)

// DefaultInterval 是默认的重绘间隔（60 Hz）。
const DefaultInterval = time.Second / 60

// State 是播放状态。
type State int

const (
	Stopped State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "stopped"
}

// Source 逐帧提供背景；返回 false 表示播放结束。
type Source interface {
	Frame() (image.Image, bool)
}

// Ticker 驱动重绘节奏，测试中可替换为手动触发的实现。
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker wraps time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker { return timeTicker{t: time.NewTicker(d)} }

// Options 配置渲染循环。
type Options struct {
	Source     Source
	Compositor renderer.Compositor
	Store      *layer.Store
	Surface    *renderer.Surface
	Profile    renderer.Profile
	Present    func(*renderer.Surface) // 每次合成完成后调用，运行在循环 goroutine 中
	Interval   time.Duration
	NewTicker  func(time.Duration) Ticker
}

// Loop 在播放期间每个 tick 重新合成一帧：读取当前帧、按图层的最新状态完整重绘。
// 每个 tick 都是完整重合成，拖拽过程中的位置变化会出现在下一帧里。
type Loop struct {
	opts Options

	mu     sync.Mutex
	state  State
	source Source
	cancel context.CancelFunc
	done   chan struct{}
	err    error

	tickMu sync.Mutex // Step 与循环 goroutine 不会同时合成
}

// NewLoop 创建处于 Stopped 状态的循环。
func NewLoop(opts Options) *Loop {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.NewTicker == nil {
		opts.NewTicker = NewTimeTicker
	}
	if opts.Surface == nil {
		opts.Surface = renderer.NewSurface()
	}
	return &Loop{opts: opts, source: opts.Source}
}

// Surface returns the working surface frames are composited into.
func (l *Loop) Surface() *renderer.Surface { return l.opts.Surface }

func (l *Loop) validate(src Source) error {
	switch {
	case src == nil:
		return errors.New("playback: 没有可播放的媒体源")
	case l.opts.Compositor == nil:
		return errors.New("playback: compositor 不能为空")
	case l.opts.Store == nil:
		return errors.New("playback: store 不能为空")
	}
	return nil
}

// Play 启动重绘 goroutine；已在播放时不做任何事。
// 媒体播完、ctx 取消或调用 Pause 时循环结束。
func (l *Loop) Play(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == Playing {
		return nil
	}
	if err := l.validate(l.source); err != nil {
		return err
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.state, l.cancel, l.done, l.err = Playing, cancel, done, nil
	go l.run(runCtx, l.source, l.opts.NewTicker(l.opts.Interval), done)
	return nil
}

func (l *Loop) run(ctx context.Context, src Source, ticker Ticker, done chan struct{}) {
	defer func() {
		ticker.Stop()
		l.mu.Lock()
		if l.done == done {
			l.state = Stopped
			l.cancel = nil
		}
		l.mu.Unlock()
		close(done)
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			ok, err := l.tick(ctx, src)
			if err != nil {
				l.mu.Lock()
				l.err = err
				l.mu.Unlock()
				return
			}
			if !ok {
				return
			}
		}
	}
}

// tick 合成一帧并交给 Present。ctx 已取消时不再呈现。
func (l *Loop) tick(ctx context.Context, src Source) (bool, error) {
	l.tickMu.Lock()
	defer l.tickMu.Unlock()
	if ctx.Err() != nil {
		return false, nil
	}
	frame, ok := src.Frame()
	if !ok {
		return false, nil
	}
	if err := l.opts.Compositor.Render(l.opts.Surface, frame, l.opts.Store.Layers(), l.opts.Profile); err != nil {
		return false, fmt.Errorf("合成帧失败: %w", err)
	}
	if ctx.Err() != nil {
		return false, nil
	}
	if l.opts.Present != nil {
		l.opts.Present(l.opts.Surface)
	}
	return true, nil
}

// Step 同步合成一帧，供自行控制帧节奏的宿主（如 ebiten 的 Update）调用。
// 返回 false 表示媒体已播完。
func (l *Loop) Step() (bool, error) {
	l.mu.Lock()
	src := l.source
	l.mu.Unlock()
	if err := l.validate(src); err != nil {
		return false, err
	}
	return l.tick(context.Background(), src)
}

// Pause 取消重绘并等待循环 goroutine 退出；返回后不会再有任何重绘。
func (l *Loop) Pause() {
	l.mu.Lock()
	if l.state != Playing {
		l.mu.Unlock()
		return
	}
	l.cancel()
	done := l.done
	l.mu.Unlock()
	<-done
}

// Toggle 在播放与暂停之间切换。
func (l *Loop) Toggle(ctx context.Context) error {
	if l.State() == Playing {
		l.Pause()
		return nil
	}
	return l.Play(ctx)
}

// Wait 阻塞到当前一次播放结束（播完、取消或暂停）。
func (l *Loop) Wait() error {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()
	if done != nil {
		<-done
	}
	return l.Err()
}

// SetSource 先停止播放再切换媒体源。
func (l *Loop) SetSource(src Source) {
	l.Pause()
	l.mu.Lock()
	l.source = src
	l.mu.Unlock()
}

// Close 停止播放并释放媒体源（对应卸载）。
func (l *Loop) Close() { l.SetSource(nil) }

// SetProfile 更换合成配置，下一帧生效。
func (l *Loop) SetProfile(p renderer.Profile) {
	l.tickMu.Lock()
	defer l.tickMu.Unlock()
	l.opts.Profile = p
}

// State returns Playing while the tick goroutine runs.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Err 返回最近一次播放因合成失败而结束时的错误。
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

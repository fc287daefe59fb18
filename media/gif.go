package media

import (
	"image"
	"image/gif"
	"sync"
	"time"

	"golang.org/x/image/draw"

	"github.com/ByLCY/memeforge/layout"
)

// defaultDelay 用于帧延迟为 0 的 GIF（与常见播放器一致）。
const defaultDelay = 100 * time.Millisecond

// GIF 是已解码的动图。帧在打开时按处置方式合成为完整画面，
// Frame 根据播放开始后的耗时返回当前帧，不循环时播完即结束。
type GIF struct {
	frames []*image.RGBA
	delays []time.Duration
	total  time.Duration

	mu     sync.Mutex
	loop   bool
	start  time.Time
	paused time.Time // 非零表示暂停中，时钟停在该时刻
	now    func() time.Time
}

// NewGIF 合成全部帧。LoopCount 为 -1 的 GIF 只播放一次。
func NewGIF(g *gif.GIF) *GIF {
	out := &GIF{loop: g.LoopCount != -1, now: time.Now}
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() && len(g.Image) > 0 {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewRGBA(bounds)
	for i, frame := range g.Image {
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		var previous *image.RGBA
		if disposal == gif.DisposalPrevious {
			previous = cloneRGBA(canvas)
		}
		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		out.frames = append(out.frames, cloneRGBA(canvas))

		delay := defaultDelay
		if i < len(g.Delay) && g.Delay[i] > 0 {
			delay = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		out.delays = append(out.delays, delay)
		out.total += delay

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = previous
		}
	}
	return out
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

func (g *GIF) Kind() Kind { return KindAnimation }

// NativeSize returns the logical screen size.
func (g *GIF) NativeSize() layout.Size {
	if len(g.frames) == 0 {
		return layout.Size{}
	}
	b := g.frames[0].Rect
	return layout.Size{W: float64(b.Dx()), H: float64(b.Dy())}
}

// Len returns the number of frames.
func (g *GIF) Len() int { return len(g.frames) }

// Delay returns how long frame i stays on screen.
func (g *GIF) Delay(i int) time.Duration { return g.delays[i] }

// FrameAt returns the fully composed frame i.
func (g *GIF) FrameAt(i int) image.Image { return g.frames[i] }

// SetLoop 覆盖文件中的循环设置。
func (g *GIF) SetLoop(loop bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loop = loop
}

// Rewind 让下一次 Frame 从第一帧重新开始计时。
func (g *GIF) Rewind() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.start = time.Time{}
	g.paused = time.Time{}
}

// Pause 冻结播放时钟，暂停期间 Frame 一直返回同一帧。
func (g *GIF) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.start.IsZero() && g.paused.IsZero() {
		g.paused = g.now()
	}
}

// Resume 从暂停时的位置继续播放。
func (g *GIF) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.paused.IsZero() {
		return
	}
	g.start = g.start.Add(g.now().Sub(g.paused))
	g.paused = time.Time{}
}

// Frame 返回当前播放位置的帧；首次调用开始计时。
// 不循环的动图在总时长之后返回 false（播放结束）。
func (g *GIF) Frame() (image.Image, bool) {
	if len(g.frames) == 0 {
		return nil, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if !g.paused.IsZero() {
		now = g.paused
	}
	if g.start.IsZero() {
		g.start = now
	}
	elapsed := now.Sub(g.start)
	if elapsed >= g.total {
		if !g.loop {
			return nil, false
		}
		elapsed %= g.total
	}
	for i, d := range g.delays {
		if elapsed < d {
			return g.frames[i], true
		}
		elapsed -= d
	}
	return g.frames[len(g.frames)-1], true
}

// Sequence 返回逐帧源：每次 Frame 前进一帧，播完即结束，用于导出。
func (g *GIF) Sequence() *Sequence {
	return &Sequence{frames: g.frames, delays: g.delays}
}

// Sequence 按调用次数而不是时间推进帧。
type Sequence struct {
	frames []*image.RGBA
	delays []time.Duration
	next   int
}

// Frame returns the next frame, or false after the last one.
func (s *Sequence) Frame() (image.Image, bool) {
	if s.next >= len(s.frames) {
		return nil, false
	}
	img := s.frames[s.next]
	s.next++
	return img, true
}

// LastDelay 返回最近一次 Frame 返回的帧的延迟。
func (s *Sequence) LastDelay() time.Duration {
	if s.next == 0 {
		return 0
	}
	return s.delays[s.next-1]
}

func (s *Sequence) Kind() Kind { return KindAnimation }

// NativeSize returns the logical screen size.
func (s *Sequence) NativeSize() layout.Size {
	if len(s.frames) == 0 {
		return layout.Size{}
	}
	b := s.frames[0].Rect
	return layout.Size{W: float64(b.Dx()), H: float64(b.Dy())}
}

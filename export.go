package main

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"image/png"
	"os"
	"time"

	"golang.org/x/image/draw"

	"github.com/ByLCY/memeforge/layer"
	"github.com/ByLCY/memeforge/layout"
	"github.com/ByLCY/memeforge/media"
	"github.com/ByLCY/memeforge/playback"
	"github.com/ByLCY/memeforge/renderer"
)

// stillDelay 是静态图片导出为 GIF 时的帧延迟。
const stillDelay = 100 * time.Millisecond

// exporter 通过 playback.Loop.Step 逐帧合成并写出文件。
type exporter struct {
	compositor renderer.Compositor
	store      *layer.Store
	profile    renderer.Profile

	canvas layout.Size // 最近一次合成的画布尺寸，供 -debug 使用
}

func (e *exporter) newLoop(src playback.Source, surface *renderer.Surface, present func(*renderer.Surface)) *playback.Loop {
	return playback.NewLoop(playback.Options{
		Source:     src,
		Compositor: e.compositor,
		Store:      e.store,
		Surface:    surface,
		Profile:    e.profile,
		Present:    present,
	})
}

// writePNG 合成第一帧并写出 PNG。
func (e *exporter) writePNG(path string, src media.Source) error {
	surface := renderer.NewSurface()
	ok, err := e.newLoop(src, surface, nil).Step()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("媒体没有可用的帧")
	}
	e.canvas = surface.Size()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建输出文件失败: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, surface.Image()); err != nil {
		return fmt.Errorf("写入 PNG 失败: %w", err)
	}
	return nil
}

// writeGIF 逐帧合成动图（静态图片只有一帧）。maxFrames 为 0 时不限制帧数。
func (e *exporter) writeGIF(path string, src media.Source, maxFrames int, loop bool) error {
	var (
		frames playback.Source = src
		delay                  = func() time.Duration { return stillDelay }
	)
	if anim, ok := src.(*media.GIF); ok {
		seq := anim.Sequence()
		frames, delay = seq, seq.LastDelay
	}

	out := &gif.GIF{}
	if !loop {
		out.LoopCount = -1
	}
	surface := renderer.NewSurface()
	present := func(s *renderer.Surface) {
		img := s.Image()
		pal := image.NewPaletted(img.Rect, palette.Plan9)
		draw.FloydSteinberg.Draw(pal, pal.Rect, img, img.Rect.Min)
		out.Image = append(out.Image, pal)
		out.Delay = append(out.Delay, int(delay()/(10*time.Millisecond)))
	}

	l := e.newLoop(frames, surface, present)
	for maxFrames <= 0 || len(out.Image) < maxFrames {
		ok, err := l.Step()
		if err != nil {
			return err
		}
		if !ok || src.Kind() == media.KindImage {
			break
		}
	}
	if len(out.Image) == 0 {
		return fmt.Errorf("媒体没有可用的帧")
	}
	e.canvas = surface.Size()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建输出文件失败: %w", err)
	}
	defer f.Close()
	if err := gif.EncodeAll(f, out); err != nil {
		return fmt.Errorf("写入 GIF 失败: %w", err)
	}
	return nil
}

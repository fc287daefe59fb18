// Command memedit 是交互式编辑器：在窗口中拖拽文字图层，动图边播放边重绘。
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ByLCY/memeforge/config"
	"github.com/ByLCY/memeforge/interaction"
	"github.com/ByLCY/memeforge/layer"
	"github.com/ByLCY/memeforge/layout"
	"github.com/ByLCY/memeforge/media"
	"github.com/ByLCY/memeforge/playback"
	"github.com/ByLCY/memeforge/renderer"
	canvasrenderer "github.com/ByLCY/memeforge/renderer/canvas"
)

// 字号与描边的可调范围，与编辑面板的滑块一致。
const (
	minFontSize   = 16
	maxFontSize   = 120
	fontSizeStep  = 4
	maxStrokeSize = 8
)

// recorder 记住最近一帧，暂停时编辑图层也能在同一帧上重绘。
type recorder struct {
	src  media.Source
	last image.Image
}

func (r *recorder) Frame() (image.Image, bool) {
	img, ok := r.src.Frame()
	if ok {
		r.last = img
	}
	return img, ok
}

type editor struct {
	ctrl     *interaction.Controller
	store    *layer.Store
	renderer *canvasrenderer.Renderer
	loop     *playback.Loop
	frames   *recorder
	profile  renderer.Profile
	animated bool
	playing  bool
	ended    bool // 不循环的动图已播完，再次播放时从头开始

	texture  *ebiten.Image
	rendered uint64 // 最近一次重绘时的 store 版本
	fresh    bool   // surface 内容需要上传到 texture
	output   string
	status   string
}

func newEditor(src media.Source, store *layer.Store, r *canvasrenderer.Renderer, profile renderer.Profile, output string) *editor {
	e := &editor{
		ctrl:     interaction.New(store),
		store:    store,
		renderer: r,
		frames:   &recorder{src: src},
		profile:  profile,
		animated: src.Kind() == media.KindAnimation,
		output:   output,
	}
	e.ctrl.SetMeasurer(r)
	e.loop = playback.NewLoop(playback.Options{
		Source:     e.frames,
		Compositor: r,
		Store:      store,
		Profile:    profile,
		Present:    func(*renderer.Surface) { e.fresh = true },
	})
	e.playing = e.animated
	return e
}

// redraw 在暂停或静态图片时按需重绘：只有图层变化（或尚未绘制）才重新合成。
func (e *editor) redraw() error {
	if e.frames.last != nil && e.store.Version() == e.rendered && e.texture != nil {
		return nil
	}
	if e.frames.last == nil {
		if _, err := e.loop.Step(); err != nil {
			return err
		}
	} else {
		if err := e.renderer.Render(e.loop.Surface(), e.frames.last, e.store.Layers(), e.profile); err != nil {
			return err
		}
		e.fresh = true
	}
	e.rendered = e.store.Version()
	return nil
}

func (e *editor) Update() error {
	e.handleKeys()
	e.handlePointer()

	if e.playing {
		ok, err := e.loop.Step()
		if err != nil {
			return err
		}
		if !ok {
			e.playing = false
			e.status = "播放结束"
		}
		e.rendered = e.store.Version()
	} else if err := e.redraw(); err != nil {
		return err
	}

	e.ctrl.SetCanvas(e.loop.Surface().Size())
	e.upload()
	return nil
}

func (e *editor) upload() {
	if !e.fresh {
		return
	}
	img := e.loop.Surface().Image()
	if img == nil {
		return
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if e.texture == nil || e.texture.Bounds().Dx() != w || e.texture.Bounds().Dy() != h {
		e.texture = ebiten.NewImage(w, h)
	}
	e.texture.WritePixels(img.Pix)
	e.fresh = false
}

func (e *editor) handlePointer() {
	x, y := ebiten.CursorPosition()
	p := layout.Point{X: float64(x), Y: float64(y)}
	size := e.ctrl.Canvas()
	inside := p.X >= 0 && p.Y >= 0 && p.X < size.W && p.Y < size.H

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && inside:
		e.ctrl.PointerDown(p)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		e.ctrl.PointerUp()
	case !inside:
		e.ctrl.PointerLeave()
	default:
		e.ctrl.PointerMove(p)
	}

	switch e.ctrl.Cursor() {
	case interaction.CursorGrabbing:
		ebiten.SetCursorShape(ebiten.CursorShapeMove)
	case interaction.CursorGrab:
		ebiten.SetCursorShape(ebiten.CursorShapePointer)
	default:
		ebiten.SetCursorShape(ebiten.CursorShapeDefault)
	}
}

func (e *editor) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		i := e.ctrl.AddLayer()
		e.status = fmt.Sprintf("新增图层 %d", i)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDelete) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		if i, ok := e.ctrl.Selected(); ok {
			e.ctrl.RemoveLayer(i)
			e.status = fmt.Sprintf("删除图层 %d", i)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) && e.animated {
		e.togglePlayback()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		e.adjustFontSize(fontSizeStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		e.adjustFontSize(-fontSizeStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		if i, ok := e.ctrl.Selected(); ok {
			l, _ := e.store.At(i)
			e.ctrl.ApplyStyle(layer.WithStrokeWidth((l.StrokeWidth + 1) % (maxStrokeSize + 1)))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		e.ctrl.Reset()
		e.status = "已重置"
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if err := e.export(); err != nil {
			e.status = err.Error()
			log.Printf("导出失败: %v", err)
		} else {
			e.status = "已导出 " + e.output
			log.Printf("已导出：%s", e.output)
		}
	}
}

// togglePlayback 暂停时冻结动图时钟，恢复时从暂停处继续；已播完的动图从头播放。
func (e *editor) togglePlayback() {
	g, _ := e.frames.src.(*media.GIF)
	switch {
	case e.playing:
		e.playing = false
		if g != nil {
			g.Pause()
		}
	case e.ended:
		e.playing, e.ended = true, false
		if g != nil {
			g.Rewind()
		}
	default:
		e.playing = true
		if g != nil {
			g.Resume()
		}
	}
}

func (e *editor) adjustFontSize(delta int) {
	i, ok := e.ctrl.Selected()
	if !ok {
		return
	}
	l, _ := e.store.At(i)
	size := min(max(l.FontSize+delta, minFontSize), maxFontSize)
	e.ctrl.ApplyStyle(layer.WithFontSize(size))
}

func (e *editor) export() error {
	img := e.loop.Surface().Snapshot()
	if img == nil {
		return fmt.Errorf("画布尚未绘制")
	}
	if err := os.MkdirAll(filepath.Dir(e.output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	f, err := os.Create(e.output)
	if err != nil {
		return fmt.Errorf("创建输出文件失败: %w", err)
	}
	defer f.Close()
	return png.Encode(f, img)
}

func (e *editor) Draw(screen *ebiten.Image) {
	if e.texture != nil {
		screen.DrawImage(e.texture, nil)
	}
	sel := "-"
	if i, ok := e.ctrl.Selected(); ok {
		l, _ := e.store.At(i)
		sel = fmt.Sprintf("%d %q size=%d stroke=%d y=%.0f%%", i, l.Content, l.FontSize, l.StrokeWidth, l.Y)
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("layers=%d selected=%s state=%v", e.store.Len(), sel, e.ctrl.State()), 4, 4)
	ebitenutil.DebugPrintAt(screen, "N add  Del remove  Space play  +/- size  O outline  R reset  S export", 4, 20)
	if e.status != "" {
		ebitenutil.DebugPrintAt(screen, e.status, 4, 36)
	}
}

func (e *editor) Layout(outsideWidth, outsideHeight int) (int, int) {
	size := e.loop.Surface().Size()
	if size.Empty() {
		return outsideWidth, outsideHeight
	}
	return layout.PixelSize(size)
}

func main() {
	mediaPath := flag.String("media", "", "背景媒体路径（图片或 GIF）")
	input := flag.String("in", "", "可选的脚本文件，用于初始化图层")
	output := flag.String("out", "output/meme.png", "按 S 导出的 PNG 路径")
	configPath := flag.String("config", "memeforge.toml", "TOML 配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("读取配置失败: %v", err)
	}

	sess, err := openSession(cfg, *input, *mediaPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{Fonts: cfg.Fonts.Resources()})
	ed := newEditor(sess.src, sess.store, r, sess.profile, *output)

	w, h := layout.PixelSize(layout.FitSize(sess.src.NativeSize(), sess.profile.Cap))
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("memedit - " + filepath.Base(sess.mediaPath))
	if err := ebiten.RunGame(ed); err != nil {
		log.Fatal(err)
	}
}

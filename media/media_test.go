package media

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	path := filepath.Join(dir, "still.bin") // 扩展名故意不匹配，按内容识别
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return path
}

// testGIF 生成 3 帧 4x4 动图：每帧点亮不同的像素，延迟 10ms/20ms/0。
func testGIF(loop int) *gif.GIF {
	pal := color.Palette{color.Transparent, color.White}
	g := &gif.GIF{LoopCount: loop, Config: image.Config{Width: 4, Height: 4, ColorModel: pal}}
	for i := 0; i < 3; i++ {
		frame := image.NewPaletted(image.Rect(0, 0, 4, 4), pal)
		frame.SetColorIndex(i, 0, 1)
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, []int{1, 2, 0}[i])
		g.Disposal = append(g.Disposal, gif.DisposalNone)
	}
	return g
}

func writeGIF(t *testing.T, dir string, g *gif.GIF) string {
	t.Helper()
	path := filepath.Join(dir, "anim.gif")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := gif.EncodeAll(f, g); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	return path
}

func TestOpenStill(t *testing.T) {
	src, err := Open(writePNG(t, t.TempDir(), 30, 20))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if src.Kind() != KindImage {
		t.Fatalf("expected still image, got %v", src.Kind())
	}
	if got := src.NativeSize(); got.W != 30 || got.H != 20 {
		t.Fatalf("native size mismatch: %+v", got)
	}
	for i := 0; i < 3; i++ {
		if img, ok := src.Frame(); !ok || img == nil {
			t.Fatalf("still should always provide a frame")
		}
	}
	if ProfileFor(src.Kind()).Name != "image" {
		t.Fatalf("still images use the image profile")
	}
}

func TestOpenAnimatedGIF(t *testing.T) {
	src, err := Open(writeGIF(t, t.TempDir(), testGIF(0)))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	anim, ok := src.(*GIF)
	if !ok {
		t.Fatalf("expected *GIF, got %T", src)
	}
	if anim.Len() != 3 || ProfileFor(anim.Kind()).Name != "video" {
		t.Fatalf("animation mismatch: len=%d kind=%v", anim.Len(), anim.Kind())
	}
	if anim.Delay(0) != 10*time.Millisecond || anim.Delay(2) != defaultDelay {
		t.Fatalf("delay mismatch: %v %v", anim.Delay(0), anim.Delay(2))
	}
	// DisposalNone：后一帧叠加在前一帧之上
	last := anim.FrameAt(2).(*image.RGBA)
	for x := 0; x < 3; x++ {
		if _, _, _, a := last.At(x, 0).RGBA(); a == 0 {
			t.Fatalf("pixel %d should remain from earlier frames", x)
		}
	}
}

func TestGIFFrameFollowsClock(t *testing.T) {
	anim := NewGIF(testGIF(-1))
	clock := time.Unix(0, 0)
	anim.now = func() time.Time { return clock }

	if img, ok := anim.Frame(); !ok || img != anim.FrameAt(0) {
		t.Fatalf("first call should start at frame 0")
	}
	clock = clock.Add(15 * time.Millisecond)
	if img, _ := anim.Frame(); img != anim.FrameAt(1) {
		t.Fatalf("expected frame 1 after 15ms")
	}
	clock = clock.Add(200 * time.Millisecond)
	if _, ok := anim.Frame(); ok {
		t.Fatalf("play-once GIF should end after its duration")
	}

	anim.SetLoop(true)
	if img, ok := anim.Frame(); !ok || img == nil {
		t.Fatalf("looping GIF should wrap around")
	}
	anim.Rewind()
	if img, _ := anim.Frame(); img != anim.FrameAt(0) {
		t.Fatalf("rewind should restart from frame 0")
	}
}

func TestSequenceEndsAfterLastFrame(t *testing.T) {
	seq := NewGIF(testGIF(0)).Sequence()
	n := 0
	for {
		if _, ok := seq.Frame(); !ok {
			break
		}
		n++
		if seq.LastDelay() <= 0 {
			t.Fatalf("delay should be positive")
		}
	}
	if n != 3 {
		t.Fatalf("expected 3 frames, got %d", n)
	}
}

func TestOpenUnsupported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("just some text, not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Open(path); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if _, err := Open(filepath.Join(dir, "missing.png")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestGIFPauseResumesFromSameFrame(t *testing.T) {
	anim := NewGIF(testGIF(0))
	clock := time.Unix(0, 0)
	anim.now = func() time.Time { return clock }

	anim.Frame()
	clock = clock.Add(15 * time.Millisecond)
	anim.Pause()
	clock = clock.Add(time.Second)
	if img, ok := anim.Frame(); !ok || img != anim.FrameAt(1) {
		t.Fatalf("paused GIF should hold frame 1")
	}

	anim.Resume()
	if img, _ := anim.Frame(); img != anim.FrameAt(1) {
		t.Fatalf("resume should continue from frame 1, not restart")
	}
	clock = clock.Add(20 * time.Millisecond)
	if img, _ := anim.Frame(); img != anim.FrameAt(2) {
		t.Fatalf("expected frame 2 after resuming for 20ms")
	}
}

package renderer

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/ByLCY/memeforge/layer"
	"github.com/ByLCY/memeforge/layout"
)

// Compositor 将背景帧与全部文字图层合成到 surface 上。
// 相同输入必须产生逐像素一致的输出；渲染不改变任何图层状态。
type Compositor interface {
	Render(surface *Surface, background image.Image, layers []layer.TextLayer, profile Profile) error
}

// Shadow 描述填充文字的投影。
type Shadow struct {
	Color   layer.Color
	Blur    float64 // 高斯模糊半径（像素）
	OffsetX float64
	OffsetY float64
}

// Profile 是一组合成参数：画布上限、最小描边宽度与投影。
type Profile struct {
	Name         string
	Cap          layout.Size
	MinLineWidth float64
	Shadow       Shadow
}

// ImageProfile 用于静态图片。
var ImageProfile = Profile{
	Name:         "image",
	Cap:          layout.Size{W: 500, H: 500},
	MinLineWidth: 1,
	Shadow: Shadow{
		Color:   layer.Color{A: 77}, // rgba(0,0,0,0.3)
		Blur:    2,
		OffsetX: 1,
		OffsetY: 1,
	},
}

// VideoProfile 用于逐帧播放的视频/动图，投影更重。
var VideoProfile = Profile{
	Name:         "video",
	Cap:          layout.Size{W: 600, H: 600},
	MinLineWidth: 2,
	Shadow: Shadow{
		Color:   layer.Color{A: 204}, // rgba(0,0,0,0.8)
		Blur:    4,
		OffsetX: 2,
		OffsetY: 2,
	},
}

// ProfileByName 返回 "image" / "video" 对应的内置配置。
func ProfileByName(name string) (Profile, bool) {
	switch name {
	case ImageProfile.Name:
		return ImageProfile, true
	case VideoProfile.Name:
		return VideoProfile, true
	default:
		return Profile{}, false
	}
}

// Surface 是可复用的 RGBA 工作画布。尺寸不变时 Resize 不会重新分配内存。
type Surface struct {
	img *image.RGBA
}

// NewSurface creates an empty surface; the first Render sizes it.
func NewSurface() *Surface { return &Surface{} }

// Resize 调整画布尺寸；尺寸变化时重新分配，否则保留原缓冲区。
func (s *Surface) Resize(w, h int) {
	if s.img != nil && s.img.Rect.Dx() == w && s.img.Rect.Dy() == h {
		return
	}
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

// Clear 将画布清为全透明。
func (s *Surface) Clear() {
	if s.img == nil {
		return
	}
	draw.Draw(s.img, s.img.Rect, image.Transparent, image.Point{}, draw.Src)
}

// Image 返回底层缓冲区（下一次 Render 会覆盖其内容）。
func (s *Surface) Image() *image.RGBA { return s.img }

// Snapshot 返回当前内容的独立副本，适合逐帧收集。
func (s *Surface) Snapshot() *image.RGBA {
	if s.img == nil {
		return nil
	}
	out := image.NewRGBA(s.img.Rect)
	copy(out.Pix, s.img.Pix)
	return out
}

// Size 返回当前画布的像素尺寸；尚未渲染时为零值。
func (s *Surface) Size() layout.Size {
	if s.img == nil {
		return layout.Size{}
	}
	return layout.Size{W: float64(s.img.Rect.Dx()), H: float64(s.img.Rect.Dy())}
}

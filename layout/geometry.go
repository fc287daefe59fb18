package layout

import (
	"math"

	"github.com/ByLCY/memeforge/layer"
)

const (
	// ReferenceWidth 是所有逻辑字号与描边宽度的基准画布宽度。
	ReferenceWidth = 500.0
	// MinFontSize 是缩放后字号的下限（像素），画布再小也不会低于该值。
	MinFontSize = 12.0
)

// ScaledFontSize = max(base * W/500, 12)。
func ScaledFontSize(base int, width float64) float64 {
	return math.Max(float64(base)*(width/ReferenceWidth), MinFontSize)
}

// StrokeLineWidth = max(strokeWidth * W/500, minWidth)。
func StrokeLineWidth(strokeWidth int, width, minWidth float64) float64 {
	return math.Max(float64(strokeWidth)*(width/ReferenceWidth), minWidth)
}

// Anchor 返回图层文字居中的像素点 (W/2, Y/100*H)。
func Anchor(l layer.TextLayer, size Size) Point {
	return Point{X: size.W / 2, Y: l.Y / 100 * size.H}
}

// PercentFromPixel 将像素 y 换算回画布高度百分比并限制到合法区间。
func PercentFromPixel(y, height float64) float64 {
	if height <= 0 {
		return layer.DefaultY
	}
	return layer.ClampY(y / height * 100)
}

// Bounds 计算图层的包围盒：水平居中，宽度为测量宽度，高度为缩放字号。
// 画布或测量器缺失时返回 false。
func Bounds(l layer.TextLayer, size Size, m Measurer) (Rect, bool) {
	if m == nil || size.Empty() {
		return Rect{}, false
	}
	fs := ScaledFontSize(l.FontSize, size.W)
	w := m.TextWidth(l.Content, fs)
	a := Anchor(l, size)
	return Rect{
		X:      a.X - w/2,
		Y:      a.Y - fs/2,
		Width:  w,
		Height: fs,
	}, true
}

// HitTest 自顶向下（与绘制顺序相反）查找包含点 p 的第一个图层。
// 视觉上位于最上层的重叠图层优先被选中。
func HitTest(layers []layer.TextLayer, size Size, m Measurer, p Point) (int, bool) {
	if m == nil || size.Empty() {
		return -1, false
	}
	for i := len(layers) - 1; i >= 0; i-- {
		r, ok := Bounds(layers[i], size, m)
		if ok && r.Contains(p) {
			return i, true
		}
	}
	return -1, false
}

// FitSize 在原始尺寸超出上限时按比例整体缩小，使其落入 limit；否则保持原尺寸。
// 静态图片与视频逐帧共用这一规则，只是上限不同。
func FitSize(native, limit Size) Size {
	if native.Empty() {
		return Size{}
	}
	if limit.Empty() || (native.W <= limit.W && native.H <= limit.H) {
		return native
	}
	scale := math.Min(limit.W/native.W, limit.H/native.H)
	return Size{W: native.W * scale, H: native.H * scale}
}

// PixelSize 将尺寸取整为整数像素（至少 1）。
func PixelSize(s Size) (int, int) {
	w := int(math.Round(s.W))
	h := int(math.Round(s.H))
	return max(w, 1), max(h, 1)
}

// TakeSnapshot 计算全部图层在给定画布上的锚点与包围盒。
func TakeSnapshot(layers []layer.TextLayer, size Size, m Measurer) Snapshot {
	snap := Snapshot{Canvas: size, Layers: make([]LayerBox, 0, len(layers))}
	for i, l := range layers {
		box := LayerBox{
			Index:    i,
			Content:  l.Content,
			Visible:  l.Visible(),
			FontSize: ScaledFontSize(l.FontSize, size.W),
			Anchor:   Anchor(l, size),
		}
		if r, ok := Bounds(l, size, m); ok {
			box.Bounds = r
		}
		snap.Layers = append(snap.Layers, box)
	}
	return snap
}

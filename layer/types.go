package layer

// 该文件定义文字图层记录及其样式值，供 Store、几何计算、渲染器与脚本构建共用。

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// 垂直位置的合法区间（画布高度百分比）。
const (
	MinY = 5.0
	MaxY = 95.0
)

// 新建图层的默认样式。
const (
	DefaultContent     = "NEW TEXT"
	DefaultFontSize    = 48
	DefaultStrokeWidth = 3
	DefaultY           = 50.0
)

var (
	White = Color{R: 255, G: 255, B: 255, A: 255}
	Black = Color{R: 0, G: 0, B: 0, A: 255}
)

// TextLayer 表示一段带样式的文字。水平方向始终居中，Y 是唯一的位置坐标。
type TextLayer struct {
	Content     string  `json:"content"`
	FontSize    int     `json:"fontSize"`    // 相对 500 单位参考宽度的逻辑字号
	Color       Color   `json:"color"`       // 填充色
	Stroke      Color   `json:"stroke"`      // 描边色
	StrokeWidth int     `json:"strokeWidth"` // 0 表示不描边
	Y           float64 `json:"y"`           // 距顶部的画布高度百分比
}

// Visible reports whether the layer has anything to draw.
func (l TextLayer) Visible() bool { return strings.TrimSpace(l.Content) != "" }

// NewLayer 返回 "NEW TEXT" 默认图层。
func NewLayer() TextLayer {
	return TextLayer{
		Content:     DefaultContent,
		FontSize:    DefaultFontSize,
		Color:       White,
		Stroke:      Black,
		StrokeWidth: DefaultStrokeWidth,
		Y:           DefaultY,
	}
}

// DefaultLayers 返回初始化时预置的上下两行文字。
func DefaultLayers() []TextLayer {
	top := NewLayer()
	top.Content = "TOP TEXT"
	top.Y = 20
	bottom := NewLayer()
	bottom.Content = "BOTTOM TEXT"
	bottom.Y = 80
	return []TextLayer{top, bottom}
}

// ClampY 将垂直位置限制在 [MinY, MaxY]。
func ClampY(y float64) float64 {
	if y != y { // NaN
		return DefaultY
	}
	if y < MinY {
		return MinY
	}
	if y > MaxY {
		return MaxY
	}
	return y
}

// Style 是对图层的部分更新，nil 字段保持原值。
type Style struct {
	Content     *string
	FontSize    *int
	Color       *Color
	Stroke      *Color
	StrokeWidth *int
}

func (s Style) apply(l TextLayer) TextLayer {
	if s.Content != nil {
		l.Content = *s.Content
	}
	if s.FontSize != nil {
		l.FontSize = max(*s.FontSize, 1)
	}
	if s.Color != nil {
		l.Color = *s.Color
	}
	if s.Stroke != nil {
		l.Stroke = *s.Stroke
	}
	if s.StrokeWidth != nil {
		l.StrokeWidth = max(*s.StrokeWidth, 0)
	}
	return l
}

// WithContent 等辅助函数用于快速构造单字段 Style。
func WithContent(s string) Style { return Style{Content: &s} }
func WithFontSize(n int) Style { return Style{FontSize: &n} }
func WithColor(c Color) Style { return Style{Color: &c} }
func WithStroke(c Color) Style { return Style{Stroke: &c} }
func WithStrokeWidth(n int) Style { return Style{StrokeWidth: &n} }

// Color 采用 0-255 的 RGBA 数值。
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// NRGBA converts to a non-premultiplied standard library colour.
func (c Color) NRGBA() color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// Hex 返回 #RRGGBB（不透明）或 #RRGGBBAA 形式。
func (c Color) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// ParseColor 解析 #RGB、#RRGGBB 与 #RRGGBBAA。
func ParseColor(value string) (Color, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(raw) == 3 {
		raw = string([]byte{raw[0], raw[0], raw[1], raw[1], raw[2], raw[2]})
	}
	if len(raw) == 6 {
		raw += "ff"
	}
	if len(raw) != 8 {
		return Color{}, fmt.Errorf("颜色值 %q 无法解析", value)
	}
	n, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %q 无法解析: %w", value, err)
	}
	return Color{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

// MustColor 与 ParseColor 相同，但解析失败时 panic，仅用于常量初始化。
func MustColor(value string) Color {
	c, err := ParseColor(value)
	if err != nil {
		panic(err)
	}
	return c
}

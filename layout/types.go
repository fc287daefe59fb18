package layout

// 该文件定义几何计算、调试 JSON 与脚本构建共用的基础类型。

import "github.com/ByLCY/memeforge/layer"

// Size 为画布像素尺寸。
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Empty reports whether the size cannot host a drawing.
func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// Point 为画布像素坐标，原点在左上角。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Rect 是轴对齐的包围盒。
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains 判断点是否落在矩形内，四条边均包含在内。
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// LayerBox 记录单个图层在某个画布尺寸下的计算结果，用于调试输出。
type LayerBox struct {
	Index    int     `json:"index"`
	Content  string  `json:"content"`
	Visible  bool    `json:"visible"`
	FontSize float64 `json:"fontSize"` // 像素
	Anchor   Point   `json:"anchor"`
	Bounds   Rect    `json:"bounds"`
}

// Snapshot 是某一帧的全部图层几何信息。
type Snapshot struct {
	Canvas Size       `json:"canvas"`
	Layers []LayerBox `json:"layers"`
}

// Scene 是脚本构建的结果：媒体、渲染配置名、图层与可选文案。
type Scene struct {
	Name    string            `json:"name"`
	Version string            `json:"version"`
	Media   string            `json:"media"`
	Profile string            `json:"profile,omitempty"` // image | video，为空时按媒体类型决定
	Caption string            `json:"caption,omitempty"`
	Layers  []layer.TextLayer `json:"layers"`
}

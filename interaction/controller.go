package interaction

import (
	"github.com/ByLCY/memeforge/caption"
	"github.com/ByLCY/memeforge/layer"
	"github.com/ByLCY/memeforge/layout"
)

// State 是指针交互状态：Idle → Hovering → Dragging → Idle。
type State int

const (
	Idle State = iota
	Hovering
	Dragging
)

func (s State) String() string {
	switch s {
	case Hovering:
		return "hovering"
	case Dragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Cursor 是宿主应显示的指针样式。
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorGrab
	CursorGrabbing
)

// Controller 把指针事件翻译为图层选择与拖拽，位置写入统一经过 Store.SetPosition。
// 选中状态属于视图，不写入图层记录。
//
// Controller 不是并发安全的，应在宿主处理输入的同一个 goroutine 中调用。
type Controller struct {
	store    *layer.Store
	measurer layout.Measurer
	canvas   layout.Size

	selected   int // -1 表示未选中
	state      State
	dragOffset layout.Point
}

// New 创建控制器。在 SetCanvas 与 SetMeasurer 之前，指针事件均不生效。
func New(store *layer.Store) *Controller {
	return &Controller{store: store, selected: -1}
}

// Store returns the layer store the controller writes to.
func (c *Controller) Store() *layer.Store { return c.store }

// SetCanvas 更新当前画布尺寸（每次合成后由宿主同步）。零尺寸表示画布不存在。
func (c *Controller) SetCanvas(size layout.Size) { c.canvas = size }

// Canvas returns the last canvas size given to SetCanvas.
func (c *Controller) Canvas() layout.Size { return c.canvas }

// SetMeasurer 设置命中测试使用的文字测量器。
func (c *Controller) SetMeasurer(m layout.Measurer) { c.measurer = m }

func (c *Controller) ready() bool {
	return c.store != nil && c.measurer != nil && !c.canvas.Empty()
}

// PointerDown 命中则选中并进入拖拽，记录指针与锚点的偏移；未命中则取消选中。
func (c *Controller) PointerDown(p layout.Point) {
	if !c.ready() {
		return
	}
	layers := c.store.Layers()
	i, ok := layout.HitTest(layers, c.canvas, c.measurer, p)
	if !ok {
		c.selected = -1
		c.state = Idle
		return
	}
	c.selected = i
	c.state = Dragging
	c.dragOffset = p.Sub(layout.Anchor(layers[i], c.canvas))
}

// PointerMove 拖拽时只更新纵向位置；非拖拽时仅做悬停检测。
func (c *Controller) PointerMove(p layout.Point) {
	if !c.ready() {
		return
	}
	if c.state == Dragging {
		y := layout.PercentFromPixel(p.Y-c.dragOffset.Y, c.canvas.H)
		if !c.store.SetPosition(c.selected, y) {
			c.state = Idle
		}
		return
	}
	if _, ok := layout.HitTest(c.store.Layers(), c.canvas, c.measurer, p); ok {
		c.state = Hovering
	} else {
		c.state = Idle
	}
}

// PointerUp 结束拖拽，保留选中。
func (c *Controller) PointerUp() {
	if c.state == Dragging {
		c.state = Idle
	}
}

// PointerLeave 指针离开画布：结束拖拽与悬停。
func (c *Controller) PointerLeave() { c.state = Idle }

// Select 选中索引 i（例如在图层列表中点击）。越界时返回 false 且不改变选中。
func (c *Controller) Select(i int) bool {
	if c.store == nil || i < 0 || i >= c.store.Len() {
		return false
	}
	c.selected = i
	return true
}

// ClearSelection 取消选中。
func (c *Controller) ClearSelection() { c.selected = -1 }

// Selected 返回当前选中的图层索引。
func (c *Controller) Selected() (int, bool) {
	if c.selected < 0 || c.store == nil || c.selected >= c.store.Len() {
		return -1, false
	}
	return c.selected, true
}

func (c *Controller) Dragging() bool { return c.state == Dragging }
func (c *Controller) Hovering() bool { return c.state == Hovering }
func (c *Controller) State() State   { return c.state }

// Cursor 返回当前应显示的指针样式。
func (c *Controller) Cursor() Cursor {
	switch c.state {
	case Dragging:
		return CursorGrabbing
	case Hovering:
		return CursorGrab
	default:
		return CursorDefault
	}
}

// AddLayer 追加一个默认图层并选中它。
func (c *Controller) AddLayer() int {
	i := c.store.Add(layer.NewLayer())
	c.selected = i
	return i
}

// RemoveLayer 删除图层，并总是取消选中（后续索引已前移）。
func (c *Controller) RemoveLayer(i int) bool {
	ok := c.store.Remove(i)
	c.selected = -1
	if c.state == Dragging {
		c.state = Idle
	}
	return ok
}

// ApplyStyle 将样式合并到选中图层；未选中时不做任何事。
func (c *Controller) ApplyStyle(style layer.Style) bool {
	i, ok := c.Selected()
	if !ok {
		return false
	}
	return c.store.ApplyStyle(i, style)
}

// ApplyCaption 拆分文案并按顺序写入前两个图层。
func (c *Controller) ApplyCaption(text string) {
	c.store.ApplyCaption(caption.Split(text))
}

// Reset 恢复默认图层并清空交互状态。
func (c *Controller) Reset() {
	c.store.Reset()
	c.selected = -1
	c.state = Idle
}

package layer

import "sync"

// Store 是图层内容、样式与位置的唯一数据源。
//
// 写入按关注点拆分为独立入口：位置（SetPosition）、样式（ApplyStyle）、
// 结构（Add/Remove/Reset）与文案（ApplyCaption）。读取总是返回完整副本，
// 渲染循环在其它 goroutine 中读取时不会看到半更新的记录。
type Store struct {
	mu      sync.RWMutex
	layers  []TextLayer
	version uint64
}

// NewStore 用给定图层初始化；未提供时预置 DefaultLayers。
// 构造时的位置同样会被限制在 [MinY, MaxY]。
func NewStore(layers ...TextLayer) *Store {
	if len(layers) == 0 {
		layers = DefaultLayers()
	}
	s := &Store{layers: make([]TextLayer, len(layers))}
	for i, l := range layers {
		l.Y = ClampY(l.Y)
		s.layers[i] = l
	}
	return s
}

// Layers 返回当前图层列表的时间点副本（自底向上）。
func (s *Store) Layers() []TextLayer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TextLayer, len(s.layers))
	copy(out, s.layers)
	return out
}

// Len returns the number of layers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.layers)
}

// At returns the layer at index i.
func (s *Store) At(i int) (TextLayer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.layers) {
		return TextLayer{}, false
	}
	return s.layers[i], true
}

// Version 在每次修改后递增，宿主可据此跳过静态图片的重复渲染。
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Add 追加图层并返回其索引。
func (s *Store) Add(l TextLayer) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.Y = ClampY(l.Y)
	s.layers = append(s.layers, l)
	s.version++
	return len(s.layers) - 1
}

// Remove 删除索引 i 处的图层，其后的索引依次前移；越界时不做任何事。
func (s *Store) Remove(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.layers) {
		return false
	}
	s.layers = append(s.layers[:i:i], s.layers[i+1:]...)
	s.version++
	return true
}

// SetPosition 是位置变更的唯一写入口，y 会被限制在 [MinY, MaxY]。
func (s *Store) SetPosition(i int, y float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.layers) {
		return false
	}
	s.layers[i].Y = ClampY(y)
	s.version++
	return true
}

// ApplyStyle 将部分样式合并到索引 i 处的图层。
func (s *Store) ApplyStyle(i int, style Style) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.layers) {
		return false
	}
	s.layers[i] = style.apply(s.layers[i])
	s.version++
	return true
}

// ApplyCaption 按顺序把文案片段写入前几个图层；图层不足时补上默认的上/下图层。
func (s *Store) ApplyCaption(parts []string) {
	if len(parts) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	defaults := DefaultLayers()
	for i, part := range parts {
		if i >= len(s.layers) {
			l := NewLayer()
			if i < len(defaults) {
				l = defaults[i]
			}
			s.layers = append(s.layers, l)
		}
		s.layers[i].Content = part
	}
	s.version++
}

// Reset 恢复为 DefaultLayers。
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers = DefaultLayers()
	s.version++
}

// Replace 整体替换图层列表（脚本重新加载时使用）。
func (s *Store) Replace(layers []TextLayer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers = make([]TextLayer, len(layers))
	for i, l := range layers {
		l.Y = ClampY(l.Y)
		s.layers[i] = l
	}
	s.version++
}

// Top / Bottom 是旧版"上下两行"视图，读写的是同一列表中的 0 号与 1 号图层。
func (s *Store) Top() (TextLayer, bool)    { return s.At(0) }
func (s *Store) Bottom() (TextLayer, bool) { return s.At(1) }

// SetTop 以整条记录覆盖 0 号图层（旧版文字控件的写法）。
func (s *Store) SetTop(l TextLayer) bool { return s.set(0, l) }

// SetBottom 以整条记录覆盖 1 号图层。
func (s *Store) SetBottom(l TextLayer) bool { return s.set(1, l) }

func (s *Store) set(i int, l TextLayer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.layers) {
		return false
	}
	l.Y = ClampY(l.Y)
	s.layers[i] = l
	s.version++
	return true
}

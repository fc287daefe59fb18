package layout

// Measurer 负责按给定像素字号测量单行文字的像素宽度。
// 实现方需使用与渲染一致的字体链（粗体 Impact → Arial Black → Arial → sans-serif）。
type Measurer interface {
	TextWidth(content string, fontSize float64) float64
}

// BuildOptions 配置脚本构建阶段的依赖。
type BuildOptions struct {
	Data any // 绑定到 ${...} 占位符的数据，通常来自 -data JSON
}

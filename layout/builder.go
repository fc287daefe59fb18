package layout

import (
	"fmt"
	"strings"

	"github.com/ByLCY/memeforge/binding"
	"github.com/ByLCY/memeforge/dsl"
	"github.com/ByLCY/memeforge/layer"
)

// Build 根据脚本 AST 生成场景：媒体路径、渲染配置与有序图层。
// 脚本中没有 layer 语句时使用默认的上下两行。
func Build(doc *dsl.Document, opts BuildOptions) (*Scene, error) {
	if doc == nil {
		return nil, fmt.Errorf("脚本为空")
	}
	if doc.Body == nil {
		return nil, fmt.Errorf("脚本 %s 缺少内容块", doc.Name)
	}

	scene := &Scene{Name: doc.Name, Version: doc.Version}
	for key, val := range doc.Body.Assignments() {
		switch strings.ToLower(key) {
		case "media":
			scene.Media = binding.Interpolate(val.Raw(), opts.Data)
		case "profile":
			profile := strings.ToLower(val.Raw())
			if profile != "image" && profile != "video" {
				return nil, fmt.Errorf("未知的 profile %q（可选 image / video）", val.Raw())
			}
			scene.Profile = profile
		case "caption":
			scene.Caption = binding.Interpolate(val.Raw(), opts.Data)
		default:
			return nil, fmt.Errorf("未知的脚本属性 %q", key)
		}
	}

	for _, cmd := range doc.Commands("layer") {
		l, err := buildLayer(cmd, opts.Data)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行 layer: %w", cmd.Pos.Line, err)
		}
		scene.Layers = append(scene.Layers, l)
	}
	if len(scene.Layers) == 0 {
		scene.Layers = layer.DefaultLayers()
	}
	return scene, nil
}

// buildLayer 以 NewLayer 默认值为基础，依次覆盖位置参数与块内属性。
// 文字内容可写在参数中（layer "TOP"）或作为块内字符串字面量。
func buildLayer(cmd *dsl.Command, data any) (layer.TextLayer, error) {
	l := layer.NewLayer()
	if len(cmd.Args) > 0 {
		l.Content = cmd.Args[0].Raw()
	}
	if len(cmd.Args) > 1 {
		return l, fmt.Errorf("多余的参数 %q", cmd.Args[1].Raw())
	}
	if text, ok := cmd.Block.Text(); ok {
		l.Content = text
	}
	l.Content = binding.Interpolate(l.Content, data)

	for key, val := range cmd.Block.Assignments() {
		raw := val.Raw()
		switch strings.ToLower(key) {
		case "y", "top":
			n, ok := ParseNumber(raw)
			if !ok || (n.Unit != UnitNone && n.Unit != UnitPercent) {
				return l, fmt.Errorf("y 的取值 %q 无法解析（应为百分比）", raw)
			}
			l.Y = n.Value
		case "size", "font-size":
			n, ok := ParseNumber(raw)
			if !ok || n.Unit == UnitPercent || n.Px() < 1 {
				return l, fmt.Errorf("size 的取值 %q 无法解析", raw)
			}
			l.FontSize = int(n.Px() + 0.5)
		case "stroke-width", "outline":
			n, ok := ParseNumber(raw)
			if !ok || n.Unit == UnitPercent || n.Value < 0 {
				return l, fmt.Errorf("stroke-width 的取值 %q 无法解析", raw)
			}
			l.StrokeWidth = int(n.Px() + 0.5)
		case "color", "fill":
			c, err := layer.ParseColor(raw)
			if err != nil {
				return l, err
			}
			l.Color = c
		case "stroke":
			c, err := layer.ParseColor(raw)
			if err != nil {
				return l, err
			}
			l.Stroke = c
		case "text", "content":
			l.Content = binding.Interpolate(raw, data)
		default:
			return l, fmt.Errorf("未知的图层属性 %q", key)
		}
	}
	l.Y = layer.ClampY(l.Y)
	return l, nil
}

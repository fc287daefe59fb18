package layout

import (
	"strings"
	"testing"

	"github.com/ByLCY/memeforge/dsl"
	"github.com/ByLCY/memeforge/layer"
)

// buildScene 是测试辅助：用给定脚本文本构建场景。
func buildScene(t *testing.T, script string, data any) *Scene {
	t.Helper()
	doc, err := dsl.Parse(strings.NewReader(script))
	if err != nil {
		t.Fatalf("解析脚本失败: %v", err)
	}
	scene, err := Build(doc, BuildOptions{Data: data})
	if err != nil {
		t.Fatalf("构建场景失败: %v", err)
	}
	return scene
}

func TestBuildLayersInOrder(t *testing.T) {
	script := `meme Demo v1 {
  media: "${dir}/cat.png"
  profile: video
  layer "TOP ${who}" { y: 10; size: 60px; color: #ff0000; stroke-width: 0 }
  layer { "BOTTOM" y: 97% }
}`
	scene := buildScene(t, script, map[string]any{"dir": "assets", "who": "CAT"})
	if scene.Media != "assets/cat.png" || scene.Profile != "video" {
		t.Fatalf("scene header mismatch: %+v", scene)
	}
	if len(scene.Layers) != 2 {
		t.Fatalf("expected 2 layers, got %d", len(scene.Layers))
	}
	top := scene.Layers[0]
	if top.Content != "TOP CAT" || top.Y != 10 || top.FontSize != 60 || top.StrokeWidth != 0 {
		t.Fatalf("top layer mismatch: %+v", top)
	}
	if top.Color != layer.MustColor("#ff0000") || top.Stroke != layer.Black {
		t.Fatalf("top colours mismatch: %+v", top)
	}
	bottom := scene.Layers[1]
	if bottom.Content != "BOTTOM" {
		t.Fatalf("bottom content mismatch: %q", bottom.Content)
	}
	if bottom.Y != layer.MaxY {
		t.Fatalf("脚本中的位置也应被限制，实际 %g", bottom.Y)
	}
}

func TestBuildDefaultsWithoutLayers(t *testing.T) {
	scene := buildScene(t, `meme Empty v1 { caption: "a | b" }`, nil)
	if len(scene.Layers) != 2 || scene.Layers[0].Content != "TOP TEXT" {
		t.Fatalf("expected default layers, got %+v", scene.Layers)
	}
	if scene.Caption != "a | b" {
		t.Fatalf("caption mismatch: %q", scene.Caption)
	}
}

func TestBuildRejectsUnknownAttributes(t *testing.T) {
	cases := []string{
		`meme A v1 { layer "x" { wobble: 3 } }`,
		`meme A v1 { layer "x" { color: red } }`,
		`meme A v1 { layer "x" { size: 50% } }`,
		`meme A v1 { profile: gif }`,
		`meme A v1 { soundtrack: "x.mp3" }`,
	}
	for _, script := range cases {
		doc, err := dsl.ParseString(script)
		if err != nil {
			t.Fatalf("解析脚本失败 %q: %v", script, err)
		}
		if _, err := Build(doc, BuildOptions{}); err == nil {
			t.Fatalf("expected build error for %q", script)
		}
	}
}

func TestBuildNilDocument(t *testing.T) {
	if _, err := Build(nil, BuildOptions{}); err == nil {
		t.Fatalf("expected error for nil document")
	}
}

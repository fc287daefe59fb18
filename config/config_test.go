package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/memeforge/renderer"
)

func TestDefaultMatchesBuiltinProfiles(t *testing.T) {
	cfg := Default()
	img, err := cfg.Profile("image")
	if err != nil {
		t.Fatalf("image profile: %v", err)
	}
	if img != renderer.ImageProfile {
		t.Fatalf("default image profile mismatch: %+v", img)
	}
	vid, err := cfg.Profile("video")
	if err != nil {
		t.Fatalf("video profile: %v", err)
	}
	if vid != renderer.VideoProfile {
		t.Fatalf("default video profile mismatch: %+v", vid)
	}
	if _, err := cfg.Profile("gif"); err == nil {
		t.Fatalf("unknown profile should fail")
	}
}

func TestDecodeOverridesOnlyGivenKeys(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
[video]
max_width = 800.0
shadow_color = "#00000080"

[gif]
max_frames = 12
`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	vid, err := cfg.Profile("video")
	if err != nil {
		t.Fatalf("video profile: %v", err)
	}
	if vid.Cap.W != 800 || vid.Cap.H != 600 {
		t.Fatalf("cap override mismatch: %+v", vid.Cap)
	}
	if vid.Shadow.Color.A != 0x80 || vid.Shadow.Blur != 4 {
		t.Fatalf("shadow override mismatch: %+v", vid.Shadow)
	}
	if cfg.GIF.MaxFrames != 12 || !cfg.GIF.Loop {
		t.Fatalf("gif config mismatch: %+v", cfg.GIF)
	}
	if img, _ := cfg.Profile("image"); img != renderer.ImageProfile {
		t.Fatalf("未配置的 image 段应保持默认值: %+v", img)
	}
}

func TestDecodeRejectsUnknownAndInvalid(t *testing.T) {
	cases := []string{
		"[image]\nmax_widht = 10.0\n",
		"[audio]\nvolume = 3\n",
		"[image]\nshadow_color = \"black\"\n",
		"[video]\nmax_height = 0.0\n",
		"[gif]\nmax_frames = -1\n",
	}
	for _, input := range cases {
		if _, err := Decode(strings.NewReader(input)); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.GIF.MaxFrames != Default().GIF.MaxFrames {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg, err = Load(""); err != nil || cfg.Image.MaxWidth != 500 {
		t.Fatalf("empty path should return defaults: %+v %v", cfg, err)
	}
}

func TestLoadResolvesFontPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memeforge.toml")
	content := "[fonts]\nimpact = \"fonts/impact.ttf\"\narial = \"/abs/arial.ttf\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Fonts.Impact != filepath.Join(dir, "fonts/impact.ttf") {
		t.Fatalf("relative font path should resolve against config dir: %q", cfg.Fonts.Impact)
	}
	res := cfg.Fonts.Resources()
	if len(res) != 2 || res["Arial"].Path != "/abs/arial.ttf" {
		t.Fatalf("font resources mismatch: %+v", res)
	}
}

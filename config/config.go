// Package config 读取可选的 TOML 配置文件：合成参数、字体路径与 GIF 导出选项。
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ByLCY/memeforge/layer"
	"github.com/ByLCY/memeforge/layout"
	"github.com/ByLCY/memeforge/renderer"
	canvasrenderer "github.com/ByLCY/memeforge/renderer/canvas"
)

// Config 是配置文件的完整结构。未出现的键保持默认值。
type Config struct {
	Image ProfileConfig `toml:"image"`
	Video ProfileConfig `toml:"video"`
	Fonts FontConfig    `toml:"fonts"`
	GIF   GIFConfig     `toml:"gif"`
}

// ProfileConfig 覆盖 renderer.Profile 的各项参数。
type ProfileConfig struct {
	MaxWidth      float64 `toml:"max_width"`
	MaxHeight     float64 `toml:"max_height"`
	MinLineWidth  float64 `toml:"min_line_width"`
	ShadowColor   string  `toml:"shadow_color"`
	ShadowBlur    float64 `toml:"shadow_blur"`
	ShadowOffsetX float64 `toml:"shadow_offset_x"`
	ShadowOffsetY float64 `toml:"shadow_offset_y"`
}

// FontConfig 指定回退链中各字体的文件路径，相对路径以配置文件所在目录为准。
type FontConfig struct {
	Impact     string `toml:"impact"`
	ArialBlack string `toml:"arial_black"`
	Arial      string `toml:"arial"`
}

// GIFConfig 控制动图导出。
type GIFConfig struct {
	Loop      bool `toml:"loop"`
	MaxFrames int  `toml:"max_frames"` // 0 表示不限制
}

func fromProfile(p renderer.Profile) ProfileConfig {
	return ProfileConfig{
		MaxWidth:      p.Cap.W,
		MaxHeight:     p.Cap.H,
		MinLineWidth:  p.MinLineWidth,
		ShadowColor:   p.Shadow.Color.Hex(),
		ShadowBlur:    p.Shadow.Blur,
		ShadowOffsetX: p.Shadow.OffsetX,
		ShadowOffsetY: p.Shadow.OffsetY,
	}
}

// Default 返回与内置 ImageProfile / VideoProfile 一致的配置。
func Default() Config {
	return Config{
		Image: fromProfile(renderer.ImageProfile),
		Video: fromProfile(renderer.VideoProfile),
		GIF:   GIFConfig{Loop: true, MaxFrames: 300},
	}
}

// Load 读取配置文件。path 为空或文件不存在时返回默认配置；未知的键视为错误。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("打开配置文件 %s 失败: %w", path, err)
	}
	defer f.Close()

	cfg, err = Decode(f)
	if err != nil {
		return cfg, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	cfg.Fonts = cfg.Fonts.resolve(filepath.Dir(path))
	return cfg, nil
}

// Decode 在默认配置之上解码 TOML 内容。
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg); err != nil {
		return Default(), err
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate 检查数值与颜色是否合法。
func (c Config) Validate() error {
	for name, p := range map[string]ProfileConfig{"image": c.Image, "video": c.Video} {
		if _, err := p.Apply(renderer.Profile{}); err != nil {
			return fmt.Errorf("[%s]: %w", name, err)
		}
	}
	if c.GIF.MaxFrames < 0 {
		return fmt.Errorf("[gif] max_frames 不能为负数: %d", c.GIF.MaxFrames)
	}
	return nil
}

// Apply 以 base 为基础生成 Profile，保留 base 的名称。
func (p ProfileConfig) Apply(base renderer.Profile) (renderer.Profile, error) {
	if p.MaxWidth <= 0 || p.MaxHeight <= 0 {
		return base, fmt.Errorf("画布上限必须为正数: %gx%g", p.MaxWidth, p.MaxHeight)
	}
	if p.MinLineWidth < 0 || p.ShadowBlur < 0 {
		return base, fmt.Errorf("min_line_width 与 shadow_blur 不能为负数")
	}
	shadow := layer.Color{}
	if p.ShadowColor != "" {
		c, err := layer.ParseColor(p.ShadowColor)
		if err != nil {
			return base, err
		}
		shadow = c
	}
	base.Cap = layout.Size{W: p.MaxWidth, H: p.MaxHeight}
	base.MinLineWidth = p.MinLineWidth
	base.Shadow = renderer.Shadow{Color: shadow, Blur: p.ShadowBlur, OffsetX: p.ShadowOffsetX, OffsetY: p.ShadowOffsetY}
	return base, nil
}

// Profile 返回 "image" 或 "video" 的最终合成配置。
func (c Config) Profile(name string) (renderer.Profile, error) {
	base, ok := renderer.ProfileByName(name)
	if !ok {
		return renderer.Profile{}, fmt.Errorf("未知的 profile %q", name)
	}
	if name == renderer.VideoProfile.Name {
		return c.Video.Apply(base)
	}
	return c.Image.Apply(base)
}

func (f FontConfig) resolve(dir string) FontConfig {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	return FontConfig{Impact: abs(f.Impact), ArialBlack: abs(f.ArialBlack), Arial: abs(f.Arial)}
}

// Resources 转换为渲染器的字体资源表，键与 canvasrenderer.FontChain 对应。
func (f FontConfig) Resources() map[string]canvasrenderer.Resource {
	out := map[string]canvasrenderer.Resource{}
	for name, path := range map[string]string{"Impact": f.Impact, "Arial Black": f.ArialBlack, "Arial": f.Arial} {
		if path != "" {
			out[name] = canvasrenderer.Resource{Path: path}
		}
	}
	return out
}

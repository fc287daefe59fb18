package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/ByLCY/memeforge/caption"
	"github.com/ByLCY/memeforge/config"
	"github.com/ByLCY/memeforge/dsl"
	"github.com/ByLCY/memeforge/layer"
	"github.com/ByLCY/memeforge/layout"
	"github.com/ByLCY/memeforge/media"
	canvasrenderer "github.com/ByLCY/memeforge/renderer/canvas"
)

// options 汇总命令行参数。
type options struct {
	input   string
	output  string
	media   string
	caption string
	debug   string
	config  string
	frames  int
	data    any
}

func main() {
	input := flag.String("in", "", "脚本文件路径（.meme），为空时使用默认上下两行")
	output := flag.String("out", "output/meme.png", "输出路径，.gif 输出动图，其它输出 PNG")
	mediaPath := flag.String("media", "", "背景媒体路径，覆盖脚本中的 media")
	captionText := flag.String("caption", "", "文案，按 | - 换行拆成上下两行")
	debug := flag.String("debug", "", "图层几何调试 JSON 输出路径")
	configPath := flag.String("config", "memeforge.toml", "TOML 配置文件路径")
	watch := flag.Bool("watch", false, "脚本变化时自动重新渲染")
	frames := flag.Int("frames", 0, "动图最多导出的帧数，0 表示使用配置")
	dataJSON := flag.String("data", "", "绑定到脚本的 JSON 数据")
	flag.Parse()

	opts := options{
		input:   *input,
		output:  *output,
		media:   *mediaPath,
		caption: *captionText,
		debug:   *debug,
		config:  *configPath,
		frames:  *frames,
	}
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &opts.data); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	if err := run(opts); err != nil {
		log.Fatalf("生成失败: %v", err)
	}
	fmt.Printf("已生成：%s\n", opts.output)

	if *watch {
		if opts.input == "" {
			log.Fatalf("-watch 需要配合 -in 使用")
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := watchScript(ctx, opts); err != nil {
			log.Fatalf("监听脚本失败: %v", err)
		}
	}
}

// run 串联配置、脚本、媒体与合成，输出一次结果。
func run(opts options) error {
	cfg, err := config.Load(opts.config)
	if err != nil {
		return err
	}
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{Fonts: cfg.Fonts.Resources()})

	scene, err := loadScene(opts)
	if err != nil {
		return err
	}
	if scene.Media == "" {
		return fmt.Errorf("缺少背景媒体（使用 -media 或在脚本中设置 media）")
	}
	src, err := media.Open(scene.Media)
	if err != nil {
		return err
	}

	profileName := scene.Profile
	if profileName == "" {
		profileName = media.ProfileFor(src.Kind()).Name
	}
	profile, err := cfg.Profile(profileName)
	if err != nil {
		return err
	}

	store := layer.NewStore(scene.Layers...)
	for _, text := range []string{scene.Caption, opts.caption} {
		if text != "" {
			store.ApplyCaption(caption.Split(text))
		}
	}

	if err := os.MkdirAll(filepath.Dir(opts.output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	exp := exporter{compositor: r, store: store, profile: profile}
	if strings.EqualFold(filepath.Ext(opts.output), ".gif") {
		maxFrames := cfg.GIF.MaxFrames
		if opts.frames > 0 {
			maxFrames = opts.frames
		}
		err = exp.writeGIF(opts.output, src, maxFrames, cfg.GIF.Loop)
	} else {
		err = exp.writePNG(opts.output, src)
	}
	if err != nil {
		return err
	}

	if opts.debug != "" {
		if err := writeDebug(layout.TakeSnapshot(store.Layers(), exp.canvas, r), opts.debug); err != nil {
			return err
		}
	}
	return nil
}

// loadScene 解析脚本；未提供脚本时返回默认场景。媒体路径按脚本所在目录解析。
func loadScene(opts options) (*layout.Scene, error) {
	scene := &layout.Scene{Name: "default", Layers: layer.DefaultLayers()}
	if opts.input != "" {
		file, err := os.Open(opts.input)
		if err != nil {
			return nil, fmt.Errorf("无法打开脚本文件 %s: %w", opts.input, err)
		}
		defer file.Close()

		doc, err := dsl.Parse(file)
		if err != nil {
			return nil, fmt.Errorf("解析脚本失败: %w", err)
		}
		scene, err = layout.Build(doc, layout.BuildOptions{Data: opts.data})
		if err != nil {
			return nil, fmt.Errorf("构建场景失败: %w", err)
		}
		if scene.Media != "" && !filepath.IsAbs(scene.Media) {
			scene.Media = filepath.Join(filepath.Dir(opts.input), scene.Media)
		}
	}
	if opts.media != "" {
		scene.Media = opts.media
	}
	return scene, nil
}

func writeDebug(snap layout.Snapshot, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(snap, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

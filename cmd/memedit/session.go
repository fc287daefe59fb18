package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ByLCY/memeforge/caption"
	"github.com/ByLCY/memeforge/config"
	"github.com/ByLCY/memeforge/dsl"
	"github.com/ByLCY/memeforge/layer"
	"github.com/ByLCY/memeforge/layout"
	"github.com/ByLCY/memeforge/media"
	"github.com/ByLCY/memeforge/renderer"
)

// session 是编辑器启动时准备好的媒体、图层与合成配置。
type session struct {
	src       media.Source
	store     *layer.Store
	profile   renderer.Profile
	mediaPath string
}

// openSession 按命令行的处理方式应用脚本：-media 优先于脚本中的 media，
// 脚本的 profile 优先于按媒体类型选择的配置，caption 拆分后写入前两个图层。
func openSession(cfg config.Config, input, mediaPath string) (session, error) {
	scene := &layout.Scene{Layers: layer.DefaultLayers()}
	if input != "" {
		var err error
		scene, err = loadScene(input)
		if err != nil {
			return session{}, fmt.Errorf("加载脚本失败: %w", err)
		}
		if mediaPath == "" && scene.Media != "" {
			mediaPath = scene.Media
			if !filepath.IsAbs(mediaPath) {
				mediaPath = filepath.Join(filepath.Dir(input), mediaPath)
			}
		}
	}
	if mediaPath == "" {
		return session{}, fmt.Errorf("缺少 -media 参数")
	}
	src, err := media.Open(mediaPath)
	if err != nil {
		return session{}, fmt.Errorf("打开媒体失败: %w", err)
	}

	profileName := scene.Profile
	if profileName == "" {
		profileName = media.ProfileFor(src.Kind()).Name
	}
	profile, err := cfg.Profile(profileName)
	if err != nil {
		return session{}, fmt.Errorf("读取合成配置失败: %w", err)
	}

	store := layer.NewStore(scene.Layers...)
	if scene.Caption != "" {
		store.ApplyCaption(caption.Split(scene.Caption))
	}
	return session{src: src, store: store, profile: profile, mediaPath: mediaPath}, nil
}

func loadScene(path string) (*layout.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := dsl.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("解析脚本失败: %w", err)
	}
	return layout.Build(doc, layout.BuildOptions{})
}

package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchScript 监听脚本所在目录，脚本被写入或替换时重新渲染，直到 ctx 结束。
// 监听目录而不是文件本身：很多编辑器保存时会先写临时文件再改名。
func watchScript(ctx context.Context, opts options) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	target, err := filepath.Abs(opts.input)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("监听目录 %s 失败: %w", filepath.Dir(target), err)
	}
	log.Printf("正在监听 %s（Ctrl+C 退出）", opts.input)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, _ := filepath.Abs(event.Name)
			if name != target {
				continue
			}
			if event.Op&fsnotify.Write != fsnotify.Write && event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if err := run(opts); err != nil {
				log.Printf("重新渲染失败: %v", err)
				continue
			}
			log.Printf("已重新生成：%s", opts.output)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("监听出错: %v", err)
		}
	}
}

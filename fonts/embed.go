package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// SansSerif 是字体回退链末端使用的内置字体名。
const SansSerif = "gobold"

var builtin = map[string][]byte{
	"gobold":    gobold.TTF,
	"goregular": goregular.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:gobold" 或直接 "gobold"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "embed:")))
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 不存在", name)
	}
	return data, nil
}

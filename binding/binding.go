package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}|]+)(?:\|([^}]*))?\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 支持 ${path|默认值}：路径不存在时使用默认值；既无值也无默认值时保留原占位符。
func Interpolate(text string, data any) string {
	if !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		path := strings.TrimSpace(groups[1])
		fallback, hasFallback := groups[2], strings.Contains(match, "|")
		if path != "" && data != nil {
			if val, ok := Lookup(data, path); ok && val != nil {
				return fmt.Sprint(val)
			}
		}
		if hasFallback {
			return fallback
		}
		return match
	})
}

// Lookup 按 a.b[0].c 形式的路径取值。
func Lookup(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes, ok := splitSegment(segment)
		if !ok {
			return nil, false
		}
		if name != "" {
			if current, ok = field(current, name); !ok {
				return nil, false
			}
		}
		for _, idx := range indexes {
			if current, ok = element(current, idx); !ok {
				return nil, false
			}
		}
	}
	return current, true
}

// splitSegment 把 "items[1][2]" 拆成 "items" 与 [1 2]。
func splitSegment(segment string) (string, []int, bool) {
	open := strings.IndexByte(segment, '[')
	if open == -1 {
		return segment, nil, true
	}
	name, rest := segment[:open], segment[open:]
	var indexes []int
	for rest != "" {
		end := strings.IndexByte(rest, ']')
		if rest[0] != '[' || end == -1 {
			return "", nil, false
		}
		n, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, false
		}
		indexes = append(indexes, n)
		rest = rest[end+1:]
	}
	return name, indexes, true
}

func field(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func element(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}

package caption

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/ByLCY/memeforge/binding"
)

// ErrEmptyTopic 表示生成文案时缺少主题。
var ErrEmptyTopic = errors.New("caption: topic is required")

var separator = regexp.MustCompile(`\s*[|\-\n]\s*`)

// Split 将一条文案拆成上下两行。
// 含有 '|'、'-' 或换行时按分隔符切开并取前两段（去除首尾空白）；
// 否则原样返回单个元素，交给第一个图层。
func Split(s string) []string {
	parts := separator.Split(s, -1)
	if len(parts) >= 2 {
		return []string{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])}
	}
	return []string{s}
}

// Source 根据主题与风格生成候选文案，调用方把选中的一条交给 Split。
type Source interface {
	Captions(ctx context.Context, topic, vibe string) ([]string, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ctx context.Context, topic, vibe string) ([]string, error)

// Captions calls f.
func (f SourceFunc) Captions(ctx context.Context, topic, vibe string) ([]string, error) {
	return f(ctx, topic, vibe)
}

// DefaultVibe 在风格未知时使用。
const DefaultVibe = "funny"

// Vibes 列出 TemplateSource 支持的全部风格。
var Vibes = []string{"funny", "sarcastic", "relatable", "motivational", "parody", "savage", "wholesome", "cringe"}

var templates = map[string][]string{
	"funny": {
		"When ${topic} hits different",
		"Me trying to understand ${topic}",
		"${topic}: exists | My brain: it's free real estate",
		"Nobody: | Absolutely nobody: | Me with ${topic}:",
		`${topic} be like: "Am I a joke to you?"`,
	},
	"sarcastic": {
		"Oh great, another ${topic} situation",
		"${topic}? How original...",
		"Wow, ${topic} is exactly what I needed today",
		"Let me guess... ${topic} again?",
		"${topic}: Because life wasn't complicated enough",
	},
	"relatable": {
		"When you realize ${topic} is your life",
		"Me every time ${topic} happens",
		"${topic}: The story of my life",
		"Why is ${topic} so accurate?",
		"${topic} hits too close to home",
	},
	"motivational": {
		"${topic} can't stop your greatness",
		"Turn your ${topic} into your superpower",
		"${topic} is just a stepping stone",
		"You're stronger than any ${topic}",
		"${topic} today, success tomorrow",
	},
	"parody": {
		"${topic}: Infinity War | Me: Endgame",
		"${topic} walking into 2025 like...",
		"Plot twist: ${topic} was the main character",
		"${topic}: The sequel nobody asked for",
		"When ${topic} becomes a Netflix series",
	},
	"savage": {
		"${topic} said what now?",
		"${topic} really thought they did something",
		"Imagine thinking ${topic} was a good idea",
		"${topic} woke up and chose violence",
		"${topic}: The audacity is unmatched",
	},
	"wholesome": {
		"${topic} makes everything better",
		"Grateful for ${topic} in my life",
		"${topic}: A blessing in disguise",
		"${topic} brings out the best in people",
		"Life is beautiful because of ${topic}",
	},
	"cringe": {
		"${topic} is so random XD",
		"OMG ${topic} is literally me!!!",
		"${topic} hits different when you're built different",
		"${topic} is giving main character energy",
		"Not me relating to ${topic} on a spiritual level",
	},
}

// TemplateSource 是离线文案源：每种风格五条模板，${topic} 替换为主题。
type TemplateSource struct{}

var _ Source = TemplateSource{}

// Captions 实现 Source。未知风格按 funny 处理。
func (TemplateSource) Captions(ctx context.Context, topic, vibe string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	list, ok := templates[strings.ToLower(strings.TrimSpace(vibe))]
	if !ok {
		list = templates[DefaultVibe]
	}
	data := map[string]string{"topic": topic}
	out := make([]string, len(list))
	for i, tpl := range list {
		out[i] = binding.Interpolate(tpl, data)
	}
	return out, nil
}

// Package media 打开静态图片与动图，作为合成器的背景帧来源。
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/memeforge/layout"
	"github.com/ByLCY/memeforge/renderer"
)

// ErrUnsupported 表示文件类型无法作为背景使用。
var ErrUnsupported = errors.New("media: unsupported file type")

// Kind 区分静态图片与逐帧播放的媒体。
type Kind int

const (
	KindImage Kind = iota
	KindAnimation
)

func (k Kind) String() string {
	if k == KindAnimation {
		return "animation"
	}
	return "image"
}

// Source 是打开后的媒体：按帧提供背景，并报告原始尺寸。
type Source interface {
	Frame() (image.Image, bool)
	NativeSize() layout.Size
	Kind() Kind
}

// ProfileFor 返回媒体类型对应的合成配置：动图按视频处理。
func ProfileFor(kind Kind) renderer.Profile {
	if kind == KindAnimation {
		return renderer.VideoProfile
	}
	return renderer.ImageProfile
}

// Open 读取文件并按内容（而非扩展名）识别类型。
func Open(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取媒体文件 %s 失败: %w", path, err)
	}
	src, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("打开媒体 %s 失败: %w", path, err)
	}
	return src, nil
}

// Decode 识别并解码内存中的媒体数据。多帧 GIF 返回 *GIF，其余图片返回 *Still。
func Decode(data []byte) (Source, error) {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return nil, ErrUnsupported
	}
	if kind.MIME.Type != "image" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, kind.MIME.Value)
	}

	if kind.Extension == "gif" {
		all, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("解码 GIF 失败: %w", err)
		}
		if len(all.Image) > 1 {
			return NewGIF(all), nil
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, kind.MIME.Value)
		}
		return nil, fmt.Errorf("解码图片失败: %w", err)
	}
	return NewStill(img), nil
}

// Still 是静态图片，每次 Frame 都返回同一张图。
type Still struct {
	img image.Image
}

// NewStill wraps a decoded image.
func NewStill(img image.Image) *Still { return &Still{img: img} }

func (s *Still) Frame() (image.Image, bool) { return s.img, s.img != nil }
func (s *Still) Kind() Kind                 { return KindImage }

// NativeSize returns the decoded image size.
func (s *Still) NativeSize() layout.Size {
	if s.img == nil {
		return layout.Size{}
	}
	b := s.img.Bounds()
	return layout.Size{W: float64(b.Dx()), H: float64(b.Dy())}
}

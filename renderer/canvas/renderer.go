package canvasrenderer

import (
	"fmt"
	"image"
	"math"
	"os"
	"sync"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/transform"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/image/draw"

	"github.com/ByLCY/memeforge/fonts"
	"github.com/ByLCY/memeforge/layer"
	"github.com/ByLCY/memeforge/layout"
	"github.com/ByLCY/memeforge/renderer"
)

// FontChain 是字体回退顺序；都不可用时使用内置的 Go Bold（sans-serif）。
var FontChain = []string{"Impact", "Arial Black", "Arial"}

// Renderer composites text layers via github.com/tdewolff/canvas.
// The raster runs at one pixel per millimetre, so canvas lengths are pixel lengths.
type Renderer struct {
	fontBlobs map[string][]byte // by chain name

	fontMu     sync.Mutex
	family     *canvas.FontFamily
	familyName string
}

var (
	_ renderer.Compositor = (*Renderer)(nil)
	_ layout.Measurer     = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	Fonts map[string]Resource // keyed by FontChain name, e.g. "Impact"
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a renderer that only uses the embedded fallback face.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with injected font resources.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{fontBlobs: map[string][]byte{}}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // 读取失败时按缺失处理，回退到链上的下一个字体
			if len(data) > 0 {
				r.fontBlobs[name] = data
			}
		}
	}
	return r
}

// FontName 返回实际生效的字体名（FontChain 中的一项或内置字体名）。
func (r *Renderer) FontName() string {
	if _, err := r.ensureFontFamily(); err != nil {
		return ""
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	return r.familyName
}

// TextWidth 实现 layout.Measurer：fontSize 为像素，返回像素宽度。
// 渲染器内部与字体系统交互使用 pt，在边界做 px↔pt 换算。
func (r *Renderer) TextWidth(content string, fontSize float64) float64 {
	face, err := r.fontFace(fontSize)
	if err != nil {
		return 0
	}
	return face.TextWidth(content)
}

// Render 实现 renderer.Compositor。
func (r *Renderer) Render(surface *renderer.Surface, background image.Image, layers []layer.TextLayer, profile renderer.Profile) error {
	if surface == nil {
		return fmt.Errorf("surface 不能为空")
	}

	size := surface.Size()
	if background != nil {
		b := background.Bounds()
		size = layout.FitSize(layout.Size{W: float64(b.Dx()), H: float64(b.Dy())}, profile.Cap)
	} else if size.Empty() {
		size = profile.Cap
	}
	if size.Empty() {
		return fmt.Errorf("画布尺寸无效: %gx%g", size.W, size.H)
	}

	w, h := layout.PixelSize(size)
	surface.Resize(w, h)
	surface.Clear()
	dst := surface.Image()
	if background != nil {
		r.drawBackground(dst, background)
	}

	canvasSize := layout.Size{W: float64(w), H: float64(h)}
	for _, l := range layers {
		if !l.Visible() {
			continue
		}
		if err := r.drawLayer(dst, l, canvasSize, profile); err != nil {
			return fmt.Errorf("绘制图层 %q 失败: %w", l.Content, err)
		}
	}
	return nil
}

func (r *Renderer) drawBackground(dst *image.RGBA, background image.Image) {
	b := background.Bounds()
	if b.Dx() == dst.Rect.Dx() && b.Dy() == dst.Rect.Dy() {
		draw.Draw(dst, dst.Rect, background, b.Min, draw.Src)
		return
	}
	scaled := transform.Resize(background, dst.Rect.Dx(), dst.Rect.Dy(), transform.Linear)
	draw.Draw(dst, dst.Rect, scaled, image.Point{}, draw.Src)
}

// drawLayer 依次合成描边、投影（仅填充文字投射）与填充。
// 所有蒙版只覆盖图层自身的外接矩形（含描边、模糊余量），每个图层各自生成投影，不影响后续图层。
func (r *Renderer) drawLayer(dst *image.RGBA, l layer.TextLayer, size layout.Size, profile renderer.Profile) error {
	fs := layout.ScaledFontSize(l.FontSize, size.W)
	g, err := r.glyphRun(l.Content, fs, layout.Anchor(l, size))
	if err != nil {
		return err
	}

	var lineWidth float64
	if l.StrokeWidth > 0 {
		lineWidth = layout.StrokeLineWidth(l.StrokeWidth, size.W, profile.MinLineWidth)
	}
	sh := profile.Shadow
	pad := lineWidth/2 + math.Max(sh.Blur, 0) + 2
	area := g.area(pad)
	if !area.Overlaps(dst.Rect) {
		return nil
	}

	if lineWidth > 0 && l.Stroke.A > 0 {
		outline := tint(g.mask(area, lineWidth), l.Stroke)
		draw.Draw(dst, area, outline, image.Point{}, draw.Over)
	}

	mask := g.mask(area, 0)
	// 投影强度随填充色的透明度变化，透明文字不投射投影
	if shadowColor := withAlpha(sh.Color, l.Color.A); shadowColor.A > 0 {
		var shadow image.Image = tint(mask, shadowColor)
		if sh.Blur > 0 {
			shadow = blur.Gaussian(shadow, sh.Blur)
		}
		offset := image.Pt(int(math.Round(sh.OffsetX)), int(math.Round(sh.OffsetY)))
		draw.Draw(dst, area.Add(offset), shadow, shadow.Bounds().Min, draw.Over)
	}

	if l.Color.A > 0 {
		draw.Draw(dst, area, tint(mask, l.Color), image.Point{}, draw.Over)
	}
	return nil
}

// glyphRun 是排好位置的单行文字轮廓。path 使用字形坐标（y 向上，原点在起笔基线），
// 画布坐标中的起笔点为 (originX, baseline)。
type glyphRun struct {
	path     *canvas.Path
	originX  float64
	baseline float64
}

// glyphRun 以锚点为中心排布文字：水平居中，垂直方向以锚点为中线（等同 textBaseline = middle）。
func (r *Renderer) glyphRun(content string, fontSize float64, anchor layout.Point) (glyphRun, error) {
	face, err := r.fontFace(fontSize)
	if err != nil {
		return glyphRun{}, err
	}
	path, advance, err := face.ToPath(content)
	if err != nil {
		return glyphRun{}, fmt.Errorf("生成字形轮廓失败: %w", err)
	}
	metrics := face.Metrics()
	return glyphRun{
		path:     path,
		originX:  anchor.X - advance/2,
		baseline: anchor.Y + (metrics.Ascent-metrics.Descent)/2,
	}, nil
}

// area 返回轮廓外扩 pad 后覆盖的像素矩形（画布坐标，y 向下）。
func (g glyphRun) area(pad float64) image.Rectangle {
	b := g.path.Bounds()
	return image.Rect(
		int(math.Floor(g.originX+b.X0-pad)),
		int(math.Floor(g.baseline-b.Y1-pad)),
		int(math.Ceil(g.originX+b.X1+pad)),
		int(math.Ceil(g.baseline-b.Y0+pad)),
	)
}

// mask 在 area 大小的透明图上栅格化文字，返回覆盖率蒙版，(0,0) 对应 area.Min。
// lineWidth 为 0 时填充字形；否则以圆角连接与圆头端点描边字形轮廓，线宽居中于轮廓。
func (g glyphRun) mask(area image.Rectangle, lineWidth float64) *image.RGBA {
	w, h := float64(area.Dx()), float64(area.Dy())
	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	if lineWidth > 0 {
		ctx.SetFillColor(canvas.Transparent)
		ctx.SetStrokeColor(canvas.Black)
		ctx.SetStrokeWidth(lineWidth)
		ctx.SetStrokeJoiner(canvas.RoundJoin)
		ctx.SetStrokeCapper(canvas.RoundCap)
	} else {
		ctx.SetFillColor(canvas.Black)
		ctx.SetStrokeColor(canvas.Transparent)
	}
	// canvas 默认坐标系 y 向上、原点在左下角，与字形坐标方向一致
	ctx.DrawPath(g.originX-float64(area.Min.X), float64(area.Max.Y)-g.baseline, g.path)
	return rasterizer.Draw(c, canvas.DPMM(1), canvas.DefaultColorSpace)
}

func withAlpha(c layer.Color, a uint8) layer.Color {
	c.A = uint8(uint32(c.A) * uint32(a) / 255)
	return c
}

// tint 用蒙版的 alpha 生成指定颜色的预乘 RGBA 图像。
func tint(mask *image.RGBA, c layer.Color) *image.RGBA {
	out := image.NewRGBA(mask.Rect)
	for i := 3; i < len(mask.Pix); i += 4 {
		a := uint32(mask.Pix[i]) * uint32(c.A) / 255
		if a == 0 {
			continue
		}
		out.Pix[i-3] = uint8(uint32(c.R) * a / 255)
		out.Pix[i-2] = uint8(uint32(c.G) * a / 255)
		out.Pix[i-1] = uint8(uint32(c.B) * a / 255)
		out.Pix[i] = uint8(a)
	}
	return out
}

func (r *Renderer) fontFace(fontSize float64) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily()
	if err != nil {
		return nil, err
	}
	return family.Face(toPt(fontSize), canvas.Black, canvas.FontBold, canvas.FontNormal), nil
}

// ensureFontFamily 按 FontChain 顺序加载第一个可用字体，结果缓存在渲染器上。
func (r *Renderer) ensureFontFamily() (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if r.family != nil {
		return r.family, nil
	}
	for _, name := range FontChain {
		data, ok := r.fontBlobs[name]
		if !ok {
			continue
		}
		family := canvas.NewFontFamily(name)
		if err := family.LoadFont(data, 0, canvas.FontBold); err != nil {
			continue
		}
		r.family, r.familyName = family, name
		return family, nil
	}
	return r.fallback()
}

func (r *Renderer) fallback() (*canvas.FontFamily, error) {
	data, err := fonts.Load(fonts.SansSerif)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("memeforge-fallback")
	if err := family.LoadFont(data, 0, canvas.FontBold); err != nil {
		return nil, fmt.Errorf("加载内置字体失败: %w", err)
	}
	r.family, r.familyName = family, fonts.SansSerif
	return family, nil
}

// toPt 将像素（=毫米）转换为点(pt)。
func toPt(px float64) float64 { return layout.PxToPt(px) }

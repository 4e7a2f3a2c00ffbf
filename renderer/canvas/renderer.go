package canvasrenderer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/npillmayer/schuko/tracing"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/image/font/sfnt"

	"github.com/ByLCY/fontthumb/raster"
	"github.com/ByLCY/fontthumb/renderer"
)

const (
	// ReferenceSize is the font size, in pixels, text is drawn at before
	// it is cropped and scaled.
	ReferenceSize = 150.0

	lineHeightFactor = 1.5
	canvasPadding    = 100
	minCanvasWidth   = 10
	textOffsetX      = 50.0
)

var (
	ErrUnknownFamily = errors.New("字体族未注册")
	ErrInvalidFont   = errors.New("无法加载字体")
)

// tracer writes to trace with key 'fontthumb.render'
func tracer() tracing.Trace {
	return tracing.Select("fontthumb.render")
}

// Renderer draws text thumbnails via github.com/tdewolff/canvas.
type Renderer struct {
	fill color.Color

	fontMu       sync.Mutex
	fontFamilies map[string]*fontFamilyEntry

	// 字体对象在绘制和栅格化阶段共享，串行执行；裁切与缩放可并行
	drawMu sync.Mutex
}

var _ renderer.Rasterizer = (*Renderer)(nil)

type fontFamilyEntry struct {
	family   *canvas.FontFamily
	fullName string
}

// Options configures the canvas renderer.
type Options struct {
	Color color.Color // text fill, white if nil
}

// NewRenderer creates a renderer drawing white text.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with the given options.
func NewRendererWithOptions(opts Options) *Renderer {
	fill := opts.Color
	if fill == nil {
		fill = canvas.White
	}
	return &Renderer{
		fill:         fill,
		fontFamilies: map[string]*fontFamilyEntry{},
	}
}

// RegisterFamily loads a font binary as family id, replacing any family
// registered under the same id.
func (r *Renderer) RegisterFamily(id string, data []byte) error {
	if id == "" {
		return fmt.Errorf("%w: 字体族名称为空", ErrInvalidFont)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: 字体 %s 内容为空", ErrInvalidFont, id)
	}
	family := canvas.NewFontFamily(id)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return fmt.Errorf("%w: 字体 %s: %v", ErrInvalidFont, id, err)
	}
	entry := &fontFamilyEntry{family: family, fullName: fullName(data)}

	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	r.fontFamilies[id] = entry
	tracer().Debugf("registered font family %s (%s)", id, entry.fullName)
	return nil
}

// HasFamily reports whether id is registered.
func (r *Renderer) HasFamily(id string) bool {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	_, ok := r.fontFamilies[id]
	return ok
}

// Reset drops all registered families.
func (r *Renderer) Reset() {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	r.fontFamilies = map[string]*fontFamilyEntry{}
}

// Render draws text in family id and returns it tightly cropped and scaled
// to raster.TargetHeight. Empty text yields the blank raster.
func (r *Renderer) Render(id, text string) (*raster.Raster, error) {
	r.fontMu.Lock()
	entry, ok := r.fontFamilies[id]
	r.fontMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFamily, id)
	}
	img := r.draw(entry.family, text)
	return raster.Frame(img), nil
}

// draw 在足够大的透明画布上绘制文本，保证上伸部、下伸部与侧边距不被裁掉。
func (r *Renderer) draw(family *canvas.FontFamily, text string) *image.RGBA {
	r.drawMu.Lock()
	defer r.drawMu.Unlock()

	face := family.Face(toPt(ReferenceSize), r.fill, canvas.FontRegular, canvas.FontNormal)
	measured := text
	if measured == "" {
		measured = " "
	}
	width := face.TextWidth(measured)
	w := max(int(math.Ceil(width))+canvasPadding, minCanvasWidth)
	h := int(math.Ceil(ReferenceSize*lineHeightFactor)) + canvasPadding

	c := canvas.New(float64(w), float64(h))
	if text != "" {
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV)
		// 基线下移半个 (ascent - descent)，使字面框垂直居中于画布中线
		metrics := face.Metrics()
		baseline := float64(h)/2 + (metrics.Ascent-math.Abs(metrics.Descent))/2
		ctx.DrawText(textOffsetX, baseline, canvas.NewTextLine(face, text, canvas.Left))
	}
	return rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)
}

// fullName 读取字体全名，仅用于日志。
func fullName(data []byte) string {
	f, err := sfnt.Parse(data)
	if err != nil {
		tracer().Debugf("sfnt cannot parse font name: %v", err)
		return "unknown"
	}
	name, err := f.Name(nil, sfnt.NameIDFull)
	if err != nil || name == "" {
		return "unknown"
	}
	return name
}

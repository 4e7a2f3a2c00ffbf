package batch

import (
	"errors"
	"fmt"
	"math"

	"github.com/ByLCY/fontthumb/binding"
	"github.com/ByLCY/fontthumb/fonts"
	"github.com/ByLCY/fontthumb/mapping"
	"github.com/ByLCY/fontthumb/raster"
	"github.com/ByLCY/fontthumb/renderer"
)

// DefaultFallbackTemplate renders the family stem when an asset has no
// mapping entry.
const DefaultFallbackTemplate = "${family}"

// ErrUnknownAsset is returned when an edit names a file not in the batch.
var ErrUnknownAsset = errors.New("批次中没有该字体")

// Progress reports how many assets of a run have been processed.
type Progress struct {
	Processed int
	Total     int
	Label     string
}

// Percent returns the rounded completion percentage.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return int(math.Round(float64(p.Processed) * 100 / float64(p.Total)))
}

// Result is the render outcome of one asset. Exactly one of Image and Err
// is set.
type Result struct {
	Asset fonts.Asset
	Text  string
	Image *raster.Raster
	Err   error
}

func (r Result) Failed() bool { return r.Err != nil }

// Options configures a Batch.
type Options struct {
	// FallbackTemplate is interpolated with ${family} and ${filename} for
	// assets without a mapping entry.
	FallbackTemplate string
}

// Batch owns the render state of one set of assets.
type Batch struct {
	rasterizer renderer.Rasterizer
	fallback   string

	items    []*item
	owners   map[string]*item // family id → item whose binary is registered
	progress Progress
}

type item struct {
	asset      fonts.Asset
	text       string
	image      *raster.Raster
	err        error
	registered bool
}

// New creates an empty batch rendering through r.
func New(r renderer.Rasterizer, opts Options) *Batch {
	fallback := opts.FallbackTemplate
	if fallback == "" {
		fallback = DefaultFallbackTemplate
	}
	return &Batch{rasterizer: r, fallback: fallback}
}

// InitialText returns the mapped text of asset, or the interpolated
// fallback template if the table has no non-empty entry for its filename.
func (b *Batch) InitialText(asset fonts.Asset, table *mapping.Table) string {
	if text, ok := table.Get(asset.Filename); ok && text != "" {
		return text
	}
	return binding.Interpolate(b.fallback, map[string]string{
		"family":   asset.Family,
		"filename": asset.Filename,
	})
}

// Run replaces the batch with assets and renders them sequentially. report,
// if non-nil, is called once before the first asset and after every asset.
// The returned slice always has one entry per asset.
func (b *Batch) Run(assets []fonts.Asset, table *mapping.Table, report func(Progress)) []Result {
	b.rasterizer.Reset()
	b.items = make([]*item, 0, len(assets))
	b.owners = make(map[string]*item, len(assets))
	b.progress = Progress{Total: len(assets)}
	b.progress.Label = b.nextLabel(assets)
	if report != nil {
		report(b.progress)
	}
	tracer().Infof("batch starts with %d fonts", len(assets))

	for _, asset := range assets {
		it := &item{asset: asset, text: b.InitialText(asset, table)}
		b.items = append(b.items, it)
		b.process(it)

		b.progress.Processed++
		b.progress.Label = b.nextLabel(assets)
		if report != nil {
			report(b.progress)
		}
	}
	tracer().Infof("batch done, %d of %d fonts failed", b.failures(), len(assets))
	return b.Results()
}

func (b *Batch) process(it *item) {
	if err := b.rasterizer.RegisterFamily(it.asset.Family, it.asset.Binary); err != nil {
		it.err = fmt.Errorf("注册字体 %s 失败: %w", it.asset.Filename, err)
		tracer().Errorf("failed to process %s: %v", it.asset.Filename, err)
		return
	}
	if prev, ok := b.owners[it.asset.Family]; ok {
		tracer().Infof("font family %s of %s replaces %s", it.asset.Family,
			it.asset.Filename, prev.asset.Filename)
	}
	it.registered = true
	b.owners[it.asset.Family] = it
	b.render(it)
}

// claim makes sure the family of it is backed by its own binary again. Two
// assets with the same stem share a family id, so the later one replaces
// the earlier registration.
func (b *Batch) claim(it *item) error {
	if b.owners[it.asset.Family] == it && b.rasterizer.HasFamily(it.asset.Family) {
		return nil
	}
	if err := b.rasterizer.RegisterFamily(it.asset.Family, it.asset.Binary); err != nil {
		return fmt.Errorf("注册字体 %s 失败: %w", it.asset.Filename, err)
	}
	b.owners[it.asset.Family] = it
	tracer().Debugf("re-registered font family %s from %s", it.asset.Family, it.asset.Filename)
	return nil
}

// rerender renders a registered item again with its current text.
func (b *Batch) rerender(it *item) {
	if err := b.claim(it); err != nil {
		it.image, it.err = nil, err
		tracer().Errorf("failed to render %s: %v", it.asset.Filename, err)
		return
	}
	b.render(it)
}

func (b *Batch) render(it *item) {
	img, err := b.rasterizer.Render(it.asset.Family, it.text)
	if err != nil {
		it.image = nil
		it.err = fmt.Errorf("渲染字体 %s 失败: %w", it.asset.Filename, err)
		tracer().Errorf("failed to render %s: %v", it.asset.Filename, err)
		return
	}
	it.image, it.err = img, nil
}

func (b *Batch) nextLabel(assets []fonts.Asset) string {
	if b.progress.Processed >= b.progress.Total {
		return "Done!"
	}
	return fmt.Sprintf("Processing %s...", assets[b.progress.Processed].Filename)
}

// Edit sets the current text of filename and re-renders only that asset.
// Progress is not affected. An asset whose font failed to register keeps
// its failure; Edit only records the text and returns the stored error.
func (b *Batch) Edit(filename, text string) (*raster.Raster, error) {
	it := b.lookup(filename)
	if it == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, filename)
	}
	it.text = text
	if !it.registered {
		return nil, it.err
	}
	b.rerender(it)
	tracer().Debugf("re-rendered %s after edit", filename)
	return it.image, it.err
}

// ApplyMapping re-renders every registered asset that has a non-empty entry
// in table, using that entry as its text. It returns the number of assets
// re-rendered.
func (b *Batch) ApplyMapping(table *mapping.Table) int {
	n := 0
	for _, it := range b.items {
		if !it.registered {
			continue
		}
		text, ok := table.Get(it.asset.Filename)
		if !ok || text == "" {
			continue
		}
		it.text = text
		b.rerender(it)
		n++
	}
	tracer().Infof("mapping update re-rendered %d fonts", n)
	return n
}

func (b *Batch) lookup(filename string) *item {
	for _, it := range b.items {
		if it.asset.Filename == filename {
			return it
		}
	}
	return nil
}

func (b *Batch) failures() int {
	n := 0
	for _, it := range b.items {
		if it.err != nil {
			n++
		}
	}
	return n
}

// Results returns the current state of every asset in input order.
func (b *Batch) Results() []Result {
	out := make([]Result, len(b.items))
	for i, it := range b.items {
		out[i] = Result{Asset: it.asset, Text: it.text, Image: it.image, Err: it.err}
	}
	return out
}

// CurrentTexts maps every filename to its current (possibly edited) text.
func (b *Batch) CurrentTexts() map[string]string {
	out := make(map[string]string, len(b.items))
	for _, it := range b.items {
		out[it.asset.Filename] = it.text
	}
	return out
}

// RenderedAssets returns the assets whose family was registered, in order.
func (b *Batch) RenderedAssets() []fonts.Asset {
	out := make([]fonts.Asset, 0, len(b.items))
	for _, it := range b.items {
		if it.registered {
			out = append(out, it.asset)
		}
	}
	return out
}

func (b *Batch) Progress() Progress { return b.progress }

// Ready reports whether the last run has processed every asset.
func (b *Batch) Ready() bool {
	return b.items != nil && b.progress.Processed == b.progress.Total
}

// Package export re-renders font assets with their current text and packs
// the thumbnails into a zip archive.
package export

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/npillmayer/schuko/tracing"

	"github.com/ByLCY/fontthumb/fonts"
	"github.com/ByLCY/fontthumb/renderer"
)

// ArchiveName is the suggested download name of an export.
const ArchiveName = "font_thumbnails.zip"

// ErrExport wraps the first failure that aborted an export.
var ErrExport = errors.New("导出失败")

// tracer writes to trace with key 'fontthumb.export'
func tracer() tracing.Trace {
	return tracing.Select("fontthumb.export")
}

// EntryName returns the archive entry name for a font file.
func EntryName(filename string) string {
	return filename + ".png"
}

// Packager renders every asset afresh and writes one PNG entry per asset.
type Packager struct {
	rasterizer renderer.Rasterizer
}

func NewPackager(r renderer.Rasterizer) *Packager {
	return &Packager{rasterizer: r}
}

type rendered struct {
	png []byte
	err error
}

// Export renders all assets concurrently with currentText[filename] (the
// family stem if absent) and returns the zip archive. Cached rasters are
// never reused. Any failure aborts the export without producing an archive.
func (p *Packager) Export(assets []fonts.Asset, currentText map[string]string) ([]byte, error) {
	out := make([]rendered, len(assets))
	var wg sync.WaitGroup
	for i, asset := range assets {
		text, ok := currentText[asset.Filename]
		if !ok {
			text = asset.Family
		}
		wg.Add(1)
		go func(i int, asset fonts.Asset, text string) {
			defer wg.Done()
			img, err := p.rasterizer.Render(asset.Family, text)
			if err != nil {
				out[i].err = err
				return
			}
			out[i].png, out[i].err = img.PNG()
		}(i, asset, text)
	}
	wg.Wait()

	for i, r := range out {
		if r.err != nil {
			tracer().Errorf("export of %s failed: %v", assets[i].Filename, r.err)
			return nil, fmt.Errorf("%w: %s: %w", ErrExport, assets[i].Filename, r.err)
		}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, r := range out {
		w, err := zw.Create(EntryName(assets[i].Filename))
		if err != nil {
			return nil, fmt.Errorf("%w: 创建条目 %s: %w", ErrExport, assets[i].Filename, err)
		}
		if _, err := w.Write(r.png); err != nil {
			return nil, fmt.Errorf("%w: 写入条目 %s: %w", ErrExport, assets[i].Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExport, err)
	}
	tracer().Infof("exported %d thumbnails", len(assets))
	return buf.Bytes(), nil
}

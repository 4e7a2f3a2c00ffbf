package export

import (
	"archive/zip"
	"bytes"
	"errors"
	"image/png"
	"io"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/ByLCY/fontthumb/batch"
	"github.com/ByLCY/fontthumb/fonts"
	"github.com/ByLCY/fontthumb/raster"
	canvasrenderer "github.com/ByLCY/fontthumb/renderer/canvas"
)

func readEntries(t *testing.T, archive []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	entries := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		entries[f.Name] = data
	}
	return entries
}

func TestExportReflectsEdits(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontthumb.export")
	defer teardown()
	//
	r := canvasrenderer.NewRenderer()
	in := []fonts.Asset{
		fonts.NewAsset("A.ttf", goregular.TTF),
		fonts.NewAsset("Mono.ttf", gomono.TTF),
	}
	b := batch.New(r, batch.Options{})
	b.Run(in, nil, nil)
	_, err := b.Edit("A.ttf", "Y")
	require.NoError(t, err)

	archive, err := NewPackager(r).Export(b.RenderedAssets(), b.CurrentTexts())
	require.NoError(t, err)
	entries := readEntries(t, archive)
	require.Len(t, entries, 2)

	wantY, err := r.Render("A", "Y")
	require.NoError(t, err)
	wantPNG, err := wantY.PNG()
	require.NoError(t, err)
	assert.Equal(t, wantPNG, entries["A.ttf.png"])

	img, err := png.Decode(bytes.NewReader(entries["Mono.ttf.png"]))
	require.NoError(t, err)
	assert.Equal(t, raster.TargetHeight, img.Bounds().Dy())
}

func TestExportUsesFamilyWhenTextMissing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontthumb.export")
	defer teardown()
	//
	r := canvasrenderer.NewRenderer()
	require.NoError(t, r.RegisterFamily("Stem", goregular.TTF))
	archive, err := NewPackager(r).Export([]fonts.Asset{fonts.NewAsset("Stem.ttf", goregular.TTF)}, nil)
	require.NoError(t, err)

	want, err := r.Render("Stem", "Stem")
	require.NoError(t, err)
	wantPNG, err := want.PNG()
	require.NoError(t, err)
	assert.Equal(t, wantPNG, readEntries(t, archive)[EntryName("Stem.ttf")])
}

func TestExportFailsAsWhole(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontthumb.export")
	defer teardown()
	//
	r := canvasrenderer.NewRenderer()
	require.NoError(t, r.RegisterFamily("Good", goregular.TTF))
	in := []fonts.Asset{
		fonts.NewAsset("Good.ttf", goregular.TTF),
		fonts.NewAsset("Never.ttf", goregular.TTF), // 从未注册
	}
	archive, err := NewPackager(r).Export(in, map[string]string{"Good.ttf": "ok"})
	assert.Nil(t, archive)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExport))
	assert.True(t, errors.Is(err, canvasrenderer.ErrUnknownFamily))
	assert.Contains(t, err.Error(), "Never.ttf")
}

func TestExportEmpty(t *testing.T) {
	archive, err := NewPackager(canvasrenderer.NewRenderer()).Export(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, readEntries(t, archive))
}

func TestEntryName(t *testing.T) {
	assert.Equal(t, "Inter.ttf.png", EntryName("Inter.ttf"))
	assert.Equal(t, "font_thumbnails.zip", ArchiveName)
}

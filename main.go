package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/pterm/pterm"

	"github.com/ByLCY/fontthumb/batch"
	"github.com/ByLCY/fontthumb/export"
	"github.com/ByLCY/fontthumb/fonts"
	"github.com/ByLCY/fontthumb/mapping"
	"github.com/ByLCY/fontthumb/ocr"
	"github.com/ByLCY/fontthumb/ocr/tesseract"
	"github.com/ByLCY/fontthumb/renderer"
	canvasrenderer "github.com/ByLCY/fontthumb/renderer/canvas"
)

var traceKeys = []string{
	"fontthumb.mapping",
	"fontthumb.ocr",
	"fontthumb.render",
	"fontthumb.batch",
	"fontthumb.export",
}

type config struct {
	fontDir     string
	mappingPath string
	mappingText string
	ocrPath     string
	ocrLangs    []string
	edits       []edit
	previewDir  string
	outPath     string
	fallback    string
}

type edit struct {
	filename string
	text     string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.fontDir, "fonts", "", "字体目录（.ttf/.otf）")
	flag.StringVar(&cfg.mappingPath, "mapping", "", "映射文件（.json/.yaml/.csv/.tsv/.txt）")
	flag.StringVar(&cfg.mappingText, "text", "", "映射文本，每行 文件名<TAB>文本 或 文件名,文本")
	flag.StringVar(&cfg.ocrPath, "ocr", "", "通过 OCR 读取映射的图片")
	ocrLangs := flag.String("ocr-lang", strings.Join(tesseract.DefaultLanguages, ","), "OCR 语言，逗号分隔")
	flag.StringVar(&cfg.previewDir, "previews", "", "逐个写出预览 PNG 的目录")
	flag.StringVar(&cfg.outPath, "out", filepath.Join("output", export.ArchiveName), "ZIP 输出路径")
	flag.StringVar(&cfg.fallback, "fallback", batch.DefaultFallbackTemplate, "无映射时的显示文本模板")
	traceLevel := flag.String("trace", "info", "日志级别：debug/info/error")
	flag.Func("edit", "修改单个字体的文本：文件名=文本（可重复）", func(s string) error {
		name, text, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return fmt.Errorf("格式应为 文件名=文本: %q", s)
		}
		cfg.edits = append(cfg.edits, edit{filename: strings.TrimSpace(name), text: text})
		return nil
	})
	flag.Parse()

	setTraceLevel(*traceLevel)
	for _, lang := range strings.Split(*ocrLangs, ",") {
		if lang = strings.TrimSpace(lang); lang != "" {
			cfg.ocrLangs = append(cfg.ocrLangs, lang)
		}
	}
	if cfg.fontDir == "" {
		log.Fatalf("必须通过 -fonts 指定字体目录")
	}

	var r renderer.Rasterizer = canvasrenderer.NewRenderer()
	if err := run(cfg, r); err != nil {
		log.Fatalf("生成缩略图失败: %v", err)
	}
	pterm.Success.Printfln("已生成：%s", cfg.outPath)
}

func setTraceLevel(level string) {
	for _, key := range traceKeys {
		t := tracing.Select(key)
		switch strings.ToLower(level) {
		case "debug":
			t.SetTraceLevel(tracing.LevelDebug)
		case "error":
			t.SetTraceLevel(tracing.LevelError)
		default:
			t.SetTraceLevel(tracing.LevelInfo)
		}
	}
}

// run 串联映射解析、批量渲染、编辑与导出。
func run(cfg config, r renderer.Rasterizer) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	table := mapping.NewTable()
	if err := loadMapping(cfg, table); err != nil {
		return err
	}

	assets, err := fonts.Collect(cfg.fontDir)
	if err != nil {
		return err
	}
	if len(assets) == 0 {
		return fmt.Errorf("目录 %s 中没有 .ttf/.otf 字体", cfg.fontDir)
	}
	pterm.Info.Printfln("%d files selected", len(assets))

	b := batch.New(r, batch.Options{FallbackTemplate: cfg.fallback})
	results := b.Run(assets, table, progressReporter(len(assets)))
	for _, res := range results {
		if res.Failed() {
			pterm.Error.Printfln("%s: %v", res.Asset.Filename, res.Err)
		}
	}

	for _, e := range cfg.edits {
		if _, err := b.Edit(e.filename, e.text); err != nil {
			pterm.Warning.Printfln("编辑 %s 失败: %v", e.filename, err)
		}
	}

	if cfg.previewDir != "" {
		if err := writePreviews(cfg.previewDir, b.Results()); err != nil {
			return err
		}
	}

	archive, err := export.NewPackager(r).Export(b.RenderedAssets(), b.CurrentTexts())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.outPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(cfg.outPath, archive, 0o644); err != nil {
		return fmt.Errorf("写入 ZIP 文件失败: %w", err)
	}
	return nil
}

// loadMapping 依次读取映射文件、OCR 图片与映射文本。
func loadMapping(cfg config, table *mapping.Table) error {
	if cfg.mappingPath != "" {
		data, err := os.ReadFile(cfg.mappingPath)
		if err != nil {
			return fmt.Errorf("读取映射文件 %s 失败: %w", cfg.mappingPath, err)
		}
		delta, err := table.ResolveDocument(filepath.Base(cfg.mappingPath), data)
		reportMapping(cfg.mappingPath, delta, err)
	}

	text := cfg.mappingText
	if cfg.ocrPath != "" {
		out, err := recognizeMapping(cfg.ocrPath, cfg.ocrLangs)
		if err != nil {
			return err
		}
		if out.Degraded {
			// 未识别到文件名，原样输出供手工整理，不自动应用
			pterm.Warning.Println("No .ttf/.otf filenames detected. Raw text follows:")
			pterm.Println(out.Text)
		} else {
			pterm.Info.Printfln("Found %d items", out.Matched)
			text = ocr.AppendInput(text, out.Text)
		}
	}
	if strings.TrimSpace(text) != "" {
		delta, err := table.Resolve(text)
		reportMapping("-text", delta, err)
	}
	return nil
}

func recognizeMapping(path string, langs []string) (ocr.Extraction, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return ocr.Extraction{}, fmt.Errorf("读取 OCR 图片 %s 失败: %w", path, err)
	}
	engine, err := tesseract.NewEngine(langs...)
	if err != nil {
		return ocr.Extraction{}, err
	}
	defer engine.Close()
	return ocr.Scan(engine, image)
}

func reportMapping(source string, delta mapping.Delta, err error) {
	if errors.Is(err, mapping.ErrNoEntries) {
		pterm.Warning.Printfln("%s: %v", source, err)
		return
	}
	pterm.Info.Printfln("Mapping applied from %s. Updated %d entries.", source, len(delta))
}

func progressReporter(total int) func(batch.Progress) {
	bar, err := pterm.DefaultProgressbar.WithTotal(total).WithTitle("Rendering").Start()
	if err != nil {
		return nil
	}
	return func(p batch.Progress) {
		if p.Processed > 0 {
			bar.Increment()
		}
		bar.UpdateTitle(fmt.Sprintf("%s (%d%%)", p.Label, p.Percent()))
		if p.Processed == p.Total {
			_, _ = bar.Stop()
		}
	}
}

func writePreviews(dir string, results []batch.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建预览目录失败: %w", err)
	}
	for _, res := range results {
		if res.Image == nil {
			continue
		}
		data, err := res.Image.PNG()
		if err != nil {
			return err
		}
		path := filepath.Join(dir, export.EntryName(res.Asset.Filename))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("写入预览 %s 失败: %w", path, err)
		}
	}
	return nil
}

// Package tesseract adapts a gosseract client to ocr.Recognizer. It needs
// the tesseract and leptonica libraries at build time; package ocr does not.
package tesseract

import (
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/otiai10/gosseract/v2"

	"github.com/ByLCY/fontthumb/ocr"
)

// DefaultLanguages are requested together; font sample sheets commonly mix
// Latin, Hangul and Japanese text.
var DefaultLanguages = []string{"eng", "kor", "jpn"}

// tracer writes to trace with key 'fontthumb.ocr'
func tracer() tracing.Trace {
	return tracing.Select("fontthumb.ocr")
}

// Engine is an ocr.Recognizer backed by a gosseract client.
type Engine struct {
	client *gosseract.Client
}

var _ ocr.Recognizer = (*Engine)(nil)

// NewEngine creates a client for the given language hints, or
// DefaultLanguages if none are given.
func NewEngine(languages ...string) (*Engine, error) {
	if len(languages) == 0 {
		languages = DefaultLanguages
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(languages...); err != nil {
		client.Close()
		return nil, fmt.Errorf("设置 OCR 语言 %s 失败: %w", strings.Join(languages, "+"), err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		client.Close()
		return nil, fmt.Errorf("设置 OCR 分页模式失败: %w", err)
	}
	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// Recognize returns the full text and the text lines of image.
func (e *Engine) Recognize(image []byte) (ocr.Page, error) {
	if len(image) == 0 {
		return ocr.Page{}, fmt.Errorf("OCR 图片为空")
	}
	if err := e.client.SetImageFromBytes(image); err != nil {
		return ocr.Page{}, fmt.Errorf("加载 OCR 图片失败: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return ocr.Page{}, err
	}
	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return ocr.Page{}, fmt.Errorf("读取 OCR 文本行失败: %w", err)
	}
	page := ocr.Page{Text: text, Lines: make([]ocr.Line, 0, len(boxes))}
	for _, box := range boxes {
		page.Lines = append(page.Lines, ocr.Line{Text: box.Word})
	}
	tracer().Debugf("ocr recognized %d lines", len(page.Lines))
	return page, nil
}

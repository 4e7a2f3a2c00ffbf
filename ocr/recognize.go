package ocr

import "fmt"

// Recognizer converts an image into recognized text.
type Recognizer interface {
	Recognize(image []byte) (Page, error)
}

// Scan recognizes image with r and extracts mapping input from the page.
func Scan(r Recognizer, image []byte) (Extraction, error) {
	page, err := r.Recognize(image)
	if err != nil {
		return Extraction{}, fmt.Errorf("OCR 识别失败: %w", err)
	}
	ex := ExtractPage(page)
	tracer().Infof("ocr matched %d of %d lines", ex.Matched, len(page.Lines))
	return ex, nil
}

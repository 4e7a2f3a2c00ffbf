/*
Package ocr turns recognized text lines into delimited mapping input.

The heuristics look for a font filename (anything up to a .ttf or .otf
extension) at the start of a line and use the rest of the line as display
text. Output is TAB separated and meant for mapping.Table.Resolve. Text
recognition itself is done by a Recognizer; package ocr/tesseract wraps
gosseract.
*/
package ocr

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'fontthumb.ocr'
func tracer() tracing.Trace {
	return tracing.Select("fontthumb.ocr")
}

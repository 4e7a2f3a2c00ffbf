/*
Package mapping resolves user supplied mapping input into a table from font
filename to display text.

Input is either a structured document (JSON or YAML, holding a list of
{font, text} records or a plain key/value object) or line oriented text with
two TAB or comma separated columns. Structured parsing is tried first; any
input that is not a usable structured document is read as delimited text.
*/
package mapping

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'fontthumb.mapping'
func tracer() tracing.Trace {
	return tracing.Select("fontthumb.mapping")
}

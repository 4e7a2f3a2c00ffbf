/*
Package batch drives a set of font assets through rendering.

Assets are processed one after another in input order. Each asset's family
is registered and its text rendered; a failure is recorded on that asset and
the batch moves on. Progress is reported after every asset. Single assets
can be re-rendered afterwards when their text is edited.
*/
package batch

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'fontthumb.batch'
func tracer() tracing.Trace {
	return tracing.Select("fontthumb.batch")
}

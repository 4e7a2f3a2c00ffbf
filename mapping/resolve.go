package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoEntries is returned when an input yields no accepted entries. It is
// an input error; the table is left untouched.
var ErrNoEntries = errors.New("映射输入中没有可用条目")

// Format names the strategy that produced a delta.
type Format int

const (
	FormatDelimited Format = iota
	FormatStructured
)

func (f Format) String() string {
	switch f {
	case FormatStructured:
		return "structured"
	default:
		return "delimited"
	}
}

// Parse tries raw as a JSON document first and falls back to delimited text
// when it is not valid JSON or not one of the accepted shapes.
func Parse(raw string) (Delta, Format) {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err == nil {
		if delta, ok := ParseValue(value); ok {
			return delta, FormatStructured
		}
	}
	return ParseDelimited(raw), FormatDelimited
}

// ParseValue accepts an already decoded document: a list of records with
// "font" and "text" fields, or an object of filename → text pairs. Other
// shapes report ok == false. Numbers and booleans are formatted as text;
// null and nested values count as absent, so a pair like {"a.ttf": null}
// is skipped rather than stored.
func ParseValue(value any) (Delta, bool) {
	switch v := value.(type) {
	case []any:
		return parseRecords(v), true
	case map[string]any:
		return parsePairs(v), true
	case map[any]any:
		pairs := make(map[string]any, len(v))
		for k, val := range v {
			pairs[fmt.Sprint(k)] = val
		}
		return parsePairs(pairs), true
	case []Entry:
		delta := make(Delta, 0, len(v))
		for _, e := range v {
			if e.Font != "" && e.Text != "" {
				delta = append(delta, e)
			}
		}
		return delta, true
	case map[string]string:
		pairs := make(map[string]any, len(v))
		for k, val := range v {
			pairs[k] = val
		}
		return parsePairs(pairs), true
	default:
		return nil, false
	}
}

func parseRecords(items []any) Delta {
	delta := make(Delta, 0, len(items))
	for _, item := range items {
		record, ok := asObject(item)
		if !ok {
			continue
		}
		font, okFont := scalarString(record["font"])
		text, okText := scalarString(record["text"])
		if !okFont || !okText || font == "" || text == "" {
			continue
		}
		delta = append(delta, Entry{Font: font, Text: text})
	}
	return delta
}

func parsePairs(pairs map[string]any) Delta {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	delta := make(Delta, 0, len(keys))
	for _, k := range keys {
		text, ok := scalarString(pairs[k])
		if !ok {
			continue
		}
		delta = append(delta, Entry{Font: k, Text: text})
	}
	return delta
}

func asObject(item any) (map[string]any, bool) {
	switch v := item.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// scalarString 将标量值转为文本；null 与复合值视为缺失。
func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", false
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool, int, int64, uint64, float32:
		return fmt.Sprint(s), true
	default:
		return "", false
	}
}

// Resolve parses raw and merges the accepted entries into the table.
func (t *Table) Resolve(raw string) (Delta, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrNoEntries
	}
	delta, format := Parse(strings.TrimSpace(raw))
	return t.merge(delta, format)
}

// ResolveValue merges an already decoded document. Values that are not a
// record list or key/value object are rendered back to text and resolved
// as delimited input.
func (t *Table) ResolveValue(value any) (Delta, error) {
	if delta, ok := ParseValue(value); ok {
		return t.merge(delta, FormatStructured)
	}
	if s, ok := scalarString(value); ok {
		return t.Resolve(s)
	}
	return nil, ErrNoEntries
}

// ResolveDocument resolves an uploaded mapping file. The decoder is chosen
// by extension: .json and .yaml/.yml are decoded as structured documents,
// everything else (or a document that fails to decode) is read as text.
func (t *Table) ResolveDocument(name string, data []byte) (Delta, error) {
	var (
		value any
		err   error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		err = json.Unmarshal(data, &value)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &value)
	default:
		return t.Resolve(string(data))
	}
	if err != nil {
		tracer().Infof("mapping document %s is not valid, reading as text: %v", name, err)
		return t.Resolve(string(data))
	}
	if delta, ok := ParseValue(value); ok {
		return t.merge(delta, FormatStructured)
	}
	return t.Resolve(string(data))
}

func (t *Table) merge(delta Delta, format Format) (Delta, error) {
	n := t.Apply(delta)
	tracer().Infof("mapping applied %d %s entries, table has %d", n, format, t.Len())
	if n == 0 {
		return delta, ErrNoEntries
	}
	return delta, nil
}

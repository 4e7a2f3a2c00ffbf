package mapping

import "sort"

// Entry is a single accepted filename → display text pair.
type Entry struct {
	Font string `json:"font" yaml:"font"`
	Text string `json:"text" yaml:"text"`
}

// Delta 是一次解析得到的条目，按输入顺序排列。
type Delta []Entry

// Table maps font filenames (exact, extension included) to display text.
// Later writes win; entries are never removed.
type Table struct {
	entries map[string]string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: map[string]string{}}
}

// Set 写入一个条目，覆盖已有值。
func (t *Table) Set(font, text string) {
	if t.entries == nil {
		t.entries = map[string]string{}
	}
	t.entries[font] = text
}

// Get looks up font by exact filename.
func (t *Table) Get(font string) (string, bool) {
	if t == nil {
		return "", false
	}
	text, ok := t.entries[font]
	return text, ok
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Apply 按顺序合并 delta，返回写入的条目数。
func (t *Table) Apply(d Delta) int {
	for _, e := range d {
		t.Set(e.Font, e.Text)
	}
	return len(d)
}

// Map returns a copy of the table contents.
func (t *Table) Map() map[string]string {
	out := make(map[string]string, t.Len())
	if t == nil {
		return out
	}
	for k, v := range t.entries {
		out[k] = v
	}
	return out
}

// Filenames returns the mapped filenames in sorted order.
func (t *Table) Filenames() []string {
	names := make([]string, 0, t.Len())
	if t == nil {
		return names
	}
	for k := range t.entries {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

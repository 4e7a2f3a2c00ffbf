package mapping

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveShapesYieldSameTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontthumb.mapping")
	defer teardown()
	//
	want := map[string]string{"a.ttf": "Hi"}
	for _, raw := range []string{
		`[{"font":"a.ttf","text":"Hi"}]`,
		`{"a.ttf":"Hi"}`,
		"a.ttf\tHi",
	} {
		table := NewTable()
		_, err := table.Resolve(raw)
		require.NoError(t, err, raw)
		if diff := cmp.Diff(want, table.Map()); diff != "" {
			t.Errorf("resolve %q mismatch (-want +got):\n%s", raw, diff)
		}
	}
}

func TestResolveLastWriteWins(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontthumb.mapping")
	defer teardown()
	//
	table := NewTable()
	_, err := table.Resolve("a.ttf\tX")
	require.NoError(t, err)
	_, err = table.Resolve("a.ttf\tY")
	require.NoError(t, err)
	text, ok := table.Get("a.ttf")
	assert.True(t, ok)
	assert.Equal(t, "Y", text)

	// 同一输入内后出现的行同样覆盖先前的值
	_, err = table.Resolve("b.ttf,first\nb.ttf,second")
	require.NoError(t, err)
	text, _ = table.Get("b.ttf")
	assert.Equal(t, "second", text)
	assert.Equal(t, 2, table.Len())
}

func TestResolveNeverRemovesEntries(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontthumb.mapping")
	defer teardown()
	//
	table := NewTable()
	table.Set("keep.ttf", "kept")
	_, err := table.Resolve(`{"other.otf":"new"}`)
	require.NoError(t, err)
	if diff := cmp.Diff(map[string]string{"keep.ttf": "kept", "other.otf": "new"}, table.Map()); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordsSkipIncompleteEntries(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontthumb.mapping")
	defer teardown()
	//
	table := NewTable()
	delta, err := table.Resolve(`[
		{"font": "a.ttf", "text": "A"},
		{"font": "b.ttf"},
		{"text": "orphan"},
		{"font": "", "text": "empty"},
		{"font": "c.ttf", "text": null},
		"not a record",
		{"font": "d.otf", "text": 42}
	]`)
	require.NoError(t, err)
	want := Delta{{Font: "a.ttf", Text: "A"}, {Font: "d.otf", Text: "42"}}
	if diff := cmp.Diff(want, delta); diff != "" {
		t.Errorf("delta mismatch (-want +got):\n%s", diff)
	}
}

func TestPairsSkipNullAndNestedValues(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontthumb.mapping")
	defer teardown()
	//
	table := NewTable()
	delta, err := table.Resolve(`{"a.ttf": null, "b.ttf": {"x": 1}, "c.ttf": "", "d.ttf": true}`)
	require.NoError(t, err)
	want := Delta{{Font: "c.ttf", Text: ""}, {Font: "d.ttf", Text: "true"}}
	if diff := cmp.Diff(want, delta); diff != "" {
		t.Errorf("delta mismatch (-want +got):\n%s", diff)
	}
	_, ok := table.Get("a.ttf")
	assert.False(t, ok)
}

func TestInvalidJSONFallsBackToDelimited(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontthumb.mapping")
	defer teardown()
	//
	delta, format := Parse(`{"a.ttf": "broken", b.ttf, Fallback`)
	assert.Equal(t, FormatDelimited, format)
	require.Len(t, delta, 1)
	assert.Equal(t, `{"a.ttf": "broken"`, delta[0].Font)
	assert.Equal(t, "b.ttf  Fallback", delta[0].Text)
}

func TestParseDelimited(t *testing.T) {
	raw := "one.ttf\tHello, World\r\n" +
		"\n" +
		"   \n" +
		"two.otf, Second , line\r" +
		"three.ttf\t\tspaced\tout\n" +
		"missing-text.ttf,   \n" +
		",no font\n" +
		"single-column\n"
	want := Delta{
		{Font: "one.ttf", Text: "Hello, World"},
		{Font: "two.otf", Text: "Second   line"},
		{Font: "three.ttf", Text: "spaced out"},
	}
	if diff := cmp.Diff(want, ParseDelimited(raw)); diff != "" {
		t.Errorf("delimited mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDelimitedEmpty(t *testing.T) {
	assert.Empty(t, ParseDelimited(""))
	assert.Empty(t, ParseDelimited("\n\n\r\n"))
}

func TestResolveReportsNoEntries(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontthumb.mapping")
	defer teardown()
	//
	table := NewTable()
	_, err := table.Resolve("   ")
	assert.True(t, errors.Is(err, ErrNoEntries))
	_, err = table.Resolve("just some words")
	assert.True(t, errors.Is(err, ErrNoEntries))
	assert.Equal(t, 0, table.Len())
}

func TestResolveDocumentYAML(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontthumb.mapping")
	defer teardown()
	//
	records := []byte("- font: a.ttf\n  text: Hi\n- font: b.otf\n  text: Yo\n")
	pairs := []byte("a.ttf: Hi\nb.otf: Yo\n")
	want := map[string]string{"a.ttf": "Hi", "b.otf": "Yo"}
	for name, data := range map[string][]byte{"list.yaml": records, "pairs.yml": pairs} {
		table := NewTable()
		_, err := table.ResolveDocument(name, data)
		require.NoError(t, err, name)
		if diff := cmp.Diff(want, table.Map()); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestResolveDocumentFallsBackToText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontthumb.mapping")
	defer teardown()
	//
	table := NewTable()
	_, err := table.ResolveDocument("broken.json", []byte("a.ttf,Hi"))
	require.NoError(t, err)
	_, err = table.ResolveDocument("list.tsv", []byte("b.ttf\tThere"))
	require.NoError(t, err)
	if diff := cmp.Diff(map[string]string{"a.ttf": "Hi", "b.ttf": "There"}, table.Map()); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveValue(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontthumb.mapping")
	defer teardown()
	//
	table := NewTable()
	_, err := table.ResolveValue([]Entry{{Font: "a.ttf", Text: "A"}, {Font: "b.ttf"}})
	require.NoError(t, err)
	_, err = table.ResolveValue("c.ttf,C")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ttf", "c.ttf"}, table.Filenames())
}

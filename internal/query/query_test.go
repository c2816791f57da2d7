package query

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func decodeItem(t *testing.T, src string) Item {
	t.Helper()
	var item Item
	if err := json.Unmarshal([]byte(src), &item); err != nil {
		t.Fatalf("decode %s: %v", src, err)
	}
	return item
}

func TestItemDecodeLeaves(t *testing.T) {
	cases := []struct {
		src  string
		want Item
	}{
		{`{"CATEGORY": "work"}`, Item{Kind: KindCategory, Value: "work"}},
		{`{"TAG": "urgent"}`, Item{Kind: KindTag, Value: "urgent"}},
		{`{"NOTE": "abc123"}`, Item{Kind: KindNote, Value: "abc123"}},
		{`{"NOTEBOOK": "projects"}`, Item{Kind: KindNotebook, Value: "projects"}},
		{`{"STATUS": "open"}`, Item{Kind: KindStatus, Value: "open"}},
	}
	for _, tc := range cases {
		got := decodeItem(t, tc.src)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("decode %s (-want +got):\n%s", tc.src, diff)
		}
	}
}

func TestItemDecodeModifiers(t *testing.T) {
	got := decodeItem(t, `{"NOTEBOOK": "projects", "recursive": true, "negated": true}`)
	want := Item{Kind: KindNotebook, Value: "projects", Recursive: true, Negated: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected item (-want +got):\n%s", diff)
	}
}

func TestItemDecodeNested(t *testing.T) {
	src := `{
		"AND": [
			{"OR": [{"CATEGORY": "work"}, {"CATEGORY": "personal"}]},
			{"TAG": "urgent", "negated": true}
		]
	}`
	got := decodeItem(t, src)
	want := Item{Kind: KindAnd, Children: []Item{
		{Kind: KindOr, Children: []Item{
			{Kind: KindCategory, Value: "work"},
			{Kind: KindCategory, Value: "personal"},
		}},
		{Kind: KindTag, Value: "urgent", Negated: true},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected tree (-want +got):\n%s", diff)
	}
}

func TestItemDecodeNoVariant(t *testing.T) {
	var item Item
	err := json.Unmarshal([]byte(`{"negated": true}`), &item)
	if err == nil {
		t.Fatal("expected an error for a node with no variant key")
	}
	if !strings.Contains(err.Error(), "no variant key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestItemDecodeMixedVariants(t *testing.T) {
	var item Item
	err := json.Unmarshal([]byte(`{"CATEGORY": "work", "TAG": "urgent"}`), &item)
	if err == nil {
		t.Fatal("expected an error for a node mixing variant keys")
	}
}

func TestItemDecodeIgnoresUnknownKeys(t *testing.T) {
	got := decodeItem(t, `{"CATEGORY": "work", "note_to_self": "check this"}`)
	if got.Kind != KindCategory || got.Value != "work" {
		t.Fatalf("unknown keys must be ignored, got %+v", got)
	}
}

func TestItemDecodeChildTypeMismatch(t *testing.T) {
	var item Item
	if err := json.Unmarshal([]byte(`{"AND": "not a list"}`), &item); err == nil {
		t.Fatal("expected an error for non-array combinator children")
	}
	if err := json.Unmarshal([]byte(`{"CATEGORY": ["work"]}`), &item); err == nil {
		t.Fatal("expected an error for non-string leaf value")
	}
}

func TestKindString(t *testing.T) {
	if got := KindNotebook.String(); got != "NOTEBOOK" {
		t.Fatalf("KindNotebook.String() = %q", got)
	}
	if got := Kind(99).String(); got != "Kind(99)" {
		t.Fatalf("out-of-range kind = %q", got)
	}
}

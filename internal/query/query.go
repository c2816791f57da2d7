// Package query implements the declarative engine behind generated summary
// notes: a boolean query tree over TODO attributes, a multi-level sort
// engine, and a grouping renderer that turns the filtered set into nested
// markdown headings. The whole package is pure computation; the only
// external contact is the notebook parent lookup consumed by recursive
// notebook queries.
package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind discriminates the query tree variants.
type Kind int

const (
	KindCategory Kind = iota
	KindTag
	KindNote
	KindNotebook
	KindStatus
	KindAnd
	KindOr
)

// wireKeys maps the upper-case wire discriminants onto variant kinds.
var wireKeys = map[string]Kind{
	"CATEGORY": KindCategory,
	"TAG":      KindTag,
	"NOTE":     KindNote,
	"NOTEBOOK": KindNotebook,
	"STATUS":   KindStatus,
	"AND":      KindAnd,
	"OR":       KindOr,
}

func (k Kind) String() string {
	for key, kind := range wireKeys {
		if kind == k {
			return key
		}
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Item is one node of a query tree. Exactly one variant is populated:
// leaf variants carry Value (plus Recursive for notebooks), combinators
// carry Children. Negated inverts the final match result of any variant,
// combinators included.
type Item struct {
	Kind      Kind
	Value     string // leaf payload
	Recursive bool   // Notebook only
	Children  []Item // And/Or only
	Negated   bool
}

// UnmarshalJSON decodes a wire query node. The variant is picked by which
// upper-case key is present; zero or more than one known key is a decode
// error. "negated" and "recursive" are optional sibling keys. Unknown keys
// are ignored so configs survive minor typos in auxiliary fields.
func (it *Item) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var found []string
	for key := range raw {
		if _, ok := wireKeys[key]; ok {
			found = append(found, key)
		}
	}
	if len(found) == 0 {
		return fmt.Errorf("query item has no variant key (want one of CATEGORY, TAG, NOTE, NOTEBOOK, STATUS, AND, OR)")
	}
	if len(found) > 1 {
		return fmt.Errorf("query item mixes variant keys %s", strings.Join(found, ", "))
	}

	key := found[0]
	it.Kind = wireKeys[key]
	switch it.Kind {
	case KindAnd, KindOr:
		if err := json.Unmarshal(raw[key], &it.Children); err != nil {
			return fmt.Errorf("decode %s children: %w", key, err)
		}
	default:
		if err := json.Unmarshal(raw[key], &it.Value); err != nil {
			return fmt.Errorf("decode %s value: %w", key, err)
		}
	}

	if v, ok := raw["negated"]; ok {
		if err := json.Unmarshal(v, &it.Negated); err != nil {
			return fmt.Errorf("decode negated: %w", err)
		}
	}
	if v, ok := raw["recursive"]; ok {
		if err := json.Unmarshal(v, &it.Recursive); err != nil {
			return fmt.Errorf("decode recursive: %w", err)
		}
	}
	return nil
}

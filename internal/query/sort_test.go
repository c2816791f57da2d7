package query

import (
	"testing"

	"notesum/internal/todo"
)

func categories(todos []todo.Todo) []string {
	out := make([]string, 0, len(todos))
	for _, t := range todos {
		out = append(out, t.Category)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortEmptyOptions(t *testing.T) {
	todos := []todo.Todo{
		{Category: "zebra", Message: "1"},
		{Category: "alpha", Message: "2"},
	}
	sorted := Sort(todos, nil)
	if sorted[0].Message != "1" || sorted[1].Message != "2" {
		t.Fatalf("empty options must preserve input order, got %v", messages(sorted))
	}
}

func TestSortCategoryAscend(t *testing.T) {
	todos := []todo.Todo{
		{Category: "work"},
		{Category: "personal"},
		{Category: "hobby"},
	}
	sorted := Sort(todos, []SortOption{{Level: 1, By: ByCategory, Order: OrderAscend}})
	if !equalStrings(categories(sorted), []string{"hobby", "personal", "work"}) {
		t.Fatalf("unexpected order: %v", categories(sorted))
	}
}

func TestSortCategoryDescend(t *testing.T) {
	todos := []todo.Todo{
		{Category: "hobby"},
		{Category: "personal"},
		{Category: "work"},
	}
	sorted := Sort(todos, []SortOption{{Level: 1, By: ByCategory, Order: OrderDescend}})
	if !equalStrings(categories(sorted), []string{"work", "personal", "hobby"}) {
		t.Fatalf("unexpected order: %v", categories(sorted))
	}
}

func TestSortCustomOrder(t *testing.T) {
	todos := []todo.Todo{
		{Category: "fun"},
		{Category: "work"},
		{Category: "study"},
		{Category: "health"},
	}
	sorted := Sort(todos, []SortOption{{
		Level:       1,
		By:          ByCategory,
		Order:       OrderCustom,
		CustomOrder: []string{"work", "study", "fun", "health"},
	}})
	if !equalStrings(categories(sorted), []string{"work", "study", "fun", "health"}) {
		t.Fatalf("unexpected order: %v", categories(sorted))
	}
}

func TestSortCustomOrderAbsentValuesLast(t *testing.T) {
	todos := []todo.Todo{
		{Category: "other"},
		{Category: "work"},
		{Category: "unknown"},
	}
	sorted := Sort(todos, []SortOption{{
		Level:       1,
		By:          ByCategory,
		Order:       OrderCustom,
		CustomOrder: []string{"work"},
	}})
	if sorted[0].Category != "work" {
		t.Fatalf("named value must sort first, got %v", categories(sorted))
	}
	// Absent values are tied at this level; stability keeps input order.
	if sorted[1].Category != "other" || sorted[2].Category != "unknown" {
		t.Fatalf("absent values must keep input order, got %v", categories(sorted))
	}
}

func TestSortDateAscend(t *testing.T) {
	todos := []todo.Todo{
		{DueDate: "2026-01-15", Message: "mid"},
		{DueDate: "", Message: "undated"},
		{DueDate: "2026-01-10", Message: "early"},
	}
	sorted := Sort(todos, []SortOption{{Level: 1, By: ByDate, Order: OrderAscend}})
	want := []string{"early", "mid", "undated"}
	if !equalStrings(messages(sorted), want) {
		t.Fatalf("expected %v, got %v", want, messages(sorted))
	}
}

func TestSortDateDescendUndatedFirst(t *testing.T) {
	todos := []todo.Todo{
		{DueDate: "2026-01-15", Message: "mid"},
		{DueDate: "", Message: "undated"},
		{DueDate: "2026-01-10", Message: "early"},
	}
	sorted := Sort(todos, []SortOption{{Level: 1, By: ByDate, Order: OrderDescend}})
	// Undated items carry a maximal key, so descending puts them first.
	want := []string{"undated", "mid", "early"}
	if !equalStrings(messages(sorted), want) {
		t.Fatalf("expected %v, got %v", want, messages(sorted))
	}
}

func TestSortTagUsesFirstTag(t *testing.T) {
	todos := []todo.Todo{
		{Tags: []string{"zebra", "alpha"}, Message: "z"},
		{Tags: []string{"beta"}, Message: "b"},
		{Tags: []string{"alpha"}, Message: "a"},
	}
	sorted := Sort(todos, []SortOption{{Level: 1, By: ByTag, Order: OrderAscend}})
	want := []string{"a", "b", "z"}
	if !equalStrings(messages(sorted), want) {
		t.Fatalf("expected %v, got %v", want, messages(sorted))
	}
}

func TestSortStatus(t *testing.T) {
	todos := []todo.Todo{
		{Completed: false, Message: "open"},
		{Completed: true, Message: "done"},
	}
	sorted := Sort(todos, []SortOption{{Level: 1, By: ByStatus, Order: OrderAscend}})
	// "done" sorts before "open".
	if sorted[0].Message != "done" || sorted[1].Message != "open" {
		t.Fatalf("unexpected order: %v", messages(sorted))
	}
}

func TestSortMultiLevel(t *testing.T) {
	todos := []todo.Todo{
		{Category: "work", Tags: []string{"should"}, Message: "work should"},
		{Category: "work", Tags: []string{"must"}, Message: "work must"},
		{Category: "study", Tags: []string{"must"}, Message: "study must"},
		{Category: "study", Tags: []string{"maybe"}, Message: "study maybe"},
	}
	options := []SortOption{
		{Level: 2, By: ByTag, Order: OrderCustom, CustomOrder: []string{"must", "should", "maybe"}},
		{Level: 1, By: ByCategory, Order: OrderCustom, CustomOrder: []string{"work", "study"}},
	}
	sorted := Sort(todos, options)
	want := []string{"work must", "work should", "study must", "study maybe"}
	if !equalStrings(messages(sorted), want) {
		t.Fatalf("expected %v, got %v", want, messages(sorted))
	}
}

func TestSortStable(t *testing.T) {
	todos := []todo.Todo{
		{Category: "work", Message: "first"},
		{Category: "work", Message: "second"},
		{Category: "work", Message: "third"},
	}
	options := []SortOption{{Level: 1, By: ByCategory, Order: OrderAscend}}
	sorted := Sort(todos, options)
	want := []string{"first", "second", "third"}
	if !equalStrings(messages(sorted), want) {
		t.Fatalf("ties must preserve input order, got %v", messages(sorted))
	}

	again := Sort(sorted, options)
	if !equalStrings(messages(again), want) {
		t.Fatalf("sorting twice must be identical, got %v", messages(again))
	}
}

func TestSortUnknownCriterion(t *testing.T) {
	todos := []todo.Todo{
		{Category: "b", Message: "1"},
		{Category: "a", Message: "2"},
	}
	// An unknown sortBy contributes an empty key and the level is a no-op.
	options := []SortOption{
		{Level: 1, By: "priority", Order: OrderAscend},
		{Level: 2, By: ByCategory, Order: OrderAscend},
	}
	sorted := Sort(todos, options)
	if sorted[0].Category != "a" {
		t.Fatalf("unknown criterion should fall through, got %v", categories(sorted))
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	todos := []todo.Todo{
		{Category: "b"},
		{Category: "a"},
	}
	Sort(todos, []SortOption{{Level: 1, By: ByCategory, Order: OrderAscend}})
	if todos[0].Category != "b" {
		t.Fatalf("input slice must not be reordered")
	}
}

func TestNaturalCompare(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"a", "b", -1},
		{"b", "a", 1},
		{"a", "a", 0},
		{"A", "a", 0},
		{"Work", "personal", 1},
		{"v2", "v10", -1},
		{"item10", "item9", 1},
		{"07", "7", 0},
		{"", "a", -1},
		{"a", "", 1},
	}
	for _, tc := range cases {
		got := naturalCompare(tc.a, tc.b)
		switch {
		case tc.want < 0 && got >= 0,
			tc.want > 0 && got <= 0,
			tc.want == 0 && got != 0:
			t.Fatalf("naturalCompare(%q, %q) = %d, want sign %d", tc.a, tc.b, got, tc.want)
		}
	}
}

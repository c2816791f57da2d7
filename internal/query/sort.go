package query

import (
	"math"
	"sort"
	"time"
	"unicode"
	"unicode/utf8"

	"notesum/internal/todo"
)

// Sort criteria.
const (
	ByCategory = "category"
	ByTag      = "tag"
	ByStatus   = "status"
	ByDate     = "date"
)

// Sort orders.
const (
	OrderAscend  = "ascend"
	OrderDescend = "descend"
	OrderCustom  = "custom"
)

// SortOption is one ranking criterion. Lower Level means higher priority;
// CustomOrder is consulted only when Order is "custom".
type SortOption struct {
	Level       int
	By          string
	Order       string
	CustomOrder []string
}

// Sort orders todos by the given criteria. The sort is stable: items equal
// under every criterion keep their relative input order. Empty options
// return the input untouched.
func Sort(todos []todo.Todo, options []SortOption) []todo.Todo {
	if len(options) == 0 {
		return todos
	}
	ordered := orderOptions(options)
	sorted := make([]todo.Todo, len(todos))
	copy(sorted, todos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareTodos(sorted[i], sorted[j], ordered) < 0
	})
	return sorted
}

// orderOptions sorts criteria by level, stably so equal levels keep their
// configured order.
func orderOptions(options []SortOption) []SortOption {
	ordered := make([]SortOption, len(options))
	copy(ordered, options)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Level < ordered[j].Level
	})
	return ordered
}

func compareTodos(a, b todo.Todo, ordered []SortOption) int {
	for _, opt := range ordered {
		if c := compareByOption(a, b, opt); c != 0 {
			return c
		}
	}
	return 0
}

func compareByOption(a, b todo.Todo, opt SortOption) int {
	if opt.Order == OrderCustom {
		return customRank(sortKey(a, opt.By), opt.CustomOrder) - customRank(sortKey(b, opt.By), opt.CustomOrder)
	}
	var c int
	if opt.By == ByDate {
		c = compareInt64(dateKey(a.DueDate), dateKey(b.DueDate))
	} else {
		c = naturalCompare(sortKey(a, opt.By), sortKey(b, opt.By))
	}
	if opt.Order == OrderDescend {
		return -c
	}
	return c
}

// sortKey extracts the string key for one criterion. Unknown criteria
// yield an empty key, turning that level into a no-op instead of failing
// the refresh.
func sortKey(t todo.Todo, by string) string {
	switch by {
	case ByCategory:
		return t.Category
	case ByTag:
		if len(t.Tags) > 0 {
			return t.Tags[0]
		}
		return ""
	case ByStatus:
		return t.Status()
	case ByDate:
		return t.DueDate
	default:
		return ""
	}
}

// dateKey maps a date string onto a comparable instant. Missing or
// unparseable dates get a maximal key so they sink to the end under
// ascending order and surface first under descending order. That asymmetry
// is deliberate: undated items stay at the visual bottom of the common
// ascending view.
func dateKey(date string) int64 {
	if date == "" {
		return math.MaxInt64
	}
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return math.MaxInt64
	}
	return parsed.Unix()
}

// customRank is the index of key in order, or len(order) when absent so
// unnamed values sort after every named one. Ties among absent values are
// left to the next criterion.
func customRank(key string, order []string) int {
	for i, v := range order {
		if v == key {
			return i
		}
	}
	return len(order)
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// naturalCompare orders strings case-insensitively, comparing digit runs
// by numeric value so "v2" sorts before "v10".
func naturalCompare(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if isASCIIDigit(a[i]) && isASCIIDigit(b[j]) {
			runA, nextA := digitRun(a, i)
			runB, nextB := digitRun(b, j)
			if c := compareDigitRuns(runA, runB); c != 0 {
				return c
			}
			i, j = nextA, nextB
			continue
		}
		ra, na := utf8.DecodeRuneInString(a[i:])
		rb, nb := utf8.DecodeRuneInString(b[j:])
		la, lb := unicode.ToLower(ra), unicode.ToLower(rb)
		if la != lb {
			if la < lb {
				return -1
			}
			return 1
		}
		i += na
		j += nb
	}
	switch {
	case i < len(a):
		return 1
	case j < len(b):
		return -1
	default:
		return 0
	}
}

func isASCIIDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func digitRun(s string, start int) (string, int) {
	end := start
	for end < len(s) && isASCIIDigit(s[end]) {
		end++
	}
	return s[start:end], end
}

func compareDigitRuns(a, b string) int {
	ta := trimLeadingZeros(a)
	tb := trimLeadingZeros(b)
	if len(ta) != len(tb) {
		if len(ta) < len(tb) {
			return -1
		}
		return 1
	}
	switch {
	case ta < tb:
		return -1
	case ta > tb:
		return 1
	default:
		return 0
	}
}

func trimLeadingZeros(s string) string {
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}
	return s
}

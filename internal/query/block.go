package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// blockTag is the fence info string marking a query-summary config block.
const blockTag = "json:query-summary"

// ErrNoBlock reports that a note body contains no query-summary block.
// Not a failure: it marks the note as "not a query summary".
var ErrNoBlock = errors.New("no query-summary block")

// Config is the declarative spec for one summary note, read fresh from the
// embedded block on every refresh.
type Config struct {
	Query       Item
	SortOptions []SortOption
	GroupLevel  int
	EntryFormat string
}

type configWire struct {
	Query       *Item            `json:"query"`
	SortOptions []sortOptionWire `json:"sortOptions"`
	GroupLevel  int              `json:"groupLevel"`
	EntryFormat string           `json:"entryFormat"`
}

type sortOptionWire struct {
	SortLevel       json.RawMessage `json:"sortLevel"`
	SortBy          string          `json:"sortBy"`
	SortOrder       string          `json:"sortOrder"`
	SortOrderCustom string          `json:"sortOrderCustom"`
}

// invalidLevel ranks criteria with unparseable levels after every valid one.
const invalidLevel = 1 << 30

var markdown = goldmark.New()

// HasBlock reports whether body contains a fenced code block tagged
// json:query-summary.
func HasBlock(body string) bool {
	_, ok := findBlock(body)
	return ok
}

// ParseConfig extracts and decodes the first query-summary block in body.
// Returns ErrNoBlock when no block exists. A block whose payload fails to
// decode, or that lacks a query, is a malformed-config error; the caller
// must treat it as "nothing to refresh" and leave the note untouched.
// The payload is standardized with hujson first so hand-authored blocks
// may carry comments and trailing commas.
func ParseConfig(body string) (*Config, error) {
	span, ok := findBlock(body)
	if !ok {
		return nil, ErrNoBlock
	}

	payload, err := hujson.Standardize([]byte(span.payload(body)))
	if err != nil {
		return nil, fmt.Errorf("standardize query-summary block: %w", err)
	}
	var wire configWire
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, fmt.Errorf("decode query-summary block: %w", err)
	}
	if wire.Query == nil {
		return nil, errors.New("query-summary block has no query")
	}

	cfg := &Config{
		Query:       *wire.Query,
		GroupLevel:  wire.GroupLevel,
		EntryFormat: wire.EntryFormat,
	}
	for _, opt := range wire.SortOptions {
		cfg.SortOptions = append(cfg.SortOptions, SortOption{
			Level:       parseLevel(opt.SortLevel),
			By:          opt.SortBy,
			Order:       opt.SortOrder,
			CustomOrder: splitCustomOrder(opt.SortOrderCustom),
		})
	}
	return cfg, nil
}

// Splice assembles the refreshed note: rendered body, a newline, the
// original block text byte for byte, then everything that followed the
// block. Content that preceded the block is regenerated on every refresh,
// which is what prevents stale output from piling up above the config.
func Splice(body, rendered string) (string, bool) {
	span, ok := findBlock(body)
	if !ok {
		return "", false
	}
	return rendered + "\n" + body[span.start:span.end] + body[span.end:], true
}

// parseLevel reads the wire sortLevel, a string holding an integer.
// Bare numbers are tolerated since hand-authored configs get this wrong
// easily; anything else ranks after every valid level.
func parseLevel(raw json.RawMessage) int {
	if len(raw) == 0 {
		return invalidLevel
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(asString)); err == nil {
			return n
		}
		return invalidLevel
	}
	var asNumber int
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber
	}
	return invalidLevel
}

func splitCustomOrder(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	order := make([]string, 0, len(parts))
	for _, p := range parts {
		order = append(order, strings.TrimSpace(p))
	}
	return order
}

// blockSpan marks the config block inside a note body. start..end covers
// the full block including both fences (no trailing newline); the payload
// bounds cover the content lines.
type blockSpan struct {
	start, end               int
	payloadStart, payloadEnd int
}

func (s blockSpan) payload(body string) string {
	if s.payloadStart < 0 {
		return ""
	}
	return strings.TrimSuffix(body[s.payloadStart:s.payloadEnd], "\n")
}

// findBlock locates the first json:query-summary fenced block using the
// markdown parser, so blocks quoted inside other code fences are not
// mistaken for configuration the way a plain regex scan would.
func findBlock(body string) (blockSpan, bool) {
	source := []byte(body)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var span blockSpan
	found := false
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || found {
			return ast.WalkContinue, nil
		}
		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok || fenced.Info == nil {
			return ast.WalkContinue, nil
		}
		if strings.TrimSpace(string(fenced.Info.Segment.Value(source))) != blockTag {
			return ast.WalkContinue, nil
		}

		span = spanForBlock(body, fenced)
		found = true
		return ast.WalkStop, nil
	})
	return span, found
}

func spanForBlock(body string, fenced *ast.FencedCodeBlock) blockSpan {
	infoStart := fenced.Info.Segment.Start
	start := strings.LastIndexByte(body[:infoStart], '\n') + 1

	span := blockSpan{start: start, payloadStart: -1, payloadEnd: -1}
	scanFrom := lineEnd(body, infoStart)
	if lines := fenced.Lines(); lines.Len() > 0 {
		span.payloadStart = lines.At(0).Start
		span.payloadEnd = lines.At(lines.Len() - 1).Stop
		scanFrom = span.payloadEnd
	}
	span.end = closingFenceEnd(body, scanFrom, fenceChar(body[start:]))
	return span
}

func fenceChar(opening string) byte {
	trimmed := strings.TrimLeft(opening, " ")
	if len(trimmed) > 0 && trimmed[0] == '~' {
		return '~'
	}
	return '`'
}

// lineEnd returns the index just past the line containing pos, including
// its newline when present.
func lineEnd(body string, pos int) int {
	if i := strings.IndexByte(body[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(body)
}

// closingFenceEnd finds the end of the closing fence line at or after pos.
// An unterminated block runs to the end of the body.
func closingFenceEnd(body string, pos int, fenceChar byte) int {
	for pos < len(body) {
		end := len(body)
		if i := strings.IndexByte(body[pos:], '\n'); i >= 0 {
			end = pos + i
		}
		trimmed := strings.TrimSpace(body[pos:end])
		if len(trimmed) >= 3 && strings.Count(trimmed, string(fenceChar)) == len(trimmed) {
			return end
		}
		if end == len(body) {
			break
		}
		pos = end + 1
	}
	return len(body)
}

package edit

import (
	"strings"

	"github.com/pelletier/go-toml/v2/unstable"

	"github.com/matzehuels/featprune/pkg/errors"
)

// itemKind classifies one top-level expression of a TOML document.
type itemKind int

const (
	itemTrivia     itemKind = iota // comment line
	itemTable                      // [table]
	itemArrayTable                 // [[array.of.tables]]
	itemKeyValue                   // key = value (value may span lines)
)

// item is one logical line. Offsets index the scanned text.
type item struct {
	kind     itemKind
	key      []string // header or key path, unquoted
	start    int      // first byte of the line
	keyStart int
	valStart int // key/value only
	valEnd   int // key/value only
	end      int // first byte after the line terminator

	comment int    // offset of a trailing comment, or -1
	pairs   []pair // pairs of an inline-table value
}

// pair is one key = value inside an inline table.
type pair struct {
	key      []string
	keyStart int
	valStart int
	valEnd   int
}

const blank = " \t\r\n"

// scanItems lists the top-level expressions of src. Key and value starts
// come from the parser; line and value ends are where the next expression
// begins, less trailing whitespace and comments.
func scanItems(src string) ([]item, error) {
	p := unstable.Parser{KeepComments: true}
	p.Reset([]byte(src))

	var items []item
	for p.NextExpression() {
		items = append(items, newItem(src, p.Expression()))
	}
	if err := p.Error(); err != nil {
		return nil, err
	}

	for i := range items {
		next := len(src)
		if i+1 < len(items) {
			next = items[i+1].start
		}
		items[i].finish(src, next)
	}
	return items, nil
}

func newItem(src string, n *unstable.Node) item {
	it := item{comment: -1}
	switch n.Kind {
	case unstable.Comment:
		it.kind = itemTrivia
		it.keyStart = int(n.Raw.Offset)
		it.start = lineStart(src, it.keyStart)
		return it
	case unstable.Table:
		it.kind = itemTable
	case unstable.ArrayTable:
		it.kind = itemArrayTable
	default:
		it.kind = itemKeyValue
	}

	var keyEnd int
	it.key, it.keyStart, keyEnd = keyOf(n)
	it.start = lineStart(src, it.keyStart)
	if c := n.Next(); c != nil && c.Kind == unstable.Comment {
		it.comment = int(c.Raw.Offset)
	}
	if it.kind == itemKeyValue {
		it.valStart = afterEquals(src, keyEnd)
		if v := n.Value(); v.Kind == unstable.InlineTable {
			it.pairs = inlineKeys(src, v)
		}
	}
	return it
}

// finish sets the end offsets given where the next expression starts.
func (it *item) finish(src string, next int) {
	body := strings.TrimRight(src[it.start:next], blank)
	end := it.start + len(body)
	if nl := strings.IndexByte(src[end:next], '\n'); nl >= 0 {
		it.end = end + nl + 1
	} else {
		it.end = next
	}
	if it.kind != itemKeyValue {
		return
	}

	limit := it.end
	if it.comment >= 0 {
		limit = it.comment
	}
	it.valEnd = it.valStart + len(strings.TrimRight(src[it.valStart:limit], blank))

	closing := it.valEnd - 1
	for i := range it.pairs {
		bound := closing
		if i+1 < len(it.pairs) {
			bound = it.pairs[i+1].keyStart
		}
		v := strings.TrimRight(src[it.pairs[i].valStart:bound], " \t")
		if i+1 < len(it.pairs) {
			v = strings.TrimRight(strings.TrimSuffix(v, ","), " \t")
		}
		it.pairs[i].valEnd = it.pairs[i].valStart + len(v)
	}
}

func keyOf(n *unstable.Node) (parts []string, start, end int) {
	start = -1
	keys := n.Key()
	for keys.Next() {
		k := keys.Node()
		if start < 0 {
			start = int(k.Raw.Offset)
		}
		end = int(k.Raw.Offset + k.Raw.Length)
		parts = append(parts, string(k.Data))
	}
	return parts, start, end
}

func inlineKeys(src string, table *unstable.Node) []pair {
	pairs := []pair{}
	kvs := table.Children()
	for kvs.Next() {
		key, start, end := keyOf(kvs.Node())
		pairs = append(pairs, pair{key: key, keyStart: start, valStart: afterEquals(src, end)})
	}
	return pairs
}

func lineStart(src string, offset int) int {
	return strings.LastIndexByte(src[:offset], '\n') + 1
}

// afterEquals returns the offset of the value following the key that ends
// at i.
func afterEquals(src string, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t' || src[i] == '=') {
		i++
	}
	return i
}

// inlinePairs lists the pairs of the inline table starting at start and
// returns the offset of its closing brace.
func inlinePairs(src string, start int) ([]pair, int, error) {
	items, err := scanItems(src)
	if err != nil {
		return nil, 0, err
	}
	for _, it := range items {
		if it.kind == itemKeyValue && it.valStart == start && it.pairs != nil {
			return it.pairs, it.valEnd - 1, nil
		}
	}
	return nil, 0, errors.New(errors.ErrCodeMalformedDependency, "no inline table at offset %d", start)
}

package edit

import (
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/matzehuels/featprune/pkg/errors"
)

const dependenciesTable = "dependencies"

// segment is one table of the document: its header line and every line up
// to the next header. The text before the first header is a segment with a
// nil key.
type segment struct {
	key   []string
	array bool
	text  string
	orig  string
}

// declaresDependencies reports whether the segment is [dependencies] or a
// [dependencies.<name>] sub-table.
func (s *segment) declaresDependencies() bool {
	return !s.array && len(s.key) > 0 && len(s.key) <= 2 && s.key[0] == dependenciesTable
}

func (s *segment) is(key ...string) bool {
	return !s.array && slices.Equal(s.key, key)
}

// Document is a Cargo.toml held as text. Edits touch only the bytes of the
// dependency being changed; everything else, comments and blank lines
// included, is reproduced exactly by [Document.String].
type Document struct {
	segments []*segment
	newline  string
}

// Parse splits src into tables. src must be valid TOML.
func Parse(src string) (*Document, error) {
	var probe map[string]any
	if err := toml.Unmarshal([]byte(src), &probe); err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifestParse, err, "invalid TOML")
	}
	items, err := scanItems(src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeManifestParse, err, "scan manifest")
	}

	d := &Document{newline: "\n"}
	if strings.Contains(src, "\r\n") {
		d.newline = "\r\n"
	}

	cur, start := &segment{}, 0
	for _, it := range items {
		if it.kind != itemTable && it.kind != itemArrayTable {
			continue
		}
		cur.text = src[start:it.start]
		d.segments = append(d.segments, cur)
		cur = &segment{key: it.key, array: it.kind == itemArrayTable}
		start = it.start
	}
	cur.text = src[start:]
	d.segments = append(d.segments, cur)

	for _, seg := range d.segments {
		seg.orig = seg.text
	}
	return d, nil
}

// String renders the current document.
func (d *Document) String() string {
	var b strings.Builder
	for _, seg := range d.segments {
		b.WriteString(seg.text)
	}
	return b.String()
}

// Restore puts every dependency table back to the text it had at Parse.
func (d *Document) Restore() {
	for _, seg := range d.segments {
		if seg.declaresDependencies() {
			seg.text = seg.orig
		}
	}
}

// Modified reports whether any table differs from its parsed text.
func (d *Document) Modified() bool {
	for _, seg := range d.segments {
		if seg.text != seg.orig {
			return true
		}
	}
	return false
}

// SetFeatures rewrites the declaration of the dependency keyed name so that
// default features are off and exactly features are enabled, in the given
// order. A short declaration ("1.0") becomes an inline table. An empty list
// removes the features key. Declarations inherited from the workspace
// (workspace = true) are left unchanged.
//
// It returns DEPENDENCY_NOT_FOUND when no [dependencies] entry has that key
// and MALFORMED_DEPENDENCY when the declaration cannot be edited in place.
// On error the document is unchanged.
func (d *Document) SetFeatures(name string, features []string) error {
	for _, f := range features {
		if err := errors.ValidateFeatureName(f); err != nil {
			return errors.Wrap(errors.ErrCodeMalformedDependency, err, "dependency %s", name)
		}
	}

	seg, entry, err := d.locate(name)
	if err != nil {
		return err
	}

	var next string
	if entry != nil {
		next, err = editEntry(seg.text, *entry, features)
	} else {
		next, err = editTable(seg.text, features, d.newline)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeMalformedDependency, err, "dependency %s", name)
	}
	if next == seg.text {
		return nil
	}

	prev := seg.text
	seg.text = next
	if err := d.validate(); err != nil {
		seg.text = prev
		return errors.Wrap(errors.ErrCodeMalformedDependency, err, "edit of dependency %s produced invalid TOML", name)
	}
	return nil
}

func (d *Document) validate() error {
	var probe map[string]any
	return toml.Unmarshal([]byte(d.String()), &probe)
}

// locate finds the declaration of name. For an entry of [dependencies] it
// returns the segment and the entry; for a [dependencies.<name>] table it
// returns the segment and a nil entry.
func (d *Document) locate(name string) (*segment, *item, error) {
	for _, seg := range d.segments {
		switch {
		case seg.is(dependenciesTable):
			items, err := scanItems(seg.text)
			if err != nil {
				return nil, nil, errors.Wrap(errors.ErrCodeMalformedDependency, err, "scan [dependencies]")
			}
			var found *item
			for i := range items {
				it := &items[i]
				if it.kind != itemKeyValue || it.key[0] != name {
					continue
				}
				if len(it.key) > 1 {
					return nil, nil, errors.New(errors.ErrCodeMalformedDependency,
						"dependency %s uses dotted keys, which cannot be edited", name)
				}
				found = it
			}
			if found != nil {
				return seg, found, nil
			}
		case seg.is(dependenciesTable, name):
			return seg, nil, nil
		}
	}
	return nil, nil, errors.New(errors.ErrCodeDependencyNotFound, "dependency %s not found in [dependencies]", name)
}

// editEntry rewrites a key = value declaration inside [dependencies].
func editEntry(text string, it item, features []string) (string, error) {
	raw := text[it.valStart:it.valEnd]
	switch raw[0] {
	case '"', '\'':
		return text[:it.valStart] + detailed(raw, features) + text[it.valEnd:], nil
	case '{':
		return editInline(text, it.valStart, features)
	}
	return "", errors.New(errors.ErrCodeMalformedDependency, "unsupported declaration %s", raw)
}

// detailed expands a short version requirement into an inline table.
func detailed(version string, features []string) string {
	var b strings.Builder
	b.WriteString("{ version = ")
	b.WriteString(version)
	b.WriteString(", default-features = false")
	if len(features) > 0 {
		b.WriteString(", features = ")
		b.WriteString(renderArray(features))
	}
	b.WriteString(" }")
	return b.String()
}

var (
	defaultFeaturesKeys = []string{"default-features", "default_features"}
	featuresKeys        = []string{"features"}
)

func editInline(text string, start int, features []string) (string, error) {
	pairs, _, err := inlinePairs(text, start)
	if err != nil {
		return "", err
	}
	for _, p := range pairs {
		if isInheritMarker(p.key, text[p.valStart:p.valEnd]) {
			return text, nil
		}
	}

	if text, err = setInline(text, start, defaultFeaturesKeys, "false"); err != nil {
		return "", err
	}
	if len(features) == 0 {
		return removeInline(text, start, featuresKeys[0])
	}
	return setInline(text, start, featuresKeys, renderArray(features))
}

func setInline(text string, start int, keys []string, value string) (string, error) {
	pairs, end, err := inlinePairs(text, start)
	if err != nil {
		return "", err
	}
	for _, p := range pairs {
		if len(p.key) == 1 && slices.Contains(keys, p.key[0]) {
			return text[:p.valStart] + value + text[p.valEnd:], nil
		}
	}
	entry := keys[0] + " = " + value
	if len(pairs) == 0 {
		return text[:start] + "{ " + entry + " }" + text[end+1:], nil
	}
	last := pairs[len(pairs)-1]
	return text[:last.valEnd] + ", " + entry + text[last.valEnd:], nil
}

func removeInline(text string, start int, key string) (string, error) {
	pairs, _, err := inlinePairs(text, start)
	if err != nil {
		return "", err
	}
	for i, p := range pairs {
		if len(p.key) != 1 || p.key[0] != key {
			continue
		}
		switch {
		case i+1 < len(pairs):
			return text[:p.keyStart] + text[pairs[i+1].keyStart:], nil
		case i > 0:
			return text[:pairs[i-1].valEnd] + text[p.valEnd:], nil
		default:
			return text[:p.keyStart] + text[p.valEnd:], nil
		}
	}
	return text, nil
}

// editTable rewrites a [dependencies.<name>] sub-table line by line.
func editTable(text string, features []string, nl string) (string, error) {
	items, err := scanItems(text)
	if err != nil {
		return "", err
	}
	for _, it := range items {
		if it.kind == itemKeyValue && isInheritMarker(it.key, text[it.valStart:it.valEnd]) {
			return text, nil
		}
	}

	if text, err = setLine(text, defaultFeaturesKeys, "false", nl); err != nil {
		return "", err
	}
	if len(features) == 0 {
		return removeLine(text, featuresKeys[0])
	}
	return setLine(text, featuresKeys, renderArray(features), nl)
}

func setLine(text string, keys []string, value, nl string) (string, error) {
	items, err := scanItems(text)
	if err != nil {
		return "", err
	}
	insertAt := 0
	for _, it := range items {
		switch it.kind {
		case itemTable:
			insertAt = it.end
		case itemKeyValue:
			if len(it.key) == 1 && slices.Contains(keys, it.key[0]) {
				return text[:it.valStart] + value + text[it.valEnd:], nil
			}
			insertAt = it.end
		}
	}
	line := keys[0] + " = " + value + nl
	if insertAt > 0 && text[insertAt-1] != '\n' {
		line = nl + line
	}
	return text[:insertAt] + line + text[insertAt:], nil
}

func removeLine(text, key string) (string, error) {
	items, err := scanItems(text)
	if err != nil {
		return "", err
	}
	for _, it := range items {
		if it.kind == itemKeyValue && len(it.key) == 1 && it.key[0] == key {
			return text[:it.start] + text[it.end:], nil
		}
	}
	return text, nil
}

func isInheritMarker(key []string, raw string) bool {
	return len(key) == 1 && key[0] == "workspace" && raw == "true"
}

func renderArray(values []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(renderString(v))
	}
	b.WriteByte(']')
	return b.String()
}

// renderString quotes s as a TOML basic string.
func renderString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			b.WriteString(`\u00`)
			b.WriteByte("0123456789ABCDEF"[r>>4])
			b.WriteByte("0123456789ABCDEF"[r&0xf])
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

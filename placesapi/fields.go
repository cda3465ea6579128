package placesapi

import (
	"strings"
	"unicode"
)

const (
	wildcardFields = "*"
	placesPrefix   = "places."
)

type fieldsKind int

const (
	fieldsAbsent fieldsKind = iota
	fieldsList
	fieldsCSV
)

// Fields is the field mask requested from the service. It holds either a list
// of field paths or a single comma separated string. The zero value means no
// mask was supplied at all.
type Fields struct {
	kind fieldsKind
	list []string
	csv  string
}

// FieldList builds a mask from individual field paths such as "places.id".
func FieldList(names ...string) Fields {
	return Fields{kind: fieldsList, list: append([]string(nil), names...)}
}

// FieldString builds a mask from an already joined string such as "id, displayName".
func FieldString(s string) Fields {
	return Fields{kind: fieldsCSV, csv: s}
}

// IsSet reports whether the caller supplied a mask, even an empty one.
func (f Fields) IsSet() bool {
	return f.kind != fieldsAbsent
}

// NormalizeFields turns a mask into the value of the fields query parameter.
// An absent or blank mask becomes "*". All whitespace is removed and, when stripPrefix is
// set, every "places." occurrence is dropped.
func NormalizeFields(f Fields, stripPrefix bool) string {
	var joined string
	switch f.kind {
	case fieldsList:
		joined = strings.Join(f.list, ",")
	case fieldsCSV:
		joined = f.csv
	}

	joined = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, joined)
	if joined == "" {
		return wildcardFields
	}

	if stripPrefix {
		joined = strings.ReplaceAll(joined, placesPrefix, "")
	}
	return joined
}

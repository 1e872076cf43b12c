// Package rows splits raw CSV text into positional field values.
//
// The quoting rules are looser than RFC 4180: a double quote
// toggles quoted mode wherever it appears in a field, and "" inside a quoted
// span is a literal quote. Malformed quoting never fails; it only changes
// where fields end.
package rows

import (
	"strings"
	"unicode"
)

// Layout delimiters understood by Split.
const (
	Comma rune = ','
	Pipe  rune = '|'
)

// Row is one logical CSV line split into trimmed values.
type Row struct {
	Line   int      // 1-based physical line the row starts on
	Values []string // Field values in column order
}

// Value returns the value at position i, or "" when the row is shorter.
func (r Row) Value(i int) string {
	if i < 0 || i >= len(r.Values) {
		return ""
	}
	return r.Values[i]
}

// Split parses text into rows using delim as the field separator.
// Blank lines are dropped and the first non-blank line is treated as the
// header and never returned.
func Split(text string, delim rune) []Row {
	var (
		result   []Row
		fields   []string
		field    strings.Builder
		inQuotes bool
		blank    = true // no visible character seen on the current logical line
		line     = 1
		start    = 1
		header   = true
	)

	runes := []rune(text)

	endRecord := func() {
		fields = append(fields, strings.TrimSpace(field.String()))
		field.Reset()
		if !blank {
			if header {
				header = false
			} else {
				result = append(result, Row{Line: start, Values: fields})
			}
		}
		fields = nil
		blank = true
	}

	for i := 0; i < len(runes); i++ {
		c := runes[i]

		if c == '\n' {
			if inQuotes {
				field.WriteRune(c)
				line++
				continue
			}
			endRecord()
			line++
			start = line
			continue
		}

		if blank && !unicode.IsSpace(c) {
			blank = false
		}

		switch {
		case c == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				field.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == delim && !inQuotes:
			fields = append(fields, strings.TrimSpace(field.String()))
			field.Reset()
		case c == '\r' && !inQuotes && i+1 < len(runes) && runes[i+1] == '\n':
			// CRLF: the '\n' ends the record
		default:
			field.WriteRune(c)
		}
	}
	endRecord()

	return result
}

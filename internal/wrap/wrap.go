// Package wrap computes greedy word-wrap breaks for stored lines.
//
// Wrapping works on bytes: one byte is one column. The only break
// character is the ASCII space. Spaces at a break are consumed and never
// start a continuation row.
package wrap

import "errors"

// ErrColumns is returned when a wrap width below one column is requested.
var ErrColumns = errors.New("wrap: columns must be at least 1")

// Break performs one greedy wrap step over text starting at start.
//
// It returns end, one past the last byte printed on this row, and next,
// the offset where the following row begins. When the rest of text fits
// in columns, both are len(text). Otherwise the row ends at the last
// space at or before start+columns; if there is none the row is cut hard
// at start+columns. Spaces following end are skipped.
//
// columns must be at least 1.
func Break(text string, start, columns int) (end, next int) {
	n := len(text)
	if n-start <= columns {
		return n, n
	}

	// text[start+columns] is the first byte that does not fit. A space
	// there means the whole window fits.
	end = start + columns
	for end > start && text[end] != ' ' {
		end--
	}
	if end == start {
		end = start + columns
	}

	next = end
	for next < n && text[next] == ' ' {
		next++
	}
	return end, next
}

// Rows returns how many display rows text occupies at the given width.
// Empty text occupies one row.
func Rows(text string, columns int) (int, error) {
	if columns < 1 {
		return 0, ErrColumns
	}
	if len(text) == 0 {
		return 1, nil
	}

	rows := 0
	for start := 0; start < len(text); rows++ {
		_, start = Break(text, start, columns)
	}
	return rows, nil
}

// Segments returns the rows of text as rendered at the given width.
// Each segment is a substring of text.
func Segments(text string, columns int) ([]string, error) {
	if columns < 1 {
		return nil, ErrColumns
	}
	if len(text) == 0 {
		return []string{""}, nil
	}

	var segs []string
	for start := 0; start < len(text); {
		end, next := Break(text, start, columns)
		segs = append(segs, text[start:end])
		start = next
	}
	return segs, nil
}

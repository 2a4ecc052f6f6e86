package profiler

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// maxLineBytes bounds a single export line. Movie rows hold 131 numeric
// columns, so the scanner default of 64KiB is comfortably exceeded only by
// corrupt files.
const maxLineBytes = 1 << 20

// Line is one tokenized line of a profiler export.
type Line struct {
	// Index is the 0-based line number within the export.
	Index int
	// Raw is the line as read, without the line terminator.
	Raw string
	// Key is Raw with all whitespace removed and letters folded to lower
	// case. Section markers are matched against it so that spacing and
	// capitalisation drift between export versions does not matter.
	Key string
	// Fields are the whitespace-separated tokens of Raw.
	Fields []string
}

// Document is the tokenized form of a profiler export. Parsing of reference
// and movie sections works on this representation rather than on raw text.
type Document struct {
	Lines []Line
}

// Tokenize reads a whole export and splits it into lines and fields.
func Tokenize(r io.Reader) (*Document, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	doc := &Document{}
	for sc.Scan() {
		raw := sc.Text()
		doc.Lines = append(doc.Lines, Line{
			Index:  len(doc.Lines),
			Raw:    raw,
			Key:    normalizeKey(raw),
			Fields: strings.Fields(raw),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	return doc, nil
}

// Len returns the number of lines in the document.
func (d *Document) Len() int { return len(d.Lines) }

// Find returns the index of the first line whose key contains marker, also
// normalised. ok is false when no line matches.
func (d *Document) Find(marker string) (idx int, ok bool) {
	want := normalizeKey(marker)
	for i := range d.Lines {
		if strings.Contains(d.Lines[i].Key, want) {
			return i, true
		}
	}
	return -1, false
}

// Line returns the line at idx, or false if idx is outside the document.
func (d *Document) Line(idx int) (Line, bool) {
	if idx < 0 || idx >= len(d.Lines) {
		return Line{}, false
	}
	return d.Lines[idx], true
}

func normalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// parseLocaleFloat converts an export number. Exports use a comma as the
// decimal separator; a period is accepted too.
func parseLocaleFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
}

// parseColumns converts fields[start:stop] to floats.
func parseColumns(fields []string, start, stop int) ([]float64, error) {
	if len(fields) < stop {
		return nil, fmt.Errorf("row has %d columns, need at least %d", len(fields), stop)
	}
	out := make([]float64, 0, stop-start)
	for col := start; col < stop; col++ {
		v, err := parseLocaleFloat(fields[col])
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", col, err)
		}
		out = append(out, v)
	}
	return out, nil
}

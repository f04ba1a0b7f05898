package text

import (
	"errors"
	"sort"
)

// ErrIndexOutOfRange indicates a line index outside the document.
var ErrIndexOutOfRange = errors.New("text: line index out of range")

// Document owns the normalized stream and its wrapped lines for one
// chapter at one width. It is immutable after build; a width or chapter
// change means building a fresh Document.
type Document struct {
	stream []rune
	lines  []Line
	width  int
}

// BuildDocument normalizes chapter chunks and wraps them at width.
func BuildDocument(chunks []string, width int) (*Document, error) {
	stream, err := Normalize(chunks)
	if err != nil {
		return nil, err
	}
	return NewDocument(stream, width), nil
}

// NewDocument wraps an already-normalized stream at width.
func NewDocument(stream []rune, width int) *Document {
	return &Document{
		stream: stream,
		lines:  Wrap(stream, width),
		width:  width,
	}
}

// Stream returns the normalized rune stream.
func (d *Document) Stream() []rune { return d.stream }

// Len returns the stream length in runes.
func (d *Document) Len() int { return len(d.stream) }

// Width returns the wrap width the document was built at.
func (d *Document) Width() int { return d.width }

// LineCount returns the number of display lines; always >= 1.
func (d *Document) LineCount() int { return len(d.lines) }

// LineAt returns line i.
func (d *Document) LineAt(i int) (Line, error) {
	if i < 0 || i >= len(d.lines) {
		return Line{}, ErrIndexOutOfRange
	}
	return d.lines[i], nil
}

// Lines returns the line slice for a half-open index range, clamped to
// the document.
func (d *Document) Lines(first, end int) []Line {
	if first < 0 {
		first = 0
	}
	if end > len(d.lines) {
		end = len(d.lines)
	}
	if first >= end {
		return nil
	}
	return d.lines[first:end]
}

// LineForPos returns the index of the line containing stream position
// pos, via binary search over line start offsets. A position at the end
// of the stream maps to the last line.
func (d *Document) LineForPos(pos int) int {
	idx := sort.Search(len(d.lines), func(i int) bool {
		return d.lines[i].End > pos
	})
	if idx >= len(d.lines) {
		return len(d.lines) - 1
	}
	return idx
}

// LineRunes returns the runes of line i, without trailing space or
// break positions.
func (d *Document) LineRunes(i int) []rune {
	if i < 0 || i >= len(d.lines) {
		return nil
	}
	l := d.lines[i]
	return d.stream[l.Start:l.trimmedEnd(d.stream)]
}

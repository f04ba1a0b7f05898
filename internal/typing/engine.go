// Package typing implements the keystroke-matching state machine.
package typing

import (
	"errors"

	"github.com/verte-zerg/typepub/internal/text"
)

// Status is the typing outcome recorded for one stream position.
type Status uint8

// Status values. Every position starts Pending; backspace returns a
// position to Pending, so Correct and Incorrect never transition into
// each other directly.
const (
	Pending Status = iota
	Correct
	Incorrect
)

// Benign boundary conditions: typing past the end of the stream or
// backspacing at the start. Callers treat these as no-ops.
var (
	ErrAtEnd   = errors.New("typing: cursor at end of text")
	ErrAtStart = errors.New("typing: cursor at start of text")
)

// Cell pairs a stream rune with its current status, for rendering.
type Cell struct {
	Rune   rune
	Status Status
}

// Engine tracks per-position match status and the cursor for one
// document stream. It is the only writer of both.
type Engine struct {
	stream    []rune
	status    []Status
	cursor    int
	correct   int
	incorrect int
}

// NewEngine creates an engine over a normalized stream with every
// position Pending and the cursor at 0.
func NewEngine(stream []rune) *Engine {
	return &Engine{
		stream: stream,
		status: make([]Status, len(stream)),
	}
}

// Len returns the stream length.
func (e *Engine) Len() int { return len(e.stream) }

// Cursor returns the stream position the user must type next.
func (e *Engine) Cursor() int { return e.cursor }

// Done reports whether every position has been typed.
func (e *Engine) Done() bool { return e.cursor == len(e.stream) }

// TypeRune records a keystroke against the expected rune at the cursor
// and advances. A ParagraphBreak position accepts only enter as
// Correct; any other rune is Incorrect but still advances, so the user
// is never stuck on a break. Returns ErrAtEnd past the last position.
func (e *Engine) TypeRune(r rune) error {
	if e.cursor >= len(e.stream) {
		return ErrAtEnd
	}
	expected := e.stream[e.cursor]
	st := Incorrect
	if expected == text.ParagraphBreak {
		if r == '\n' {
			st = Correct
		}
	} else if runesMatch(expected, r) {
		st = Correct
	}
	e.status[e.cursor] = st
	if st == Correct {
		e.correct++
	} else {
		e.incorrect++
	}
	e.cursor++
	return nil
}

// Backspace moves the cursor back one position and returns it to
// Pending. Returns ErrAtStart at position 0.
func (e *Engine) Backspace() error {
	if e.cursor == 0 {
		return ErrAtStart
	}
	e.cursor--
	switch e.status[e.cursor] {
	case Correct:
		e.correct--
	case Incorrect:
		e.incorrect--
	}
	e.status[e.cursor] = Pending
	return nil
}

// BackspaceWord deletes back through any trailing separators, then the
// preceding word.
func (e *Engine) BackspaceWord() {
	for e.cursor > 0 && isWordSep(e.stream[e.cursor-1]) {
		_ = e.Backspace()
	}
	for e.cursor > 0 && !isWordSep(e.stream[e.cursor-1]) {
		_ = e.Backspace()
	}
}

// StatusAt returns the status recorded for a stream position.
func (e *Engine) StatusAt(pos int) Status {
	if pos < 0 || pos >= len(e.status) {
		return Pending
	}
	return e.status[pos]
}

// VisibleRange projects the given document lines into (rune, status)
// cells for rendering. It never mutates engine state.
func (e *Engine) VisibleRange(lines []text.Line) []Cell {
	var cells []Cell
	for _, l := range lines {
		for p := l.Start; p < l.End; p++ {
			cells = append(cells, Cell{Rune: e.stream[p], Status: e.status[p]})
		}
	}
	return cells
}

// Progress returns the typed, correct, and incorrect counts. Counters
// are maintained incrementally and adjusted symmetrically on backspace.
func (e *Engine) Progress() (typed, correct, incorrect int) {
	return e.cursor, e.correct, e.incorrect
}

// Reset returns every position to Pending and the cursor to 0.
func (e *Engine) Reset() {
	for i := range e.status {
		e.status[i] = Pending
	}
	e.cursor = 0
	e.correct = 0
	e.incorrect = 0
}

func isWordSep(r rune) bool {
	return r == ' ' || r == text.ParagraphBreak
}

// runesMatch compares a typed rune against the expected one, accepting
// plain-keyboard stand-ins for typographic characters.
func runesMatch(expected, typed rune) bool {
	switch typed {
	case '\'':
		if expected == '‘' || expected == '’' {
			return true
		}
	case '"':
		if expected == '“' || expected == '”' {
			return true
		}
	case ' ':
		if expected == ' ' {
			return true
		}
	}
	return expected == typed
}

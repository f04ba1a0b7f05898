// Package text turns raw chapter chunks into a wrapped, indexable document.
package text

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

// ParagraphBreak marks a forced line end in the normalized stream. It
// occupies one stream position but is never typed directly; the engine
// accepts enter for it.
const ParagraphBreak = '\n'

// ErrDecode indicates malformed text encoding in a chapter chunk.
var ErrDecode = errors.New("text: malformed encoding")

// replacements rewrites typographic characters that have no key on a
// regular keyboard into typeable sequences.
var replacements = map[rune]string{
	'—': "--",    // em dash
	'…': " ... ", // ellipsis
}

// Normalize flattens chapter chunks into a single rune stream. Each
// chunk is one paragraph: whitespace runs inside a chunk collapse to a
// single space, non-printable runes are dropped, and chunk boundaries
// become ParagraphBreak positions. Empty chunks produce no break.
func Normalize(chunks []string) ([]rune, error) {
	var out []rune
	for _, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			return nil, ErrDecode
		}
		body := normalizeChunk(chunk)
		if len(body) == 0 {
			continue
		}
		if len(out) > 0 {
			out = append(out, ParagraphBreak)
		}
		out = append(out, body...)
	}
	return out, nil
}

func normalizeChunk(chunk string) []rune {
	var out []rune
	pendingSpace := false
	for _, r := range chunk {
		if rep, ok := replacements[r]; ok {
			for _, rr := range rep {
				out, pendingSpace = appendRune(out, rr, pendingSpace)
			}
			continue
		}
		out, pendingSpace = appendRune(out, r, pendingSpace)
	}
	return out
}

// appendRune applies whitespace collapsing and printability filtering
// for a single rune. A space is only emitted once a printable rune
// follows it, which trims the chunk's leading and trailing whitespace.
func appendRune(out []rune, r rune, pendingSpace bool) ([]rune, bool) {
	if unicode.IsSpace(r) {
		return out, len(out) > 0
	}
	if !unicode.IsPrint(r) {
		return out, pendingSpace
	}
	if pendingSpace {
		out = append(out, ' ')
	}
	return append(out, r), false
}

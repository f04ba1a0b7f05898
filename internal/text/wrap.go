package text

import "github.com/mattn/go-runewidth"

// Line is a half-open range [Start, End) of stream positions making up
// one display line. A trailing space or ParagraphBreak that terminates
// the line is included in the range but carries no rendered width.
type Line struct {
	Start int
	End   int
}

// Wrap splits the stream into display lines using greedy word-wrap.
// Words move to the next line when their rendered width would overflow;
// a single word wider than width is hard-split at the width boundary.
// A ParagraphBreak force-closes the current line. The produced lines
// partition [0, len(stream)) and an empty stream yields one empty line.
func Wrap(stream []rune, width int) []Line {
	if width < 1 {
		width = 1
	}
	var lines []Line
	start := 0
	lineWidth := 0
	i := 0
	for i < len(stream) {
		switch r := stream[i]; {
		case r == ParagraphBreak:
			lines = append(lines, Line{Start: start, End: i + 1})
			i++
			start = i
			lineWidth = 0
		case r == ' ':
			lineWidth++
			i++
		default:
			j := i
			wordWidth := 0
			for j < len(stream) && stream[j] != ' ' && stream[j] != ParagraphBreak {
				wordWidth += runewidth.RuneWidth(stream[j])
				j++
			}
			if lineWidth > 0 && lineWidth+wordWidth > width {
				lines = append(lines, Line{Start: start, End: i})
				start = i
				lineWidth = 0
			}
			if wordWidth > width {
				i, start, lineWidth, lines = splitWord(stream, i, j, start, width, lines)
				continue
			}
			lineWidth += wordWidth
			i = j
		}
	}
	return append(lines, Line{Start: start, End: len(stream)})
}

// splitWord hard-splits stream[i:j] across lines at the width boundary.
func splitWord(stream []rune, i, j, start, width int, lines []Line) (int, int, int, []Line) {
	lineWidth := 0
	for i < j {
		w := runewidth.RuneWidth(stream[i])
		if lineWidth > 0 && lineWidth+w > width {
			lines = append(lines, Line{Start: start, End: i})
			start = i
			lineWidth = 0
		}
		lineWidth += w
		i++
	}
	return i, start, lineWidth, lines
}

// RenderWidth is the display width of the line, excluding a trailing
// space or ParagraphBreak.
func (l Line) RenderWidth(stream []rune) int {
	total := 0
	for p := l.Start; p < l.trimmedEnd(stream); p++ {
		total += runewidth.RuneWidth(stream[p])
	}
	return total
}

func (l Line) trimmedEnd(stream []rune) int {
	end := l.End
	for end > l.Start && (stream[end-1] == ' ' || stream[end-1] == ParagraphBreak) {
		end--
	}
	return end
}

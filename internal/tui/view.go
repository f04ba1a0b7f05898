package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	statsPkg "github.com/verte-zerg/typepub/internal/stats"
	"github.com/verte-zerg/typepub/internal/text"
	"github.com/verte-zerg/typepub/internal/typing"
)

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	breakStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// wrongSpaceMark replaces a space that was typed as something else.
const wrongSpaceMark = '•'

// breakMark shows where enter moves to the next paragraph.
const breakMark = '¶'

// View implements tea.Model.
func (m *Model) View() string {
	if m.mode == modePicker {
		return m.renderHeader() + "\n" + m.picker.view()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')

	first, end := m.win.Range(m.doc.LineCount())
	for i := first; i < end; i++ {
		b.WriteString(m.renderLine(i))
		b.WriteByte('\n')
	}
	for i := end - first; i < m.bodyHeight(); i++ {
		b.WriteByte('\n')
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderHeader() string {
	title := m.book.Metadata().Title
	if ch := m.book.ChapterTitle(m.chapterIdx); ch != "" {
		title += " · " + ch
	}
	if m.width > 0 {
		title = truncate.StringWithTail(title, uint(m.width), "…")
	}
	return headerStyle.Render(title)
}

// renderLine styles one wrapped line by match status. The trailing
// space of a line is drawn only when it carries information: a wrong
// keystroke or the cursor. Paragraph ends always show the break mark.
func (m *Model) renderLine(i int) string {
	line, err := m.doc.LineAt(i)
	if err != nil {
		return ""
	}
	content := m.doc.LineRunes(i)
	cursor := m.engine.Cursor()

	var b strings.Builder
	for off, r := range content {
		pos := line.Start + off
		b.WriteString(m.renderCell(pos, r, cursor))
	}

	termPos := line.Start + len(content)
	if termPos < line.End {
		term := m.doc.Stream()[line.End-1]
		switch {
		case term == text.ParagraphBreak:
			b.WriteString(m.renderCell(line.End-1, breakMark, cursor))
		case m.engine.StatusAt(line.End-1) == typing.Incorrect:
			b.WriteString(m.renderCell(line.End-1, wrongSpaceMark, cursor))
		case line.End-1 == cursor:
			b.WriteString(m.renderCell(line.End-1, ' ', cursor))
		}
	}
	return b.String()
}

func (m *Model) renderCell(pos int, displayed rune, cursor int) string {
	var style lipgloss.Style
	switch m.engine.StatusAt(pos) {
	case typing.Correct:
		style = correctStyle
	case typing.Incorrect:
		style = incorrectStyle
		if m.doc.Stream()[pos] == ' ' {
			displayed = wrongSpaceMark
		}
	default:
		style = pendingStyle
		if displayed == breakMark {
			style = breakStyle
		}
	}
	if pos == cursor {
		style = style.Underline(true)
	}
	return style.Render(string(displayed))
}

func (m *Model) renderFooter() string {
	typed, correct, incorrect := m.engine.Progress()
	total := m.engine.Len()

	progress := 100
	if total > 0 {
		progress = typed * 100 / total
	}

	segments := []string{fmt.Sprintf("%d%%", progress)}
	if elapsed := m.sessionElapsedMs(); elapsed > 0 {
		wpm, _, acc := statsPkg.SessionMetrics(correct, incorrect, elapsed)
		segments = append(segments, fmt.Sprintf("%.1f WPM", wpm), fmt.Sprintf("%.1f%% acc", acc*100))
	}
	segments = append(segments, fmt.Sprintf("ch %d/%d", m.chapterIdx+1, len(m.chapters)))
	if m.engine.Done() {
		segments = append(segments, "complete · enter for next chapter")
	}

	footer := strings.Join(segments, " · ")
	if m.width > 0 {
		footer = truncate.StringWithTail(footer, uint(m.width), "…")
	}
	return footerStyle.Render(footer)
}

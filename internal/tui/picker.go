package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	bviewport "github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typepub/internal/epub"
)

var pickerSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))

// pickerModel is the chapter selection overlay. A text input filters
// chapter titles; the list scrolls inside a viewport.
type pickerModel struct {
	input    textinput.Model
	list     bviewport.Model
	chapters []epub.Chapter
	filtered []int
	cursor   int
}

func newPicker(chapters []epub.Chapter) pickerModel {
	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "filter chapters"
	input.Focus()

	p := pickerModel{
		input:    input,
		list:     bviewport.New(0, 1),
		chapters: chapters,
	}
	p.refilter()
	return p
}

// open resets the filter and moves the cursor to the current chapter.
func (p *pickerModel) open(current int) {
	p.input.SetValue("")
	p.input.Focus()
	p.refilter()
	for i, idx := range p.filtered {
		if idx == current {
			p.cursor = i
			break
		}
	}
	p.sync()
}

func (p *pickerModel) resize(width, height int) {
	if height < 1 {
		height = 1
	}
	// One row is taken by the filter input.
	listHeight := height - 1
	if listHeight < 1 {
		listHeight = 1
	}
	p.list.Width = width
	p.list.Height = listHeight
	p.input.Width = width
	p.sync()
}

func (p *pickerModel) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyUp, tea.KeyCtrlP:
		if p.cursor > 0 {
			p.cursor--
		}
		p.sync()
		return nil
	case tea.KeyDown, tea.KeyCtrlN:
		if p.cursor+1 < len(p.filtered) {
			p.cursor++
		}
		p.sync()
		return nil
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.refilter()
	p.sync()
	return cmd
}

// selected returns the chapter index under the cursor.
func (p *pickerModel) selected() (int, bool) {
	if p.cursor < 0 || p.cursor >= len(p.filtered) {
		return 0, false
	}
	return p.filtered[p.cursor], true
}

// refilter recomputes the visible chapters from the filter text.
func (p *pickerModel) refilter() {
	query := strings.ToLower(strings.TrimSpace(p.input.Value()))
	p.filtered = p.filtered[:0]
	for i, ch := range p.chapters {
		if query == "" || strings.Contains(strings.ToLower(ch.Title), query) {
			p.filtered = append(p.filtered, i)
		}
	}
	if p.cursor >= len(p.filtered) {
		p.cursor = len(p.filtered) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

// sync rebuilds the viewport content and keeps the cursor row visible.
func (p *pickerModel) sync() {
	lines := make([]string, 0, len(p.filtered))
	for i, idx := range p.filtered {
		line := fmt.Sprintf("%3d  %s", idx+1, p.chapters[idx].Title)
		if i == p.cursor {
			line = pickerSelectedStyle.Render(line)
		} else {
			line = pendingStyle.Render(line)
		}
		lines = append(lines, line)
	}
	p.list.SetContent(strings.Join(lines, "\n"))

	if p.list.Height > 0 {
		if p.cursor < p.list.YOffset {
			p.list.SetYOffset(p.cursor)
		}
		if p.cursor >= p.list.YOffset+p.list.Height {
			p.list.SetYOffset(p.cursor - p.list.Height + 1)
		}
	}
}

func (p *pickerModel) view() string {
	if len(p.filtered) == 0 {
		return p.input.View() + "\n" + pendingStyle.Render("no matching chapters")
	}
	return p.input.View() + "\n" + p.list.View()
}

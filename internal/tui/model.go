// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typepub/internal/epub"
	"github.com/verte-zerg/typepub/internal/model"
	"github.com/verte-zerg/typepub/internal/text"
	"github.com/verte-zerg/typepub/internal/typing"
	"github.com/verte-zerg/typepub/internal/viewport"
)

type mode int

const (
	modeTyping mode = iota
	modePicker
)

// reservedRows is the screen space taken by the header and footer.
const reservedRows = 2

// Model implements the Bubble Tea typing UI over one open book.
type Model struct {
	config   model.Config
	book     *epub.Book
	chapters []epub.Chapter

	mode   mode
	picker pickerModel

	chapterIdx int
	chunks     []string
	doc        *text.Document
	engine     *typing.Engine
	win        viewport.Window

	width    int
	height   int
	effWidth int

	started   bool
	startedAt time.Time
	elapsedMs int64
}

// NewModel constructs the typing TUI for a book, starting at the given
// chapter.
func NewModel(cfg model.Config, book *epub.Book) (*Model, error) {
	chapters := book.Chapters()
	if len(chapters) == 0 {
		return nil, fmt.Errorf("tui: book has no chapters")
	}
	idx := cfg.Chapter
	pickFirst := idx < 0 || idx >= len(chapters)
	if pickFirst {
		idx = 0
	}
	m := &Model{
		config:   cfg,
		book:     book,
		chapters: chapters,
		picker:   newPicker(chapters),
		effWidth: cfg.Width,
		win:      viewport.New(1),
	}
	if err := m.loadChapter(idx); err != nil {
		return nil, err
	}
	if pickFirst {
		m.picker.open(idx)
		m.mode = modePicker
	}
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applySize()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.mode == modePicker {
			return m.updatePicker(msg)
		}
		return m.updateTyping(msg)
	default:
		return m, nil
	}
}

func (m *Model) updateTyping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.picker.open(m.chapterIdx)
		m.mode = modePicker
	case tea.KeyBackspace, tea.KeyDelete:
		if err := m.engine.Backspace(); err != nil {
			// Already at the start, nothing to undo.
			_ = err
		}
	case tea.KeyCtrlW:
		m.engine.BackspaceWord()
	case tea.KeyEnter:
		if m.engine.Done() {
			m.nextChapter()
			return m, nil
		}
		m.typeRune(text.ParagraphBreak)
	case tea.KeySpace:
		m.typeRune(' ')
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			m.typeRune(r)
		}
	}
	m.followCursor()
	return m, nil
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeTyping
		return m, nil
	case tea.KeyEnter:
		if idx, ok := m.picker.selected(); ok {
			if err := m.loadChapter(idx); err != nil {
				logErrf("failed to load chapter: %v\n", err)
			}
			m.mode = modeTyping
		}
		return m, nil
	}
	cmd := m.picker.update(msg)
	return m, cmd
}

func (m *Model) typeRune(r rune) {
	if m.engine.Done() {
		return
	}
	if !m.started {
		m.started = true
		m.startedAt = time.Now()
	}
	if err := m.engine.TypeRune(r); err != nil {
		// End of chapter, the keystroke is dropped.
		_ = err
	}
	if m.engine.Done() {
		m.elapsedMs = time.Since(m.startedAt).Milliseconds()
	}
}

// applySize recomputes the wrap width and window height after a
// terminal resize. A changed wrap width rebuilds the document and
// restarts the chapter; match outcomes are positions in the rewrapped
// stream, and a stale mapping would misattribute them.
func (m *Model) applySize() {
	m.win = m.win.Resize(m.bodyHeight())
	m.picker.resize(m.width, m.bodyHeight())

	eff := m.config.Width
	if m.width > 0 && m.width-2 < eff {
		eff = m.width - 2
	}
	if eff < 1 {
		eff = 1
	}
	if eff != m.effWidth {
		m.effWidth = eff
		m.rebuild()
	}
	m.followCursor()
}

func (m *Model) bodyHeight() int {
	h := m.height - reservedRows
	if h < 1 {
		h = 1
	}
	return h
}

// loadChapter extracts and prepares chapter idx for typing.
func (m *Model) loadChapter(idx int) error {
	chunks, err := m.book.ChapterChunks(idx)
	if err != nil {
		return err
	}
	m.chapterIdx = idx
	m.chunks = chunks
	m.rebuild()
	return nil
}

// rebuild rewraps the cached chunks at the current width and resets
// the session.
func (m *Model) rebuild() {
	doc, err := text.BuildDocument(m.chunks, m.effWidth)
	if err != nil {
		logErrf("failed to prepare chapter text: %v\n", err)
		doc = text.NewDocument(nil, m.effWidth)
	}
	m.doc = doc
	m.engine = typing.NewEngine(doc.Stream())
	m.win = viewport.New(m.bodyHeight())
	m.started = false
	m.startedAt = time.Time{}
	m.elapsedMs = 0
}

func (m *Model) nextChapter() {
	if m.chapterIdx+1 >= len(m.chapters) {
		return
	}
	if err := m.loadChapter(m.chapterIdx + 1); err != nil {
		logErrf("failed to load chapter: %v\n", err)
	}
}

func (m *Model) followCursor() {
	if m.doc == nil {
		return
	}
	line := m.doc.LineForPos(m.engine.Cursor())
	m.win = m.win.Follow(line, m.doc.LineCount())
}

func (m *Model) sessionElapsedMs() int64 {
	if !m.started {
		return 0
	}
	if m.engine.Done() {
		return m.elapsedMs
	}
	return time.Since(m.startedAt).Milliseconds()
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

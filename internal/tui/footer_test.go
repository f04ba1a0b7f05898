package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/typepub/internal/epub"
	"github.com/verte-zerg/typepub/internal/text"
	"github.com/verte-zerg/typepub/internal/typing"
	"github.com/verte-zerg/typepub/internal/viewport"
)

func testModel(t *testing.T, chunks []string, width int) *Model {
	t.Helper()
	doc, err := text.BuildDocument(chunks, width)
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}
	return &Model{
		chapters: make([]epub.Chapter, 3),
		doc:      doc,
		engine:   typing.NewEngine(doc.Stream()),
		win:      viewport.New(10),
		effWidth: width,
	}
}

func TestRenderFooterFormats(t *testing.T) {
	m := testModel(t, []string{"abcd"}, 60)
	_ = m.engine.TypeRune('a')
	_ = m.engine.TypeRune('x')
	m.started = true
	m.elapsedMs = 60000

	out := m.renderFooter()
	if out == "" {
		t.Fatalf("expected footer output")
	}
	if !strings.Contains(out, "50%") {
		t.Fatalf("footer missing progress: %s", out)
	}
	if !strings.Contains(out, "ch 1/3") {
		t.Fatalf("footer missing chapter position: %s", out)
	}
}

func TestRenderFooterComplete(t *testing.T) {
	m := testModel(t, []string{"ab"}, 60)
	m.started = true
	_ = m.engine.TypeRune('a')
	_ = m.engine.TypeRune('b')
	m.elapsedMs = 1000

	out := m.renderFooter()
	if !strings.Contains(out, "100%") {
		t.Fatalf("footer missing completion: %s", out)
	}
	if !strings.Contains(out, "enter for next chapter") {
		t.Fatalf("footer missing next-chapter hint: %s", out)
	}
}

func TestRenderLineShowsBreakMark(t *testing.T) {
	m := testModel(t, []string{"ab", "cd"}, 60)
	out := m.renderLine(0)
	if !strings.Contains(out, "ab") {
		t.Fatalf("line missing content: %q", out)
	}
	if !strings.ContainsRune(out, breakMark) {
		t.Fatalf("paragraph line missing break mark: %q", out)
	}
}

func TestRenderLineMarksWrongSpace(t *testing.T) {
	m := testModel(t, []string{"a b"}, 60)
	_ = m.engine.TypeRune('a')
	_ = m.engine.TypeRune('x')
	out := m.renderLine(0)
	if !strings.ContainsRune(out, wrongSpaceMark) {
		t.Fatalf("expected wrong-space mark in %q", out)
	}
}

func TestPickerFilter(t *testing.T) {
	chapters := []epub.Chapter{
		{Title: "Loomings"},
		{Title: "The Carpet-Bag"},
		{Title: "The Spouter-Inn"},
	}
	p := newPicker(chapters)
	if len(p.filtered) != 3 {
		t.Fatalf("expected all chapters before filtering, got %d", len(p.filtered))
	}

	p.input.SetValue("the")
	p.refilter()
	if len(p.filtered) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(p.filtered))
	}
	if idx, ok := p.selected(); !ok || idx != 1 {
		t.Fatalf("expected first match at chapter 1, got %d (%v)", idx, ok)
	}
}

package viewport

import "testing"

func TestFollowScrollsForwardMinimally(t *testing.T) {
	w := Window{Top: 3, Height: 3} // visible [3,6)
	w = w.Follow(6, 10)
	if w.Top != 4 {
		t.Fatalf("expected top 4, got %d", w.Top)
	}
	if first, end := w.Range(10); first != 4 || end != 7 {
		t.Fatalf("expected window [4,7), got [%d,%d)", first, end)
	}
}

func TestFollowScrollsBackwardMinimally(t *testing.T) {
	w := Window{Top: 5, Height: 3}
	w = w.Follow(4, 10)
	if w.Top != 4 {
		t.Fatalf("expected top 4, got %d", w.Top)
	}
}

func TestFollowKeepsCursorInsideWindow(t *testing.T) {
	w := Window{Top: 2, Height: 3}
	w = w.Follow(3, 10)
	if w.Top != 2 {
		t.Fatalf("expected no scroll, got top %d", w.Top)
	}
}

func TestFollowJumpFar(t *testing.T) {
	w := Window{Top: 0, Height: 5}
	w = w.Follow(42, 100)
	if w.Top != 38 {
		t.Fatalf("expected top 38, got %d", w.Top)
	}
}

func TestFollowClampsToDocument(t *testing.T) {
	w := Window{Top: 8, Height: 5}
	w = w.Follow(9, 10)
	if w.Top != 5 {
		t.Fatalf("expected top clamped to 5, got %d", w.Top)
	}
	w = New(5)
	w = w.Follow(0, 2)
	if first, end := w.Range(2); first != 0 || end != 2 {
		t.Fatalf("expected window [0,2), got [%d,%d)", first, end)
	}
}

func TestFollowShortDocument(t *testing.T) {
	w := New(10)
	w = w.Follow(0, 1)
	if w.Top != 0 {
		t.Fatalf("expected top 0, got %d", w.Top)
	}
}

// Package viewport decides which wrapped lines are visible.
package viewport

// Window is a half-open range of visible line indices, [Top, Top+Height).
type Window struct {
	Top    int
	Height int
}

// New creates a window anchored at the first line.
func New(height int) Window {
	if height < 1 {
		height = 1
	}
	return Window{Top: 0, Height: height}
}

// Resize returns the window with a new height, keeping Top in place.
// The caller should Follow afterwards to keep the cursor visible.
func (w Window) Resize(height int) Window {
	if height < 1 {
		height = 1
	}
	w.Height = height
	return w
}

// Follow returns the window adjusted so cursorLine is visible, scrolled
// by the minimum amount and never re-centered. The result stays within
// [0, totalLines).
func (w Window) Follow(cursorLine, totalLines int) Window {
	if totalLines < 1 {
		totalLines = 1
	}
	if cursorLine < 0 {
		cursorLine = 0
	}
	if cursorLine >= totalLines {
		cursorLine = totalLines - 1
	}
	if cursorLine < w.Top {
		w.Top = cursorLine
	}
	if cursorLine >= w.Top+w.Height {
		w.Top = cursorLine - w.Height + 1
	}
	maxTop := totalLines - w.Height
	if maxTop < 0 {
		maxTop = 0
	}
	if w.Top > maxTop {
		w.Top = maxTop
	}
	if w.Top < 0 {
		w.Top = 0
	}
	return w
}

// Range returns the visible half-open line index range clamped to
// totalLines.
func (w Window) Range(totalLines int) (first, end int) {
	first = w.Top
	end = w.Top + w.Height
	if end > totalLines {
		end = totalLines
	}
	if first > end {
		first = end
	}
	return first, end
}

package stats

import (
	"math"
	"testing"
)

func TestSessionMetrics(t *testing.T) {
	// 300 correct chars in one minute = 60 WPM, 300 CPM.
	wpm, cpm, acc := SessionMetrics(300, 100, 60000)
	if math.Abs(wpm-60) > 1e-9 {
		t.Fatalf("expected 60 WPM, got %f", wpm)
	}
	if math.Abs(cpm-300) > 1e-9 {
		t.Fatalf("expected 300 CPM, got %f", cpm)
	}
	if math.Abs(acc-0.75) > 1e-9 {
		t.Fatalf("expected 0.75 accuracy, got %f", acc)
	}
}

func TestSessionMetricsZeroDuration(t *testing.T) {
	wpm, cpm, acc := SessionMetrics(100, 0, 0)
	if wpm != 0 || cpm != 0 || acc != 0 {
		t.Fatalf("expected zeros, got %f/%f/%f", wpm, cpm, acc)
	}
}

func TestSessionMetricsNoKeystrokes(t *testing.T) {
	_, _, acc := SessionMetrics(0, 0, 60000)
	if acc != 0 {
		t.Fatalf("expected zero accuracy, got %f", acc)
	}
}

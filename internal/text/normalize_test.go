package text

import (
	"errors"
	"testing"
)

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	stream, err := Normalize([]string{"  a\t\tb \n c  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(stream) != "a b c" {
		t.Fatalf("unexpected stream: %q", string(stream))
	}
}

func TestNormalizeParagraphBreaks(t *testing.T) {
	stream, err := Normalize([]string{"one", "two"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(stream) != "one\ntwo" {
		t.Fatalf("unexpected stream: %q", string(stream))
	}
}

func TestNormalizeSkipsEmptyChunks(t *testing.T) {
	stream, err := Normalize([]string{"", "  ", "one", "\t", "two", ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(stream) != "one\ntwo" {
		t.Fatalf("unexpected stream: %q", string(stream))
	}
}

func TestNormalizeReplacesTypographicRunes(t *testing.T) {
	stream, err := Normalize([]string{"wait—no… stop"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(stream) != "wait--no ... stop" {
		t.Fatalf("unexpected stream: %q", string(stream))
	}
}

func TestNormalizeStripsNonPrintable(t *testing.T) {
	stream, err := Normalize([]string{"a\x00b\x07c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(stream) != "abc" {
		t.Fatalf("unexpected stream: %q", string(stream))
	}
}

func TestNormalizeRejectsMalformedEncoding(t *testing.T) {
	if _, err := Normalize([]string{"ok", "bad\xff\xfe"}); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	stream, err := Normalize(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stream) != 0 {
		t.Fatalf("expected empty stream, got %q", string(stream))
	}
}

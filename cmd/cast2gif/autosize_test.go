package main

import (
	"strings"
	"testing"
)

// TestMeasureSize verifies the unbounded measuring pass: printed extents
// and line feeds grow the size, cursor positioning alone does not
func TestMeasureSize(t *testing.T) {
	tests := []struct {
		input    string
		wantCols int
		wantRows int
	}{
		{"hello", 5, 1},
		{"ab\r\ncd", 2, 2},
		{"ab\r\ncd\r\n", 2, 3},
		{"\x1b[10;40Hx", 40, 10},
		{"\x1b[10;40H", 1, 1},
		{strings.Repeat("x", 200), 200, 1},
		{"a\tb", 9, 1},
		{"", 1, 1},
		{"a\n\n\nb", 2, 4},
		{"abc\x1b[2Jx", 3, 1},
		{"\x1bM\x1bMx", 1, 1},
		{"abc\x1b[9Dx", 3, 1},
	}
	for _, tt := range tests {
		events := []CastEvent{{Time: 0, Stream: "o", Data: tt.input}}
		cols, rows := MeasureSize(NewParser(nil), events)
		if cols != tt.wantCols || rows != tt.wantRows {
			t.Errorf("MeasureSize(%q) = %dx%d, want %dx%d", tt.input, cols, rows, tt.wantCols, tt.wantRows)
		}
	}
}

// TestMeasureSizeNoEvents verifies an empty recording measures one cell
func TestMeasureSizeNoEvents(t *testing.T) {
	cols, rows := MeasureSize(NewParser(nil), nil)
	if cols != 1 || rows != 1 {
		t.Errorf("MeasureSize(nil) = %dx%d, want 1x1", cols, rows)
	}
}

// TestMeasureSizeIgnoresInput verifies input events do not contribute to
// the measured size
func TestMeasureSizeIgnoresInput(t *testing.T) {
	events := []CastEvent{
		{Time: 0, Stream: "i", Data: "very long input line that must not count"},
		{Time: 0.1, Stream: "o", Data: "ab"},
	}
	cols, rows := MeasureSize(NewParser(nil), events)
	if cols != 2 || rows != 1 {
		t.Errorf("MeasureSize = %dx%d, want 2x1", cols, rows)
	}
}

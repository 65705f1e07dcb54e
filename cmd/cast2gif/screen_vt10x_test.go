package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/hinshun/vt10x"
)

// vtRowText renders one row of a vt10x terminal as a string, blanks as
// spaces.
func vtRowText(vt vt10x.Terminal, row, width int) string {
	var b strings.Builder
	for col := 0; col < width; col++ {
		ch := vt.Cell(col, row).Char
		if ch == 0 {
			ch = ' '
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// TestScreenMatchesVT10X cross-checks the screen model against the vt10x
// emulator: identical input must leave identical text and cursor position.
// Inputs steer clear of the few places the models legitimately differ
// (vt10x defers the wrap at the last column until the next print, and
// its erase-display does not home the cursor).
func TestScreenMatchesVT10X(t *testing.T) {
	const width, height = 80, 24

	inputs := []string{
		"hello\r\nworld",
		strings.Repeat("x", 85),
		"abc\x1b[2;1Hdef\x1b[1;2Hz",
		"hello\x1b[1;3H\x1b[K",
		"a\r\nb\x1b[2J\x1b[H",
		"aaaa\rbb",
		"a\tb\tc",
		"héllo",
		"abc\bX",
		"one\r\ntwo\r\nthree\x1b[1;2r\x1b[2;1H\nX\x1b[H",
	}
	// a long scrolling stream
	var scroll strings.Builder
	for i := 0; i < 30; i++ {
		if i > 0 {
			scroll.WriteString("\r\n")
		}
		fmt.Fprintf(&scroll, "line %d", i)
	}
	inputs = append(inputs, scroll.String())

	for _, input := range inputs {
		s := NewScreen(width, height)
		feedScreen(s, input)
		st := s.Snapshot()

		vt := vt10x.New(vt10x.WithSize(width, height))
		vt.Write([]byte(input))

		for row := 0; row < height; row++ {
			mine := rowText(st, row)
			theirs := vtRowText(vt, row, width)
			if mine != theirs {
				t.Errorf("input %q row %d:\n  screen: %q\n  vt10x:  %q", input, row, mine, theirs)
			}
		}
		c := vt.Cursor()
		if st.Cursor.Row != c.Y || st.Cursor.Col != c.X {
			t.Errorf("input %q cursor = (%d,%d), vt10x has (%d,%d)",
				input, st.Cursor.Row, st.Cursor.Col, c.Y, c.X)
		}
	}
}

// TestScreenColorsMatchVT10X cross-checks palette foregrounds cell by
// cell against vt10x on a colored line
func TestScreenColorsMatchVT10X(t *testing.T) {
	const width, height = 80, 24
	input := "\x1b[31mab\x1b[0mc\x1b[44m  "

	s := NewScreen(width, height)
	feedScreen(s, input)
	st := s.Snapshot()

	vt := vt10x.New(vt10x.WithSize(width, height))
	vt.Write([]byte(input))

	for col := 0; col < 5; col++ {
		mine := st.Cell(0, col)
		theirs := vt.Cell(col, 0)

		if theirs.FG == vt10x.DefaultFG {
			if mine.FG.Kind != ColorDefault {
				t.Errorf("col %d FG = %+v, vt10x has default", col, mine.FG)
			}
		} else if theirs.FG < 256 {
			if mine.FG.Kind != ColorPalette || mine.FG.Index != uint8(theirs.FG) {
				t.Errorf("col %d FG = %+v, vt10x has palette %d", col, mine.FG, theirs.FG)
			}
		}

		if theirs.BG == vt10x.DefaultBG {
			if mine.BG.Kind != ColorDefault {
				t.Errorf("col %d BG = %+v, vt10x has default", col, mine.BG)
			}
		} else if theirs.BG < 256 {
			if mine.BG.Kind != ColorPalette || mine.BG.Index != uint8(theirs.BG) {
				t.Errorf("col %d BG = %+v, vt10x has palette %d", col, mine.BG, theirs.BG)
			}
		}
	}
}

package main

// Attr is a bitmask of cell text attributes.
type Attr uint8

const (
	AttrBold Attr = 1 << iota
	AttrItalic
	AttrUnderline
	AttrInverse
)

// ColorKind discriminates the three ways a cell color can be specified.
type ColorKind uint8

const (
	// ColorDefault is the terminal default; it resolves to the theme's
	// foreground or background at render time.
	ColorDefault ColorKind = iota
	// ColorPalette is an index into the 256-color palette.
	ColorPalette
	// ColorRGB is a direct 24-bit color.
	ColorRGB
)

// Color is a cell color: terminal default, palette index, or direct RGB.
// The zero value is the terminal default.
type Color struct {
	Kind    ColorKind
	Index   uint8 // palette index when Kind == ColorPalette
	R, G, B uint8 // channels when Kind == ColorRGB
}

// PaletteColor returns a palette-indexed Color.
func PaletteColor(n uint8) Color { return Color{Kind: ColorPalette, Index: n} }

// RGBColor returns a direct 24-bit Color.
func RGBColor(r, g, b uint8) Color { return Color{Kind: ColorRGB, R: r, G: g, B: b} }

// Cell is one character cell of the grid. Char 0 means blank.
type Cell struct {
	Char rune
	FG   Color
	BG   Color
	Attr Attr
}

// CursorPos is a cursor position with its visibility flag.
type CursorPos struct {
	Row, Col int
	Visible  bool
}

// ScreenState is an immutable snapshot of the grid and cursor at one
// instant. Cells are row-major, len == Width*Height.
type ScreenState struct {
	Width, Height int
	Cells         []Cell
	Cursor        CursorPos
}

// Cell returns the cell at (row, col), or a blank cell when out of bounds.
func (st *ScreenState) Cell(row, col int) Cell {
	if row < 0 || row >= st.Height || col < 0 || col >= st.Width {
		return Cell{}
	}
	return st.Cells[row*st.Width+col]
}

// Screen is the mutable terminal grid plus cursor, pending attributes and
// scroll region. Operations are applied strictly in order; the grid is a
// fixed-capacity row-major store with a logical top-row index so that a
// full-screen scroll is O(1).
type Screen struct {
	width, height int
	cells         []Cell
	top           int // physical index of logical row 0

	cursor   CursorPos
	saved    CursorPos
	hasSaved bool

	attr Attr
	fg   Color
	bg   Color

	regionTop    int // 0-based, inclusive
	regionBottom int

	gen uint64
}

// NewScreen returns a blank screen. Dimensions are floored at 1.
func NewScreen(width, height int) *Screen {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	s := &Screen{
		width:        width,
		height:       height,
		cells:        make([]Cell, width*height),
		regionBottom: height - 1,
	}
	s.cursor.Visible = true
	return s
}

// Size returns the grid dimensions in cells.
func (s *Screen) Size() (width, height int) { return s.width, s.height }

// Gen returns the change generation counter. It advances on every visible
// mutation (cell write, cursor move, scroll, erase) and is how callers
// detect that a batch of operations changed anything worth snapshotting.
// Attribute and color changes alone do not advance it.
func (s *Screen) Gen() uint64 { return s.gen }

// row returns the cells of logical row r.
func (s *Screen) row(r int) []Cell {
	p := (s.top + r) % s.height
	return s.cells[p*s.width : (p+1)*s.width]
}

// blank returns the cell that erase and scroll operations fill with:
// empty, carrying the current background color.
func (s *Screen) blank() Cell { return Cell{BG: s.bg} }

// Apply mutates the screen according to op. Unknown operations are ignored.
func (s *Screen) Apply(op Op) {
	switch op.Type {
	case OpPrint:
		s.print(op.Char)
	case OpMoveCursor:
		s.moveCursor(s.cursor.Row+op.Row, s.cursor.Col+op.Col)
	case OpMoveCursorTo:
		row, col := op.Row, op.Col
		if row < 0 {
			row = s.cursor.Row
		}
		if col < 0 {
			col = s.cursor.Col
		}
		s.moveCursor(row, col)
	case OpTab:
		col := (s.cursor.Col/8 + 1) * 8
		if col >= s.width {
			col = s.width - 1
		}
		s.moveCursor(s.cursor.Row, col)
	case OpLineFeed:
		s.advanceRow()
	case OpReverseLineFeed:
		if s.cursor.Row == s.regionTop {
			s.scrollDown(1)
		} else {
			s.moveCursor(s.cursor.Row-1, s.cursor.Col)
		}
	case OpCarriageReturn:
		if s.cursor.Col != 0 {
			s.cursor.Col = 0
			s.gen++
		}
	case OpSaveCursor:
		s.saved = s.cursor
		s.hasSaved = true
	case OpRestoreCursor:
		if s.hasSaved {
			s.moveCursor(s.saved.Row, s.saved.Col)
		}
	case OpEraseInLine:
		s.eraseLine(op.Mode)
	case OpEraseInDisplay:
		s.eraseDisplay(op.Mode)
	case OpScrollUp:
		s.scrollUp(op.N)
	case OpScrollDown:
		s.scrollDown(op.N)
	case OpSetScrollRegion:
		s.setScrollRegion(op.Row, op.Col)
	case OpSetAttr:
		s.attr |= op.Attr
	case OpClearAttr:
		s.attr &^= op.Attr
	case OpResetAttributes:
		s.attr = 0
		s.fg = Color{}
		s.bg = Color{}
	case OpSetForeground:
		s.fg = op.Color
	case OpSetBackground:
		s.bg = op.Color
	case OpSetCursorVisible:
		if s.cursor.Visible != op.Visible {
			s.cursor.Visible = op.Visible
			s.gen++
		}
	case OpBell:
		// audible only
	case OpUnknown:
		// already logged by the parser
	}
}

// print writes ch at the cursor with the pending attributes, advancing the
// cursor and wrapping at the last column.
func (s *Screen) print(ch rune) {
	cell := &s.row(s.cursor.Row)[s.cursor.Col]
	cell.Char = ch
	cell.FG = s.fg
	cell.BG = s.bg
	cell.Attr = s.attr
	s.gen++
	s.cursor.Col++
	if s.cursor.Col >= s.width {
		s.cursor.Col = 0
		s.advanceRow()
	}
}

// advanceRow moves the cursor down one row, scrolling the region when the
// cursor sits on its bottom row. At the last screen row outside the region
// the cursor stays put.
func (s *Screen) advanceRow() {
	switch {
	case s.cursor.Row == s.regionBottom:
		s.scrollUp(1)
	case s.cursor.Row < s.height-1:
		s.cursor.Row++
		s.gen++
	}
}

func (s *Screen) moveCursor(row, col int) {
	if row < 0 {
		row = 0
	}
	if row >= s.height {
		row = s.height - 1
	}
	if col < 0 {
		col = 0
	}
	if col >= s.width {
		col = s.width - 1
	}
	if row != s.cursor.Row || col != s.cursor.Col {
		s.cursor.Row = row
		s.cursor.Col = col
		s.gen++
	}
}

// clearRow fills logical row r with blanks, reporting whether anything
// actually changed.
func (s *Screen) clearRow(r int) bool {
	row := s.row(r)
	blank := s.blank()
	changed := false
	for i := range row {
		if row[i] != blank {
			row[i] = blank
			changed = true
		}
	}
	return changed
}

func (s *Screen) clearCells(r, from, to int) bool {
	row := s.row(r)
	blank := s.blank()
	changed := false
	for i := from; i < to; i++ {
		if row[i] != blank {
			row[i] = blank
			changed = true
		}
	}
	return changed
}

// eraseLine blanks part of the cursor row: mode 0 from the cursor to the
// end, mode 1 from the start through the cursor, mode 2 the whole row.
// The cursor does not move.
func (s *Screen) eraseLine(mode int) {
	var changed bool
	switch mode {
	case 0:
		changed = s.clearCells(s.cursor.Row, s.cursor.Col, s.width)
	case 1:
		changed = s.clearCells(s.cursor.Row, 0, s.cursor.Col+1)
	case 2:
		changed = s.clearRow(s.cursor.Row)
	}
	if changed {
		s.gen++
	}
}

// eraseDisplay blanks part of the screen: mode 0 from the cursor to the
// end, mode 1 from the start through the cursor, mode 2 everything.
// Mode 2 also homes the cursor.
func (s *Screen) eraseDisplay(mode int) {
	changed := false
	switch mode {
	case 0:
		changed = s.clearCells(s.cursor.Row, s.cursor.Col, s.width)
		for r := s.cursor.Row + 1; r < s.height; r++ {
			if s.clearRow(r) {
				changed = true
			}
		}
	case 1:
		for r := 0; r < s.cursor.Row; r++ {
			if s.clearRow(r) {
				changed = true
			}
		}
		if s.clearCells(s.cursor.Row, 0, s.cursor.Col+1) {
			changed = true
		}
	case 2:
		for r := 0; r < s.height; r++ {
			if s.clearRow(r) {
				changed = true
			}
		}
		s.moveCursor(0, 0)
	}
	if changed {
		s.gen++
	}
}

// scrollUp shifts the scroll region up by n rows, dropping the top rows
// and clearing the rows that enter at the bottom. A full-screen scroll
// only rotates the logical top index.
func (s *Screen) scrollUp(n int) {
	regionHeight := s.regionBottom - s.regionTop + 1
	if n < 1 {
		n = 1
	}
	if n > regionHeight {
		n = regionHeight
	}
	if s.regionTop == 0 && s.regionBottom == s.height-1 {
		s.top = (s.top + n) % s.height
		for r := s.height - n; r < s.height; r++ {
			s.clearRow(r)
		}
	} else {
		for r := s.regionTop; r+n <= s.regionBottom; r++ {
			copy(s.row(r), s.row(r+n))
		}
		for r := s.regionBottom - n + 1; r <= s.regionBottom; r++ {
			s.clearRow(r)
		}
	}
	s.gen++
}

// scrollDown shifts the scroll region down by n rows, clearing the rows
// that enter at the top.
func (s *Screen) scrollDown(n int) {
	regionHeight := s.regionBottom - s.regionTop + 1
	if n < 1 {
		n = 1
	}
	if n > regionHeight {
		n = regionHeight
	}
	if s.regionTop == 0 && s.regionBottom == s.height-1 {
		s.top = ((s.top-n)%s.height + s.height) % s.height
		for r := 0; r < n; r++ {
			s.clearRow(r)
		}
	} else {
		for r := s.regionBottom; r-n >= s.regionTop; r-- {
			copy(s.row(r), s.row(r-n))
		}
		for r := s.regionTop; r < s.regionTop+n; r++ {
			s.clearRow(r)
		}
	}
	s.gen++
}

// setScrollRegion sets the scroll region from 1-based bounds; bottom 0
// means the last row. An empty or inverted region resets to full screen.
// The cursor homes, as it does on a real terminal.
func (s *Screen) setScrollRegion(top, bottom int) {
	rt := top - 1
	rb := bottom - 1
	if bottom == 0 {
		rb = s.height - 1
	}
	if rt < 0 {
		rt = 0
	}
	if rb >= s.height {
		rb = s.height - 1
	}
	if rt >= rb {
		rt, rb = 0, s.height-1
	}
	s.regionTop, s.regionBottom = rt, rb
	s.moveCursor(0, 0)
}

// Snapshot returns a deep copy of the current grid and cursor, with rows
// unrolled into plain row-major order.
func (s *Screen) Snapshot() *ScreenState {
	st := &ScreenState{
		Width:  s.width,
		Height: s.height,
		Cells:  make([]Cell, s.width*s.height),
		Cursor: s.cursor,
	}
	for r := 0; r < s.height; r++ {
		copy(st.Cells[r*s.width:(r+1)*s.width], s.row(r))
	}
	return st
}

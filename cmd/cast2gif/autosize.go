package main

// MeasureSize replays the cast's output events through a size-tracking
// pass with unbounded width and growable height: no wrapping, no
// scrolling, erase operations reduced to their cursor effects. It
// reports the number of columns covered by the widest printed line and
// the total rows produced, for use as the real grid's dimensions.
// Cursor positioning alone does not grow the measured size; only
// printing and line feeds do.
func MeasureSize(parser *Parser, events []CastEvent) (cols, rows int) {
	var row, col, maxRow, maxCol int
	for _, ev := range events {
		if ev.Stream != "o" {
			continue
		}
		for _, op := range parser.Parse([]byte(ev.Data)) {
			switch op.Type {
			case OpPrint:
				col++
				if col > maxCol {
					maxCol = col
				}
				if row > maxRow {
					maxRow = row
				}
			case OpTab:
				col = (col/8 + 1) * 8
			case OpLineFeed:
				row++
				if row > maxRow {
					maxRow = row
				}
			case OpReverseLineFeed:
				if row > 0 {
					row--
				}
			case OpCarriageReturn:
				col = 0
			case OpMoveCursor:
				row += op.Row
				col += op.Col
				if row < 0 {
					row = 0
				}
				if col < 0 {
					col = 0
				}
			case OpMoveCursorTo:
				if op.Row >= 0 {
					row = op.Row
				}
				if op.Col >= 0 {
					col = op.Col
				}
			case OpEraseInDisplay:
				if op.Mode == 2 {
					row, col = 0, 0
				}
			case OpSetScrollRegion:
				row, col = 0, 0
			}
		}
	}
	cols, rows = maxCol, maxRow+1
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

package main

import (
	"unicode/utf8"
)

// OpType enumerates the terminal operations the parser can produce.
type OpType uint8

const (
	OpPrint OpType = iota
	OpSetAttr
	OpClearAttr
	OpSetForeground
	OpSetBackground
	OpResetAttributes
	OpMoveCursor   // relative move by (Row, Col)
	OpMoveCursorTo // absolute move; -1 keeps the current row or column
	OpTab
	OpSaveCursor
	OpRestoreCursor
	OpEraseInLine    // Mode 0 right, 1 left, 2 whole line
	OpEraseInDisplay // Mode 0 below, 1 above, 2 everything
	OpScrollUp
	OpScrollDown
	OpLineFeed
	OpReverseLineFeed
	OpCarriageReturn
	OpSetScrollRegion // Row = top (1-based), Col = bottom (1-based, 0 = last)
	OpSetCursorVisible
	OpBell
	OpUnknown
)

// Op is one parsed terminal operation. Only the fields relevant to Type
// are meaningful.
type Op struct {
	Type    OpType
	Char    rune
	Attr    Attr
	Color   Color
	Row     int
	Col     int
	Mode    int
	N       int
	Visible bool
}

type parserState uint8

const (
	stateGround parserState = iota
	stateEscape
	stateCharset // after ESC '(' or ')', swallows the designator byte
	stateCSI
	stateOSC
	stateOSCEsc // saw ESC inside an OSC, ST pending
)

// maxCSIParam caps accumulated numeric parameters; larger values clamp.
const maxCSIParam = 9999

// maxOSCLen bounds how much OSC payload is consumed before the sequence
// is abandoned as malformed.
const maxOSCLen = 4096

// Parser is an incremental escape-sequence scanner. Feed it raw output
// bytes in arbitrary chunks; sequences split across chunk boundaries are
// buffered and resumed without loss. A Parser must not be shared between
// concurrently parsed streams.
type Parser struct {
	// Logf, when set, receives notes about skipped malformed or
	// unrecognized sequences.
	Logf func(format string, args ...any)

	state parserState

	params    []int
	curParam  int
	curDigits bool
	private   byte
	inter     []byte

	oscLen int

	utf8buf  [utf8.UTFMax]byte
	utf8len  int
	utf8need int
}

// NewParser returns a parser in the ground state. logf may be nil.
func NewParser(logf func(format string, args ...any)) *Parser {
	return &Parser{Logf: logf}
}

func (p *Parser) logf(format string, args ...any) {
	if p.Logf != nil {
		p.Logf(format, args...)
	}
}

// Parse consumes data and returns the operations it completes. Partial
// sequences at the end of data are carried over to the next call.
func (p *Parser) Parse(data []byte) []Op {
	var ops []Op
	for _, b := range data {
		ops = p.parseByte(ops, b)
	}
	return ops
}

func (p *Parser) parseByte(ops []Op, b byte) []Op {
	switch p.state {
	case stateGround:
		return p.parseGround(ops, b)
	case stateEscape:
		return p.parseEscape(ops, b)
	case stateCharset:
		p.state = stateGround
		return ops
	case stateCSI:
		return p.parseCSI(ops, b)
	case stateOSC:
		switch {
		case b == 0x07: // BEL terminates
			p.state = stateGround
		case b == 0x1b:
			p.state = stateOSCEsc
		default:
			p.oscLen++
			if p.oscLen > maxOSCLen {
				p.logf("abandoning overlong OSC sequence")
				p.state = stateGround
			}
		}
		return ops
	case stateOSCEsc:
		if b == '\\' { // ST terminates
			p.state = stateGround
			return ops
		}
		// The OSC was cut short by a fresh escape.
		p.state = stateEscape
		return p.parseEscape(ops, b)
	}
	return ops
}

func (p *Parser) parseGround(ops []Op, b byte) []Op {
	if p.utf8len > 0 {
		if b&0xc0 == 0x80 {
			p.utf8buf[p.utf8len] = b
			p.utf8len++
			if p.utf8len == p.utf8need {
				r, _ := utf8.DecodeRune(p.utf8buf[:p.utf8len])
				p.utf8len = 0
				return append(ops, Op{Type: OpPrint, Char: r})
			}
			return ops
		}
		// Sequence broken mid-rune; show the damage and reprocess b.
		p.utf8len = 0
		ops = append(ops, Op{Type: OpPrint, Char: utf8.RuneError})
	}

	switch {
	case b == 0x1b:
		p.state = stateEscape
	case b == 0x07:
		ops = append(ops, Op{Type: OpBell})
	case b == 0x08:
		ops = append(ops, Op{Type: OpMoveCursor, Col: -1})
	case b == 0x09:
		ops = append(ops, Op{Type: OpTab})
	case b == 0x0a, b == 0x0b, b == 0x0c:
		ops = append(ops, Op{Type: OpLineFeed})
	case b == 0x0d:
		ops = append(ops, Op{Type: OpCarriageReturn})
	case b < 0x20 || b == 0x7f:
		// remaining C0 controls and DEL: nothing to draw
	case b < 0x80:
		ops = append(ops, Op{Type: OpPrint, Char: rune(b)})
	default:
		switch {
		case b&0xe0 == 0xc0:
			p.utf8need = 2
		case b&0xf0 == 0xe0:
			p.utf8need = 3
		case b&0xf8 == 0xf0:
			p.utf8need = 4
		default:
			// stray continuation byte
			return append(ops, Op{Type: OpPrint, Char: utf8.RuneError})
		}
		p.utf8buf[0] = b
		p.utf8len = 1
	}
	return ops
}

func (p *Parser) parseEscape(ops []Op, b byte) []Op {
	p.state = stateGround
	switch b {
	case '[':
		p.state = stateCSI
		p.params = p.params[:0]
		p.curParam = 0
		p.curDigits = false
		p.private = 0
		p.inter = p.inter[:0]
	case ']':
		p.state = stateOSC
		p.oscLen = 0
	case '(', ')':
		p.state = stateCharset
	case '7':
		ops = append(ops, Op{Type: OpSaveCursor})
	case '8':
		ops = append(ops, Op{Type: OpRestoreCursor})
	case 'D':
		ops = append(ops, Op{Type: OpLineFeed})
	case 'E':
		ops = append(ops, Op{Type: OpCarriageReturn}, Op{Type: OpLineFeed})
	case 'M':
		ops = append(ops, Op{Type: OpReverseLineFeed})
	case 'c':
		// full reset
		ops = append(ops,
			Op{Type: OpResetAttributes},
			Op{Type: OpSetScrollRegion, Row: 1, Col: 0},
			Op{Type: OpSetCursorVisible, Visible: true},
			Op{Type: OpEraseInDisplay, Mode: 2},
		)
	case '=', '>', '\\':
		// keypad modes and a lone ST: nothing to do
	default:
		p.logf("skipping unrecognized escape sequence ESC %q", rune(b))
	}
	return ops
}

func (p *Parser) parseCSI(ops []Op, b byte) []Op {
	switch {
	case b >= '0' && b <= '9':
		p.curParam = p.curParam*10 + int(b-'0')
		if p.curParam > maxCSIParam {
			p.curParam = maxCSIParam
		}
		p.curDigits = true
	case b == ';':
		p.pushParam()
	case b >= 0x3c && b <= 0x3f: // '<' '=' '>' '?'
		p.private = b
	case b >= 0x20 && b <= 0x2f:
		p.inter = append(p.inter, b)
	case b >= 0x40 && b <= 0x7e:
		if p.curDigits || len(p.params) > 0 {
			p.pushParam()
		}
		p.state = stateGround
		return p.dispatchCSI(ops, b)
	case b == 0x1b:
		// a fresh escape aborts the unfinished sequence
		p.logf("dropping malformed escape sequence (CSI interrupted)")
		p.state = stateEscape
	default:
		p.logf("dropping malformed escape sequence (byte %#x in CSI)", b)
		p.state = stateGround
	}
	return ops
}

func (p *Parser) pushParam() {
	if p.curDigits {
		p.params = append(p.params, p.curParam)
	} else {
		p.params = append(p.params, -1)
	}
	p.curParam = 0
	p.curDigits = false
}

// param returns the i'th numeric parameter, or def when it was omitted.
func (p *Parser) param(i, def int) int {
	if i >= len(p.params) || p.params[i] < 0 {
		return def
	}
	return p.params[i]
}

// count is param for repeat counts, which treat 0 as 1.
func (p *Parser) count(i int) int {
	n := p.param(i, 1)
	if n < 1 {
		n = 1
	}
	return n
}

func (p *Parser) dispatchCSI(ops []Op, final byte) []Op {
	if len(p.inter) > 0 {
		p.logf("skipping unrecognized sequence CSI %q with intermediates %q", rune(final), p.inter)
		return ops
	}
	if p.private != 0 {
		return p.dispatchPrivateCSI(ops, final)
	}
	switch final {
	case 'A':
		ops = append(ops, Op{Type: OpMoveCursor, Row: -p.count(0)})
	case 'B', 'e':
		ops = append(ops, Op{Type: OpMoveCursor, Row: p.count(0)})
	case 'C', 'a':
		ops = append(ops, Op{Type: OpMoveCursor, Col: p.count(0)})
	case 'D':
		ops = append(ops, Op{Type: OpMoveCursor, Col: -p.count(0)})
	case 'E':
		ops = append(ops, Op{Type: OpMoveCursor, Row: p.count(0)}, Op{Type: OpCarriageReturn})
	case 'F':
		ops = append(ops, Op{Type: OpMoveCursor, Row: -p.count(0)}, Op{Type: OpCarriageReturn})
	case 'G', '`':
		ops = append(ops, Op{Type: OpMoveCursorTo, Row: -1, Col: p.count(0) - 1})
	case 'd':
		ops = append(ops, Op{Type: OpMoveCursorTo, Row: p.count(0) - 1, Col: -1})
	case 'H', 'f':
		ops = append(ops, Op{Type: OpMoveCursorTo, Row: p.count(0) - 1, Col: p.count(1) - 1})
	case 'J':
		mode := p.param(0, 0)
		if mode >= 0 && mode <= 2 {
			ops = append(ops, Op{Type: OpEraseInDisplay, Mode: mode})
		}
	case 'K':
		mode := p.param(0, 0)
		if mode >= 0 && mode <= 2 {
			ops = append(ops, Op{Type: OpEraseInLine, Mode: mode})
		}
	case 'S':
		ops = append(ops, Op{Type: OpScrollUp, N: p.count(0)})
	case 'T':
		ops = append(ops, Op{Type: OpScrollDown, N: p.count(0)})
	case 'r':
		ops = append(ops, Op{Type: OpSetScrollRegion, Row: p.param(0, 1), Col: p.param(1, 0)})
	case 's':
		ops = append(ops, Op{Type: OpSaveCursor})
	case 'u':
		ops = append(ops, Op{Type: OpRestoreCursor})
	case 'h', 'l':
		// set/reset mode without a private marker: nothing we render
	case 'm':
		ops = p.dispatchSGR(ops)
	default:
		p.logf("skipping unrecognized sequence CSI %q (params %v)", rune(final), p.params)
		ops = append(ops, Op{Type: OpUnknown})
	}
	return ops
}

func (p *Parser) dispatchPrivateCSI(ops []Op, final byte) []Op {
	if p.private != '?' || (final != 'h' && final != 'l') {
		p.logf("skipping unrecognized sequence CSI %q%q (params %v)", rune(p.private), rune(final), p.params)
		return append(ops, Op{Type: OpUnknown})
	}
	for i := range p.params {
		if p.param(i, 0) == 25 {
			ops = append(ops, Op{Type: OpSetCursorVisible, Visible: final == 'h'})
		}
		// every other private mode (bracketed paste, mouse tracking,
		// alternate screen, ...) is consumed without effect
	}
	return ops
}

// dispatchSGR translates the accumulated SGR parameters into attribute
// and color operations, applied left to right. No parameters at all is
// a reset, per ECMA-48.
func (p *Parser) dispatchSGR(ops []Op) []Op {
	if len(p.params) == 0 {
		return append(ops, Op{Type: OpResetAttributes})
	}
	for i := 0; i < len(p.params); i++ {
		n := p.params[i]
		if n < 0 {
			n = 0
		}
		switch {
		case n == 0:
			ops = append(ops, Op{Type: OpResetAttributes})
		case n == 1:
			ops = append(ops, Op{Type: OpSetAttr, Attr: AttrBold})
		case n == 3:
			ops = append(ops, Op{Type: OpSetAttr, Attr: AttrItalic})
		case n == 4:
			ops = append(ops, Op{Type: OpSetAttr, Attr: AttrUnderline})
		case n == 7:
			ops = append(ops, Op{Type: OpSetAttr, Attr: AttrInverse})
		case n == 22:
			ops = append(ops, Op{Type: OpClearAttr, Attr: AttrBold})
		case n == 23:
			ops = append(ops, Op{Type: OpClearAttr, Attr: AttrItalic})
		case n == 24:
			ops = append(ops, Op{Type: OpClearAttr, Attr: AttrUnderline})
		case n == 27:
			ops = append(ops, Op{Type: OpClearAttr, Attr: AttrInverse})
		case n >= 30 && n <= 37:
			ops = append(ops, Op{Type: OpSetForeground, Color: PaletteColor(uint8(n - 30))})
		case n == 39:
			ops = append(ops, Op{Type: OpSetForeground})
		case n >= 40 && n <= 47:
			ops = append(ops, Op{Type: OpSetBackground, Color: PaletteColor(uint8(n - 40))})
		case n == 49:
			ops = append(ops, Op{Type: OpSetBackground})
		case n >= 90 && n <= 97:
			ops = append(ops, Op{Type: OpSetForeground, Color: PaletteColor(uint8(n - 90 + 8))})
		case n >= 100 && n <= 107:
			ops = append(ops, Op{Type: OpSetBackground, Color: PaletteColor(uint8(n - 100 + 8))})
		case n == 38 || n == 48:
			color, skip, ok := p.extendedColor(i)
			if !ok {
				return ops
			}
			t := OpSetForeground
			if n == 48 {
				t = OpSetBackground
			}
			ops = append(ops, Op{Type: t, Color: color})
			i += skip
		default:
			// unsupported rendition (blink, faint, fonts, ...): skip
		}
	}
	return ops
}

// extendedColor decodes the 38;5;N / 38;2;R;G;B forms starting at the
// 38 or 48 parameter at index i. It returns the color, how many extra
// parameters were consumed, and whether the form was well-formed.
func (p *Parser) extendedColor(i int) (Color, int, bool) {
	clamp255 := func(v int) uint8 {
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		return uint8(v)
	}
	switch p.param(i+1, -1) {
	case 5:
		if i+2 >= len(p.params) {
			p.logf("skipping truncated extended color in SGR %v", p.params)
			return Color{}, 0, false
		}
		return PaletteColor(clamp255(p.param(i+2, 0))), 2, true
	case 2:
		if i+4 >= len(p.params) {
			p.logf("skipping truncated extended color in SGR %v", p.params)
			return Color{}, 0, false
		}
		r := clamp255(p.param(i+2, 0))
		g := clamp255(p.param(i+3, 0))
		b := clamp255(p.param(i+4, 0))
		return RGBColor(r, g, b), 4, true
	default:
		p.logf("skipping malformed extended color in SGR %v", p.params)
		return Color{}, 0, false
	}
}

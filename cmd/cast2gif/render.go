package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultFontSize = 16
	DefaultPadding  = 8
)

// Renderer rasterizes screen states with the Go monospace family. One
// renderer serves a whole run; it caches faces, metrics and color
// sources across frames.
type Renderer struct {
	theme   *Theme
	faces   [4]font.Face // indexed by bold bit | italic bit << 1
	cellW   int
	cellH   int
	ascent  int
	padding int

	uniforms map[RGB]*image.Uniform
}

// NewRenderer builds the font faces at the given size. fontSize <= 0 and
// padding < 0 fall back to the defaults.
func NewRenderer(theme *Theme, fontSize float64, padding int) (*Renderer, error) {
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	if padding < 0 {
		padding = DefaultPadding
	}
	r := &Renderer{
		theme:    theme,
		padding:  padding,
		uniforms: make(map[RGB]*image.Uniform),
	}

	sources := [4][]byte{gomono.TTF, gomonobold.TTF, gomonoitalic.TTF, gomonobolditalic.TTF}
	for i, ttf := range sources {
		parsed, err := opentype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parsing builtin font: %w", err)
		}
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    fontSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("building font face: %w", err)
		}
		r.faces[i] = face
	}

	metrics := r.faces[0].Metrics()
	r.cellH = metrics.Height.Ceil()
	r.ascent = metrics.Ascent.Ceil()
	advance, ok := r.faces[0].GlyphAdvance('M')
	if !ok {
		return nil, fmt.Errorf("builtin font has no advance for %q", 'M')
	}
	r.cellW = advance.Ceil()
	return r, nil
}

// Bounds returns the pixel rectangle for a grid of the given cell
// dimensions, padding included.
func (r *Renderer) Bounds(cols, rows int) image.Rectangle {
	return image.Rect(0, 0, cols*r.cellW+2*r.padding, rows*r.cellH+2*r.padding)
}

func (r *Renderer) uniform(c RGB) *image.Uniform {
	u, ok := r.uniforms[c]
	if !ok {
		u = image.NewUniform(color.RGBA{c.R, c.G, c.B, 0xff})
		r.uniforms[c] = u
	}
	return u
}

func faceIndex(attr Attr) int {
	i := 0
	if attr&AttrBold != 0 {
		i |= 1
	}
	if attr&AttrItalic != 0 {
		i |= 2
	}
	return i
}

// Draw rasterizes st onto dst, which must cover Bounds(st.Width,
// st.Height). dst may be any draw.Image; drawing into a paletted image
// maps every pixel to its nearest palette entry.
func (r *Renderer) Draw(dst draw.Image, st *ScreenState) {
	draw.Draw(dst, dst.Bounds(), r.uniform(r.theme.Background), image.Point{}, draw.Src)

	for row := 0; row < st.Height; row++ {
		for col := 0; col < st.Width; col++ {
			cell := st.Cell(row, col)
			fg := r.theme.ResolveFG(cell.FG, cell.Attr&AttrBold != 0)
			bg := r.theme.ResolveBG(cell.BG)
			if cell.Attr&AttrInverse != 0 {
				fg, bg = bg, fg
			}
			if st.Cursor.Visible && st.Cursor.Row == row && st.Cursor.Col == col {
				fg, bg = bg, r.theme.Cursor
			}

			x := r.padding + col*r.cellW
			y := r.padding + row*r.cellH
			cellRect := image.Rect(x, y, x+r.cellW, y+r.cellH)
			if bg != r.theme.Background {
				draw.Draw(dst, cellRect, r.uniform(bg), image.Point{}, draw.Src)
			}

			if cell.Char > ' ' {
				d := font.Drawer{
					Dst:  dst,
					Src:  r.uniform(fg),
					Face: r.faces[faceIndex(cell.Attr)],
					Dot:  fixed.P(x, y+r.ascent),
				}
				d.DrawString(string(cell.Char))
			}

			if cell.Attr&AttrUnderline != 0 {
				uy := y + r.ascent + 1
				if uy >= cellRect.Max.Y {
					uy = cellRect.Max.Y - 1
				}
				draw.Draw(dst, image.Rect(x, uy, x+r.cellW, uy+1), r.uniform(fg), image.Point{}, draw.Src)
			}
		}
	}
}

// RenderFrame rasterizes st into a fresh RGBA image.
func (r *Renderer) RenderFrame(st *ScreenState) *image.RGBA {
	img := image.NewRGBA(r.Bounds(st.Width, st.Height))
	r.Draw(img, st)
	return img
}

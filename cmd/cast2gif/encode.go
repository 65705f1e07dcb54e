package main

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// buildPalette assembles the GIF palette for a theme: its own colors
// plus blend steps between each of them and the background, which is
// where antialiased glyph edges land. Colors outside the palette
// (extended 256-color or direct RGB cells) map to the nearest entry.
func buildPalette(t *Theme) color.Palette {
	var pal color.Palette
	seen := make(map[color.RGBA]bool)
	add := func(c RGB) {
		rgba := color.RGBA{c.R, c.G, c.B, 0xff}
		if !seen[rgba] {
			seen[rgba] = true
			pal = append(pal, rgba)
		}
	}

	add(t.Background)
	add(t.Foreground)
	add(t.Cursor)
	for _, c := range t.Palette {
		add(c)
	}

	bg := colorful.Color{R: float64(t.Background.R) / 255, G: float64(t.Background.G) / 255, B: float64(t.Background.B) / 255}
	bases := append([]RGB{t.Foreground, t.Cursor}, t.Palette[:]...)
	for _, base := range bases {
		c := colorful.Color{R: float64(base.R) / 255, G: float64(base.G) / 255, B: float64(base.B) / 255}
		for step := 1; step <= 3; step++ {
			m := c.BlendRgb(bg, float64(step)/4)
			r, g, b := m.RGB255()
			add(RGB{r, g, b})
		}
	}
	return pal
}

// EncodeGIF rasterizes frames and writes an animated GIF. Loop follows
// image/gif semantics: 0 loops forever, -1 plays once, n repeats n extra
// times. Frame durations convert to hundredths of a second; the rounding
// remainder carries forward so the total duration survives rounding.
func EncodeGIF(w io.Writer, frames []Frame, r *Renderer, loop int, progress progressFunc) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}

	pal := buildPalette(r.theme)
	first := frames[0].State
	bounds := r.Bounds(first.Width, first.Height)
	anim := &gif.GIF{
		LoopCount: loop,
		Config: image.Config{
			ColorModel: pal,
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
		},
	}

	carry := 0.0
	for i, frame := range frames {
		img := image.NewPaletted(bounds, pal)
		r.Draw(img, frame.State)

		exact := frame.Duration*100 + carry
		delay := int(math.Round(exact))
		if delay < 1 {
			delay = 1
		}
		carry = exact - float64(delay)

		anim.Image = append(anim.Image, img)
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalNone)
		if progress != nil {
			progress(i+1, len(frames))
		}
	}

	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("encoding gif: %w", err)
	}
	return nil
}

// EncodePNG rasterizes a single frame and writes a PNG.
func EncodePNG(w io.Writer, frame Frame, r *Renderer) error {
	if err := png.Encode(w, r.RenderFrame(frame.State)); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

package main

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// cssNamedColors maps the CSS color names accepted in theme files and
// -theme flags to their hex values.
var cssNamedColors = map[string]string{
	"black":     "#000000",
	"white":     "#ffffff",
	"red":       "#ff0000",
	"green":     "#008000",
	"lime":      "#00ff00",
	"blue":      "#0000ff",
	"yellow":    "#ffff00",
	"cyan":      "#00ffff",
	"aqua":      "#00ffff",
	"magenta":   "#ff00ff",
	"fuchsia":   "#ff00ff",
	"gray":      "#808080",
	"grey":      "#808080",
	"silver":    "#c0c0c0",
	"maroon":    "#800000",
	"olive":     "#808000",
	"navy":      "#000080",
	"teal":      "#008080",
	"purple":    "#800080",
	"orange":    "#ffa500",
	"brown":     "#a52a2a",
	"pink":      "#ffc0cb",
	"gold":      "#ffd700",
	"indigo":    "#4b0082",
	"violet":    "#ee82ee",
	"crimson":   "#dc143c",
	"salmon":    "#fa8072",
	"turquoise": "#40e0d0",
	"darkgray":  "#a9a9a9",
	"darkgrey":  "#a9a9a9",
}

// ParseCSSColor parses a CSS color string (hex or named) and returns RGB
// values. Supports #rgb, #rrggbb, and the named colors above,
// case-insensitive. Returns (0, 0, 0, false) if the color cannot be parsed.
func ParseCSSColor(color string) (r, g, b uint8, ok bool) {
	color = strings.TrimSpace(color)
	if color == "" {
		return 0, 0, 0, false
	}

	if hex, found := cssNamedColors[strings.ToLower(color)]; found {
		color = hex
	}

	if !strings.HasPrefix(color, "#") {
		return 0, 0, 0, false
	}
	if len(color) != 4 && len(color) != 7 {
		return 0, 0, 0, false
	}

	c, err := colorful.Hex(strings.ToLower(color))
	if err != nil {
		return 0, 0, 0, false
	}
	r, g, b = c.RGB255()
	return r, g, b, true
}

// RelativeLuminance calculates the relative luminance of a color per
// WCAG 2.0: gamma-expanded channels weighted by human sensitivity.
// Returns a value between 0 (black) and 1 (white).
func RelativeLuminance(r, g, b uint8) float64 {
	c := colorful.Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0}
	lr, lg, lb := c.LinearRgb()
	return 0.2126*lr + 0.7152*lg + 0.0722*lb
}

// ContrastingTextColor returns white or black, whichever reads better on
// the given background. Unparseable colors get white, since custom
// terminal backgrounds are nearly always dark.
func ContrastingTextColor(bgColor string) string {
	r, g, b, ok := ParseCSSColor(bgColor)
	if !ok {
		return "#fff"
	}

	// 0.4 rather than WCAG's 0.179: mid-brightness backgrounds look
	// better with white text than the ratio math suggests.
	if RelativeLuminance(r, g, b) > 0.4 {
		return "#000"
	}
	return "#fff"
}

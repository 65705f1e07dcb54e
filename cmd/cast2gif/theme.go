package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// RGB is a concrete 24-bit color, the result of resolving a Color
// through a Theme.
type RGB struct {
	R, G, B uint8
}

// Theme supplies the concrete colors for rendering: the default
// foreground/background, the cursor color, and the first 16 palette
// slots. Palette indices 16-255 are the fixed xterm cube and grayscale
// ramp and are not themeable.
type Theme struct {
	Name       string
	Foreground RGB
	Background RGB
	Cursor     RGB
	Palette    [16]RGB
}

// cgaTheme reproduces the classic CGA monitor look: gray-on-black with
// the fully saturated primaries.
var cgaTheme = &Theme{
	Name:       "cga",
	Foreground: RGB{0xaa, 0xaa, 0xaa},
	Background: RGB{0x00, 0x00, 0x00},
	Cursor:     RGB{0xaa, 0xaa, 0xaa},
	Palette: [16]RGB{
		{0x00, 0x00, 0x00}, // black
		{0xff, 0x00, 0x00}, // red
		{0x00, 0xff, 0x00}, // green
		{0xaa, 0x55, 0x00}, // brown
		{0x00, 0x00, 0xff}, // blue
		{0xaa, 0x00, 0xaa}, // magenta
		{0x00, 0xff, 0xff}, // cyan
		{0xaa, 0xaa, 0xaa}, // gray
		{0x55, 0x55, 0x55}, // dark gray
		{0xff, 0x55, 0x55}, // light red
		{0x55, 0xff, 0x55}, // light green
		{0xff, 0xff, 0x55}, // yellow
		{0x55, 0x55, 0xff}, // light blue
		{0xff, 0x55, 0xff}, // light magenta
		{0x55, 0xff, 0xff}, // light cyan
		{0xff, 0xff, 0xff}, // white
	},
}

// asciinemaTheme matches the default theme of the asciinema web player.
var asciinemaTheme = &Theme{
	Name:       "asciinema",
	Foreground: RGB{0xcc, 0xcc, 0xcc},
	Background: RGB{0x12, 0x13, 0x14},
	Cursor:     RGB{0xcc, 0xcc, 0xcc},
	Palette: [16]RGB{
		{0x00, 0x00, 0x00},
		{0xdd, 0x3c, 0x69},
		{0x4e, 0xbf, 0x22},
		{0xdd, 0xaf, 0x3c},
		{0x26, 0xb0, 0xd7},
		{0xb9, 0x54, 0xe1},
		{0x54, 0xe1, 0xb9},
		{0xd9, 0xd9, 0xd9},
		{0x4d, 0x4d, 0x4d},
		{0xdd, 0x3c, 0x69},
		{0x4e, 0xbf, 0x22},
		{0xdd, 0xaf, 0x3c},
		{0x26, 0xb0, 0xd7},
		{0xb9, 0x54, 0xe1},
		{0x54, 0xe1, 0xb9},
		{0xff, 0xff, 0xff},
	},
}

var builtinThemes = []*Theme{cgaTheme, asciinemaTheme}

// builtinThemeNames returns the names of the builtin themes, for error
// messages and the colors subcommand.
func builtinThemeNames() []string {
	names := make([]string, len(builtinThemes))
	for i, t := range builtinThemes {
		names[i] = t.Name
	}
	return names
}

// lookupTheme resolves a -theme value: a builtin theme name, or the path
// of a YAML theme file.
func lookupTheme(name string) (*Theme, error) {
	for _, t := range builtinThemes {
		if t.Name == name {
			return t, nil
		}
	}
	if _, err := os.Stat(name); err == nil {
		return LoadThemeFile(name)
	}
	return nil, fmt.Errorf("unknown theme %q (builtin themes: %s, or pass a YAML theme file)",
		name, strings.Join(builtinThemeNames(), ", "))
}

// themeFile is the YAML shape of a custom theme. Omitted fields keep the
// cga theme's values.
type themeFile struct {
	Foreground string   `yaml:"foreground"`
	Background string   `yaml:"background"`
	Cursor     string   `yaml:"cursor"`
	Palette    []string `yaml:"palette"`
}

// LoadThemeFile reads a YAML theme file. Colors are CSS hex or named
// colors; palette, when present, must list exactly 16 entries.
func LoadThemeFile(path string) (*Theme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening theme file: %w", err)
	}
	defer f.Close()

	var raw themeFile
	dec := yaml.NewDecoder(f)
	dec.SetStrict(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing theme file %s: %w", path, err)
	}

	theme := *cgaTheme
	theme.Name = path

	parse := func(field, value string, dst *RGB) error {
		if value == "" {
			return nil
		}
		r, g, b, ok := ParseCSSColor(value)
		if !ok {
			return fmt.Errorf("theme file %s: invalid %s color %q", path, field, value)
		}
		*dst = RGB{r, g, b}
		return nil
	}

	if err := parse("foreground", raw.Foreground, &theme.Foreground); err != nil {
		return nil, err
	}
	if err := parse("background", raw.Background, &theme.Background); err != nil {
		return nil, err
	}
	if err := parse("cursor", raw.Cursor, &theme.Cursor); err != nil {
		return nil, err
	}

	if len(raw.Palette) > 0 {
		if len(raw.Palette) != 16 {
			return nil, fmt.Errorf("theme file %s: palette must have exactly 16 colors, got %d", path, len(raw.Palette))
		}
		for i, value := range raw.Palette {
			if err := parse(fmt.Sprintf("palette[%d]", i), value, &theme.Palette[i]); err != nil {
				return nil, err
			}
		}
	}

	return &theme, nil
}

// xterm256 returns the fixed RGB of palette indices 16-255: the 6x6x6
// color cube, then the 24-step grayscale ramp.
func xterm256(n uint8) RGB {
	if n >= 232 {
		v := uint8(8 + 10*(int(n)-232))
		return RGB{v, v, v}
	}
	level := func(v uint8) uint8 {
		if v == 0 {
			return 0
		}
		return 55 + 40*v
	}
	i := n - 16
	return RGB{level(i / 36), level((i / 6) % 6), level(i % 6)}
}

// ResolveFG resolves a cell foreground to concrete RGB. Bold text on the
// base palette row renders with the bright row, the way classic
// terminals brightened intense text.
func (t *Theme) ResolveFG(c Color, bold bool) RGB {
	switch c.Kind {
	case ColorPalette:
		i := c.Index
		if bold && i < 8 {
			i += 8
		}
		if i < 16 {
			return t.Palette[i]
		}
		return xterm256(i)
	case ColorRGB:
		return RGB{c.R, c.G, c.B}
	default:
		return t.Foreground
	}
}

// ResolveBG resolves a cell background to concrete RGB.
func (t *Theme) ResolveBG(c Color) RGB {
	switch c.Kind {
	case ColorPalette:
		if c.Index < 16 {
			return t.Palette[c.Index]
		}
		return xterm256(c.Index)
	case ColorRGB:
		return RGB{c.R, c.G, c.B}
	default:
		return t.Background
	}
}

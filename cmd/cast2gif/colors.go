package main

import (
	"flag"
	"fmt"
	"log"
	"os"
)

// TrueColorBg returns an ANSI escape sequence for 24-bit background color
func TrueColorBg(r, g, b uint8) string {
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", r, g, b)
}

// TrueColorFg returns an ANSI escape sequence for 24-bit foreground color
func TrueColorFg(r, g, b uint8) string {
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b)
}

// AnsiReset returns the ANSI reset escape sequence
func AnsiReset() string {
	return "\x1b[0m"
}

// ColorSwatch returns a colored block labeled with the color's hex
// value, using contrasting text so the label stays readable.
func ColorSwatch(c RGB) string {
	hex := fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	tr, tg, tb, ok := ParseCSSColor(ContrastingTextColor(hex))
	if !ok {
		return hex
	}
	return TrueColorBg(c.R, c.G, c.B) + TrueColorFg(tr, tg, tb) + " " + hex + " " + AnsiReset()
}

func handleColors() {
	var themeName string
	fs := flag.NewFlagSet("colors", flag.ExitOnError)
	fs.StringVar(&themeName, "theme", "", "show a single theme (builtin name or YAML file)")
	fs.Parse(os.Args[2:])

	names := builtinThemeNames()
	if themeName != "" {
		names = []string{themeName}
	}
	for _, name := range names {
		theme, err := lookupTheme(name)
		if err != nil {
			log.Fatalf("Failed to load theme: %v", err)
		}
		printThemeSwatches(theme)
	}
}

func printThemeSwatches(t *Theme) {
	fmt.Printf("%s:\n", t.Name)
	fmt.Printf("  fg %s  bg %s  cursor %s\n", ColorSwatch(t.Foreground), ColorSwatch(t.Background), ColorSwatch(t.Cursor))
	for row := 0; row < 2; row++ {
		fmt.Print(" ")
		for i := row * 8; i < row*8+8; i++ {
			fmt.Printf(" %s", ColorSwatch(t.Palette[i]))
		}
		fmt.Println()
	}
	fmt.Println()
}

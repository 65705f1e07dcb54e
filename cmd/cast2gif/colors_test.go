package main

import (
	"strings"
	"testing"
)

func TestTrueColorBg(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    string
	}{
		{"black", 0, 0, 0, "\x1b[48;2;0;0;0m"},
		{"white", 255, 255, 255, "\x1b[48;2;255;255;255m"},
		{"red", 255, 0, 0, "\x1b[48;2;255;0;0m"},
		{"asciinema background", 18, 19, 20, "\x1b[48;2;18;19;20m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrueColorBg(tt.r, tt.g, tt.b)
			if got != tt.want {
				t.Errorf("TrueColorBg(%d, %d, %d) = %q, want %q",
					tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestTrueColorFg(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    string
	}{
		{"black", 0, 0, 0, "\x1b[38;2;0;0;0m"},
		{"white", 255, 255, 255, "\x1b[38;2;255;255;255m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrueColorFg(tt.r, tt.g, tt.b)
			if got != tt.want {
				t.Errorf("TrueColorFg(%d, %d, %d) = %q, want %q",
					tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestAnsiReset(t *testing.T) {
	want := "\x1b[0m"
	got := AnsiReset()
	if got != want {
		t.Errorf("AnsiReset() = %q, want %q", got, want)
	}
}

func TestColorSwatch(t *testing.T) {
	tests := []struct {
		name string
		c    RGB
		want string
	}{
		{
			"dark color gets white label",
			RGB{R: 255, G: 0, B: 0},
			"\x1b[48;2;255;0;0m\x1b[38;2;255;255;255m #ff0000 \x1b[0m",
		},
		{
			"light color gets black label",
			RGB{R: 255, G: 255, B: 255},
			"\x1b[48;2;255;255;255m\x1b[38;2;0;0;0m #ffffff \x1b[0m",
		},
		{
			"black",
			RGB{R: 0, G: 0, B: 0},
			"\x1b[48;2;0;0;0m\x1b[38;2;255;255;255m #000000 \x1b[0m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ColorSwatch(tt.c)
			if got != tt.want {
				t.Errorf("ColorSwatch(%v) = %q, want %q", tt.c, got, tt.want)
			}
			if !strings.HasSuffix(got, AnsiReset()) {
				t.Errorf("ColorSwatch(%v) should end with a reset, got %q", tt.c, got)
			}
		})
	}
}

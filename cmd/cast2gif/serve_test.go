package main

import (
	"bytes"
	"image/png"
	"testing"
)

// TestEncodeFramePNGs verifies every frame becomes an independently
// decodable PNG at the grid's pixel size
func TestEncodeFramePNGs(t *testing.T) {
	r := testRenderer(t)
	frames := []Frame{frameOf(t, "A"), frameOf(t, "B"), frameOf(t, "C")}

	pngs, err := encodeFramePNGs(frames, r)
	if err != nil {
		t.Fatalf("encodeFramePNGs: %v", err)
	}
	if len(pngs) != len(frames) {
		t.Fatalf("pngs = %d, want %d", len(pngs), len(frames))
	}
	for i, data := range pngs {
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("frame %d does not decode: %v", i, err)
		}
		if img.Bounds() != r.Bounds(4, 2) {
			t.Errorf("frame %d bounds = %v, want %v", i, img.Bounds(), r.Bounds(4, 2))
		}
	}
}

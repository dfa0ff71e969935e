package placeholder

import (
	"image/color"
	"testing"
)

func TestExtractPalette_Solid(t *testing.T) {
	p := ExtractPalette(solidImage(100, 100, color.NRGBA{255, 255, 255, 255}), 3)

	if len(p.Colors) != 1 {
		t.Fatalf("colors: got %d, want 1", len(p.Colors))
	}
	if p.Colors[0].Hex != "#f0f0f0" {
		t.Errorf("quantized hex: got %s, want #f0f0f0", p.Colors[0].Hex)
	}
	if p.Colors[0].Percentage != 100 {
		t.Errorf("percentage: got %v, want 100", p.Colors[0].Percentage)
	}
	if p.Average.Hex != "#ffffff" {
		t.Errorf("average: got %s, want #ffffff", p.Average.Hex)
	}
	if p.IsDark {
		t.Error("white should not be dark")
	}
}

func TestExtractPalette_Dark(t *testing.T) {
	p := ExtractPalette(solidImage(10, 10, color.NRGBA{20, 20, 40, 255}), 3)
	if !p.IsDark {
		t.Error("near-black navy should be dark")
	}
	if p.Average.RGB != (RGB{20, 20, 40}) {
		t.Errorf("average RGB: got %+v", p.Average.RGB)
	}
}

func TestExtractPalette_Quadrants(t *testing.T) {
	p := ExtractPalette(quadrantImage(64, 64), 10)

	if len(p.Colors) != 4 {
		t.Fatalf("colors: got %d, want 4", len(p.Colors))
	}
	want := map[string]bool{"#f00000": true, "#00f000": true, "#0000f0": true, "#f0f0f0": true}
	for _, c := range p.Colors {
		if !want[c.Hex] {
			t.Errorf("unexpected colour %s", c.Hex)
		}
		if c.Percentage != 25 {
			t.Errorf("%s percentage: got %v, want 25", c.Hex, c.Percentage)
		}
	}
}

func TestExtractPalette_Count(t *testing.T) {
	p := ExtractPalette(quadrantImage(64, 64), 2)
	if len(p.Colors) != 2 {
		t.Errorf("colors: got %d, want 2", len(p.Colors))
	}

	p = ExtractPalette(quadrantImage(64, 64), 0)
	if len(p.Colors) != 4 {
		t.Errorf("default count should allow all 4 colours, got %d", len(p.Colors))
	}
}

func TestExtractPalette_Transparent(t *testing.T) {
	p := ExtractPalette(solidImage(10, 10, color.NRGBA{0, 0, 0, 0}), 3)
	if len(p.Colors) != 0 {
		t.Errorf("fully transparent image should have no colours, got %d", len(p.Colors))
	}
}

func TestNewSwatch_HSL(t *testing.T) {
	tests := []struct {
		rgb  RGB
		want HSL
	}{
		{RGB{255, 0, 0}, HSL{0, 100, 50}},
		{RGB{0, 255, 0}, HSL{120, 100, 50}},
		{RGB{0, 0, 255}, HSL{240, 100, 50}},
		{RGB{128, 128, 128}, HSL{0, 0, 50}},
	}
	for _, tt := range tests {
		got := newSwatch(tt.rgb, 0).HSL
		if got != tt.want {
			t.Errorf("HSL of %+v: got %+v, want %+v", tt.rgb, got, tt.want)
		}
	}
}

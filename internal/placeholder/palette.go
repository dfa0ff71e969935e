package placeholder

import (
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// paletteSampleSize is the thumbnail edge used for colour analysis.
const paletteSampleSize = 64

// RGB holds 8-bit colour components.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSL is hue in degrees (0-360), saturation and lightness in percent (0-100).
type HSL struct {
	H int `json:"h"`
	S int `json:"s"`
	L int `json:"l"`
}

// Swatch is a colour with its share of the analysed pixels.
type Swatch struct {
	Hex        string  `json:"hex"`
	Percentage float64 `json:"percentage"`
	RGB        RGB     `json:"rgb"`
	HSL        HSL     `json:"hsl"`
}

// Palette summarises the colours of a source image. Average is a solid
// stand-in when no placeholder can be produced; IsDark tells whether light
// text reads better on top of it.
type Palette struct {
	Average Swatch   `json:"average"`
	IsDark  bool     `json:"is_dark"`
	Colors  []Swatch `json:"colors"`
}

// ExtractPalette returns the average colour and up to count dominant colours
// of img, sorted by frequency (most common first).
//
// The image is first reduced to a 64x64 thumbnail. Colours are quantised by
// dropping the low 4 bits of each component, so #F0F0F0 and #FAFAFA are
// counted together as #F0F0F0. Transparent pixels are ignored.
func ExtractPalette(img image.Image, count int) *Palette {
	if count <= 0 {
		count = 5
	}

	thumb := imaging.Resize(img, paletteSampleSize, paletteSampleSize, imaging.Box)
	b := thumb.Bounds()

	counts := make(map[RGB]int)
	var sumR, sumG, sumB float64
	total := 0

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := thumb.NRGBAAt(x, y)
			if c.A == 0 {
				continue
			}
			sumR += float64(c.R)
			sumG += float64(c.G)
			sumB += float64(c.B)
			total++

			q := RGB{R: c.R &^ 0x0F, G: c.G &^ 0x0F, B: c.B &^ 0x0F}
			counts[q]++
		}
	}

	if total == 0 {
		return &Palette{Colors: []Swatch{}}
	}

	avg := RGB{
		R: uint8(math.Round(sumR / float64(total))),
		G: uint8(math.Round(sumG / float64(total))),
		B: uint8(math.Round(sumB / float64(total))),
	}

	colors := make([]Swatch, 0, len(counts))
	for c, n := range counts {
		colors = append(colors, newSwatch(c, float64(n)/float64(total)*100))
	}
	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})
	if len(colors) > count {
		colors = colors[:count]
	}

	l, _, _ := toColorful(avg).Lab()
	return &Palette{
		Average: newSwatch(avg, 100),
		IsDark:  l < 0.5,
		Colors:  colors,
	}
}

func toColorful(c RGB) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func newSwatch(c RGB, pct float64) Swatch {
	cf := toColorful(c)
	h, s, l := cf.Hsl()
	return Swatch{
		Hex:        cf.Hex(),
		Percentage: math.Round(pct*100) / 100,
		RGB:        c,
		HSL:        HSL{H: int(math.Round(h)) % 360, S: int(math.Round(s * 100)), L: int(math.Round(l * 100))},
	}
}

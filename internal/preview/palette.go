package preview

import (
	"image/color"
	"math"
)

// DefaultPalette generates n visually distinct colors by walking the hue
// wheel in golden-ratio steps, which avoids adjacent tile ids landing on
// similar hues the way a linear hue sweep would for small n.
func DefaultPalette(n int) []color.RGBA {
	if n <= 0 {
		n = 1
	}
	const goldenRatioConjugate = 0.6180339887498949
	palette := make([]color.RGBA, n)
	hue := 0.0
	for i := range palette {
		palette[i] = hsvToRGBA(hue, 0.55, 0.95)
		hue += goldenRatioConjugate
		hue -= math.Floor(hue)
	}
	return palette
}

func hsvToRGBA(h, s, v float64) color.RGBA {
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return color.RGBA{
		R: uint8(r * 255),
		G: uint8(g * 255),
		B: uint8(b * 255),
		A: 255,
	}
}

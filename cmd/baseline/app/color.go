package app

import (
	"image/color"
	"math"
)

// HSV represents a color in HSV (Hue, Saturation, Value) color space
type HSV struct {
	H float64 // Hue angle in degrees [0-360]
	S float64 // Saturation [0-1]
	V float64 // Value/Brightness [0-1]
}

// RGB converts HSV to RGB color space
func (hsv HSV) RGB() color.RGBA {
	// Fast path for grayscale
	if hsv.S <= 0.0 {
		v := uint8(hsv.V * 255)
		return color.RGBA{R: v, G: v, B: v, A: 255}
	}

	h := math.Mod(hsv.H, 360) / 60
	i := math.Floor(h)
	f := h - i

	p := hsv.V * (1 - hsv.S)
	q := hsv.V * (1 - hsv.S*f)
	t := hsv.V * (1 - hsv.S*(1-f))

	var r, g, b float64
	switch int(i) {
	case 0:
		r, g, b = hsv.V, t, p
	case 1:
		r, g, b = q, hsv.V, p
	case 2:
		r, g, b = p, hsv.V, t
	case 3:
		r, g, b = p, q, hsv.V
	case 4:
		r, g, b = t, p, hsv.V
	default:
		r, g, b = hsv.V, p, q
	}

	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}

// Series colors of the chart
var (
	colorUnfiltered        = HSV{H: 220, S: 0.25, V: 0.65}.RGB() // muted blue
	colorCorrectedInterior = HSV{H: 0, S: 0.90, V: 0.85}.RGB()   // red
	colorCorrectedFull     = HSV{H: 130, S: 0.80, V: 0.60}.RGB() // green
	colorNoiseFloor        = HSV{H: 35, S: 1.00, V: 0.95}.RGB()  // orange

	colorGrid = color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
)

package display

import (
	"errors"
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrUnknownPalette is returned when a palette name is not recognized.
var ErrUnknownPalette = errors.New("unknown palette")

// Palette maps 8-bit intensities to screen colours.
type Palette string

const (
	// PaletteGray shows intensities as shades from black to white. It is the
	// default.
	PaletteGray Palette = "gray"

	// PaletteVessel shows the background in dark blue and blends edges toward a
	// warm highlight, which reads better on dark terminals.
	PaletteVessel Palette = "vessel"
)

// Colours used by PaletteVessel.
const (
	vesselBackground = "#0b1026"
	vesselHighlight  = "#ff6b3d"
)

// ParsePalette validates a palette name. The empty string selects PaletteGray.
func ParsePalette(s string) (Palette, error) {
	switch Palette(s) {
	case "":
		return PaletteGray, nil
	case PaletteGray, PaletteVessel:
		return Palette(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPalette, s)
}

type rgb struct{ r, g, b uint8 }

// table returns the colour of every intensity 0..255.
func (p Palette) table() ([256]rgb, error) {
	var t [256]rgb
	switch p {
	case PaletteGray, "":
		for v := range t {
			s := float64(v) / 255
			r, g, b := colorful.Color{R: s, G: s, B: s}.RGB255()
			t[v] = rgb{r, g, b}
		}
	case PaletteVessel:
		bg, err := colorful.Hex(vesselBackground)
		if err != nil {
			return t, err
		}
		hi, err := colorful.Hex(vesselHighlight)
		if err != nil {
			return t, err
		}
		for v := range t {
			// BlendLab can step slightly out of gamut between two in-gamut ends.
			r, g, b := bg.BlendLab(hi, float64(v)/255).Clamped().RGB255()
			t[v] = rgb{r, g, b}
		}
	default:
		return t, fmt.Errorf("%w: %q", ErrUnknownPalette, string(p))
	}
	return t, nil
}

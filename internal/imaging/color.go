package imaging

import (
	"fmt"
)

// Fixed-point BT.601 luminance weights, scaled by 1<<14.
//
//	Y = 0.299*R + 0.587*G + 0.114*B
const (
	grayShift   = 14
	grayWeightR = 4899
	grayWeightG = 9617
	grayWeightB = 1868
	grayRound   = 1 << (grayShift - 1)
)

// ContrastGain returns the multiplicative factor used by RemapContrast for a
// contrast setting: contrast/127 + 1.
func ContrastGain(contrast float64) float64 {
	return contrast/127 + 1
}

// RemapValue applies the linear contrast/brightness remap to one 8-bit value.
//
// The value is widened to int16 before any arithmetic, the remap is evaluated in
// floating point, the result is clipped to [0, 255] and only then narrowed back
// to uint8 (truncating toward zero). Reordering these steps lets values wrap.
func RemapValue(v uint8, contrast, brightness float64) uint8 {
	wide := int16(v)
	out := float64(wide)*ContrastGain(contrast) - contrast + brightness
	if out < 0 {
		out = 0
	}
	if out > 255 {
		out = 255
	}
	return uint8(out)
}

// IsolateChannel returns a copy of a 3-channel grid in which every channel
// other than keep is set to zero.
func IsolateChannel(g *Grid, keep int) (*Grid, error) {
	if err := g.Validate(3); err != nil {
		return nil, err
	}
	if keep < 0 || keep > 2 {
		return nil, fmt.Errorf("%w: channel %d out of range", ErrInvalidInput, keep)
	}

	out := NewGrid(g.Width, g.Height, 3)
	for i := keep; i < len(g.Pix); i += 3 {
		out.Pix[i] = g.Pix[i]
	}
	return out, nil
}

// RemapContrast applies RemapValue to every channel of every pixel and returns
// the result as a new grid of the same shape.
func RemapContrast(g *Grid, contrast, brightness float64) (*Grid, error) {
	if err := g.Validate(0); err != nil {
		return nil, err
	}

	// 256-entry lookup table; RemapValue is a pure function of the input byte.
	var lut [256]uint8
	for v := 0; v < 256; v++ {
		lut[v] = RemapValue(uint8(v), contrast, brightness)
	}

	out := NewGrid(g.Width, g.Height, g.Channels)
	for i, v := range g.Pix {
		out.Pix[i] = lut[v]
	}
	return out, nil
}

// BGRToGray converts a 3-channel BGR grid to a 1-channel grid with the
// fixed-point BT.601 weights. A 1-channel input is returned as a copy.
func BGRToGray(g *Grid) (*Grid, error) {
	if err := g.Validate(0); err != nil {
		return nil, err
	}
	if g.Channels == 1 {
		return g.Clone(), nil
	}

	out := NewGrid(g.Width, g.Height, 1)
	for i := range out.Pix {
		p := g.Pix[i*3 : i*3+3]
		y := int(p[ChannelBlue])*grayWeightB +
			int(p[ChannelGreen])*grayWeightG +
			int(p[ChannelRed])*grayWeightR
		out.Pix[i] = uint8((y + grayRound) >> grayShift)
	}
	return out, nil
}

// GreenWithContrast keeps only the green channel of a BGR grid, remaps all three
// channels with the contrast/brightness formula and converts the result to gray.
//
// The zeroed channels go through the remap as well, so with a positive
// brightness-contrast offset they contribute a constant floor to the gray value.
func GreenWithContrast(g *Grid, contrast, brightness float64) (*Grid, error) {
	green, err := IsolateChannel(g, ChannelGreen)
	if err != nil {
		return nil, err
	}
	remapped, err := RemapContrast(green, contrast, brightness)
	if err != nil {
		return nil, err
	}
	return BGRToGray(remapped)
}

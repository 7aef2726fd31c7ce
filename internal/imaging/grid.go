package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/clone"
)

// ErrInvalidInput is returned when a grid does not have the shape an operation
// expects (wrong channel count, empty dimensions, short pixel buffer).
var ErrInvalidInput = errors.New("invalid input")

// Channel indices of a 3-channel grid.
const (
	ChannelBlue  = 0
	ChannelGreen = 1
	ChannelRed   = 2
)

// Grid is an 8-bit pixel grid with interleaved channels.
//
// Pixels are stored row-major: the value of channel ch at (x, y) lives at
// Pix[(y*Width+x)*Channels+ch]. Three-channel grids use B, G, R order, so
// channel 0 is blue-like, 1 is green-like and 2 is red-like.
//
// A Grid owns its buffer. Operations in this package never modify their input
// grids; they always allocate a new result.
type Grid struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewGrid allocates a zeroed grid.
func NewGrid(width, height, channels int) *Grid {
	return &Grid{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// FromImage converts any image into a 3-channel BGR grid.
//
// The source is first copied into an RGBA buffer (alpha premultiplied, as the
// standard library does), so the returned grid never shares memory with img.
func FromImage(img image.Image) *Grid {
	src := clone.AsRGBA(img)
	bounds := src.Bounds()
	g := NewGrid(bounds.Dx(), bounds.Dy(), 3)

	for y := 0; y < g.Height; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < g.Width; x++ {
			i := (y*g.Width + x) * 3
			g.Pix[i+ChannelBlue] = row[x*4+2]
			g.Pix[i+ChannelGreen] = row[x*4+1]
			g.Pix[i+ChannelRed] = row[x*4+0]
		}
	}
	return g
}

// GrayFromImage converts any image into a 1-channel grid using the same
// luminance weights as BGRToGray. An image with no pixels is rejected with
// ErrInvalidInput.
func GrayFromImage(img image.Image) (*Grid, error) {
	return BGRToGray(FromImage(img))
}

// Clone returns a deep copy of g. Cloning a nil grid returns nil.
func (g *Grid) Clone() *Grid {
	if g == nil {
		return nil
	}
	pix := make([]uint8, len(g.Pix))
	copy(pix, g.Pix)
	return &Grid{Width: g.Width, Height: g.Height, Channels: g.Channels, Pix: pix}
}

// At returns the value of channel ch at (x, y).
func (g *Grid) At(x, y, ch int) uint8 {
	return g.Pix[(y*g.Width+x)*g.Channels+ch]
}

// Set stores v in channel ch at (x, y).
func (g *Grid) Set(x, y, ch int, v uint8) {
	g.Pix[(y*g.Width+x)*g.Channels+ch] = v
}

// Bounds returns the grid rectangle anchored at the origin.
func (g *Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Width, g.Height)
}

// SameSize reports whether g and other have identical width and height.
func (g *Grid) SameSize(other *Grid) bool {
	return g.Width == other.Width && g.Height == other.Height
}

// Validate checks the grid shape. channels is the required channel count, or 0
// to accept any count.
func (g *Grid) Validate(channels int) error {
	if g == nil {
		return fmt.Errorf("%w: nil grid", ErrInvalidInput)
	}
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: empty grid %dx%d", ErrInvalidInput, g.Width, g.Height)
	}
	if g.Channels != 1 && g.Channels != 3 {
		return fmt.Errorf("%w: unsupported channel count %d", ErrInvalidInput, g.Channels)
	}
	if channels != 0 && g.Channels != channels {
		return fmt.Errorf("%w: got %d channels, want %d", ErrInvalidInput, g.Channels, channels)
	}
	if want := g.Width * g.Height * g.Channels; len(g.Pix) != want {
		return fmt.Errorf("%w: pixel buffer has %d bytes, want %d", ErrInvalidInput, len(g.Pix), want)
	}
	return nil
}

// CountNonZero returns the number of pixels with at least one non-zero channel.
func (g *Grid) CountNonZero() int {
	n := 0
	for i := 0; i < len(g.Pix); i += g.Channels {
		for ch := 0; ch < g.Channels; ch++ {
			if g.Pix[i+ch] != 0 {
				n++
				break
			}
		}
	}
	return n
}

// ToImage converts the grid to a standard library image: *image.Gray for one
// channel and *image.RGBA (opaque) for three. The result owns its memory.
func (g *Grid) ToImage() image.Image {
	if g.Channels == 1 {
		img := image.NewGray(g.Bounds())
		for y := 0; y < g.Height; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+g.Width], g.Pix[y*g.Width:(y+1)*g.Width])
		}
		return img
	}

	img := image.NewRGBA(g.Bounds())
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: g.At(x, y, ChannelRed),
				G: g.At(x, y, ChannelGreen),
				B: g.At(x, y, ChannelBlue),
				A: 255,
			})
		}
	}
	return img
}

// grayFromRGBA copies the red channel of img into a 1-channel grid. It is used
// to read back results of bild filters, which return RGBA with equal channels
// when fed a gray image.
func grayFromRGBA(img *image.RGBA) *Grid {
	bounds := img.Bounds()
	g := NewGrid(bounds.Dx(), bounds.Dy(), 1)
	for y := 0; y < g.Height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < g.Width; x++ {
			g.Pix[y*g.Width+x] = row[x*4]
		}
	}
	return g
}

package display

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"

	grid "github.com/ironsheep/fundus-vessels/internal/imaging"
)

// upperHalf is drawn with the foreground set to the upper pixel and the
// background set to the lower one.
const upperHalf = "▀"

// Options controls terminal rendering.
type Options struct {
	// Width is the number of character columns. Zero or anything wider than the
	// grid draws one column per pixel.
	Width int `yaml:"width" json:"width"`

	// Palette selects the colour mapping.
	Palette Palette `yaml:"palette" json:"palette"`
}

// DefaultOptions returns an 80 column grayscale preview.
func DefaultOptions() Options {
	return Options{Width: 80, Palette: PaletteGray}
}

// Render draws g to w as ANSI true colour text.
//
// A 3-channel grid is converted to gray first. The grid is downsampled with a
// box filter to opts.Width columns, keeping its aspect ratio; since a cell is
// twice as tall as it is wide and holds two pixel rows, pixels stay square on
// screen. Every line ends with a colour reset.
func Render(w io.Writer, g *grid.Grid, opts Options) error {
	if err := g.Validate(0); err != nil {
		return err
	}
	colors, err := opts.Palette.table()
	if err != nil {
		return err
	}
	gray, err := grid.BGRToGray(g)
	if err != nil {
		return err
	}

	img := scale(gray.ToImage(), opts.Width)
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	bw := bufio.NewWriter(w)
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			top := colors[img.Pix[y*img.Stride+x*4]]
			fmt.Fprintf(bw, "\x1b[38;2;%d;%d;%dm", top.r, top.g, top.b)
			if y+1 < height {
				bottom := colors[img.Pix[(y+1)*img.Stride+x*4]]
				fmt.Fprintf(bw, "\x1b[48;2;%d;%d;%dm", bottom.r, bottom.g, bottom.b)
			} else {
				bw.WriteString("\x1b[49m")
			}
			bw.WriteString(upperHalf)
		}
		bw.WriteString("\x1b[0m\n")
	}
	return bw.Flush()
}

// scale resizes img to the given column count. The result is always an NRGBA
// copy so callers can index Pix directly.
func scale(img image.Image, columns int) *image.NRGBA {
	b := img.Bounds()
	if columns <= 0 || columns >= b.Dx() {
		return imaging.Clone(img)
	}
	rows := (b.Dy()*columns + b.Dx()/2) / b.Dx()
	if rows < 1 {
		rows = 1
	}
	return imaging.Resize(img, columns, rows, imaging.Box)
}

// EncodePNG encodes g as a PNG: 8-bit gray for one channel, RGBA for three.
func EncodePNG(g *grid.Grid) ([]byte, error) {
	if err := g.Validate(0); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, g.ToImage()); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeBase64PNG is EncodePNG followed by standard base64 encoding, the form
// MCP image content expects.
func EncodeBase64PNG(g *grid.Grid) (string, error) {
	data, err := EncodePNG(g)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

package imaging

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// createInMemoryImage creates an image filled with a single color.
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// solidGrid returns a 3-channel grid filled with the given B, G, R values.
func solidGrid(width, height int, b, g, r uint8) *Grid {
	grid := NewGrid(width, height, 3)
	for i := 0; i < len(grid.Pix); i += 3 {
		grid.Pix[i+ChannelBlue] = b
		grid.Pix[i+ChannelGreen] = g
		grid.Pix[i+ChannelRed] = r
	}
	return grid
}

func TestNewGrid(t *testing.T) {
	g := NewGrid(4, 3, 3)
	if g.Width != 4 || g.Height != 3 || g.Channels != 3 {
		t.Fatalf("shape: got %dx%dx%d, want 4x3x3", g.Width, g.Height, g.Channels)
	}
	if len(g.Pix) != 36 {
		t.Errorf("len(Pix): got %d, want 36", len(g.Pix))
	}
	if err := g.Validate(3); err != nil {
		t.Errorf("Validate: unexpected error %v", err)
	}
}

func TestFromImage_ChannelOrder(t *testing.T) {
	img := createInMemoryImage(2, 2, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	g := FromImage(img)

	if g.Channels != 3 {
		t.Fatalf("Channels: got %d, want 3", g.Channels)
	}
	if got := g.At(1, 1, ChannelBlue); got != 50 {
		t.Errorf("blue: got %d, want 50", got)
	}
	if got := g.At(1, 1, ChannelGreen); got != 100 {
		t.Errorf("green: got %d, want 100", got)
	}
	if got := g.At(1, 1, ChannelRed); got != 200 {
		t.Errorf("red: got %d, want 200", got)
	}
}

func TestFromImage_OffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 20, 13, 22))
	img.Set(10, 20, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	g := FromImage(img)

	if g.Width != 3 || g.Height != 2 {
		t.Fatalf("dimensions: got %dx%d, want 3x2", g.Width, g.Height)
	}
	if g.At(0, 0, ChannelRed) != 1 || g.At(0, 0, ChannelBlue) != 3 {
		t.Errorf("top-left pixel: got B=%d R=%d, want B=3 R=1", g.At(0, 0, ChannelBlue), g.At(0, 0, ChannelRed))
	}
}

func TestGrid_Clone(t *testing.T) {
	g := solidGrid(3, 3, 10, 20, 30)
	c := g.Clone()

	c.Set(0, 0, ChannelGreen, 99)
	if g.At(0, 0, ChannelGreen) != 20 {
		t.Error("modifying the clone changed the original")
	}

	var nilGrid *Grid
	if nilGrid.Clone() != nil {
		t.Error("Clone of nil grid should be nil")
	}
}

func TestGrid_Validate(t *testing.T) {
	tests := []struct {
		name     string
		grid     *Grid
		channels int
		wantErr  bool
	}{
		{"valid color", NewGrid(2, 2, 3), 3, false},
		{"valid gray any", NewGrid(2, 2, 1), 0, false},
		{"nil grid", nil, 0, true},
		{"zero width", NewGrid(0, 2, 1), 0, true},
		{"wrong channel count", NewGrid(2, 2, 1), 3, true},
		{"unsupported channels", &Grid{Width: 1, Height: 1, Channels: 4, Pix: make([]uint8, 4)}, 0, true},
		{"short buffer", &Grid{Width: 2, Height: 2, Channels: 3, Pix: make([]uint8, 5)}, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.grid.Validate(tt.channels)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("error %v does not wrap ErrInvalidInput", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestGrid_CountNonZero(t *testing.T) {
	g := NewGrid(4, 4, 1)
	g.Set(0, 0, 0, 1)
	g.Set(3, 3, 0, 255)
	if got := g.CountNonZero(); got != 2 {
		t.Errorf("gray: got %d, want 2", got)
	}

	c := NewGrid(2, 2, 3)
	c.Set(1, 0, ChannelRed, 7)
	c.Set(1, 0, ChannelBlue, 7)
	if got := c.CountNonZero(); got != 1 {
		t.Errorf("color: got %d, want 1", got)
	}
}

func TestGrid_ToImage(t *testing.T) {
	gray := NewGrid(3, 2, 1)
	gray.Set(2, 1, 0, 200)

	img, ok := gray.ToImage().(*image.Gray)
	if !ok {
		t.Fatalf("1-channel ToImage: got %T, want *image.Gray", gray.ToImage())
	}
	if img.GrayAt(2, 1).Y != 200 {
		t.Errorf("gray pixel: got %d, want 200", img.GrayAt(2, 1).Y)
	}

	color3 := solidGrid(2, 2, 1, 2, 3)
	rgba, ok := color3.ToImage().(*image.RGBA)
	if !ok {
		t.Fatalf("3-channel ToImage: got %T, want *image.RGBA", color3.ToImage())
	}
	if c := rgba.RGBAAt(0, 0); c.R != 3 || c.G != 2 || c.B != 1 || c.A != 255 {
		t.Errorf("rgba pixel: got %+v, want {R:3 G:2 B:1 A:255}", c)
	}
}

func TestGrayFromImage(t *testing.T) {
	g, err := GrayFromImage(createInMemoryImage(3, 3, color.White))
	if err != nil {
		t.Fatalf("GrayFromImage failed: %v", err)
	}
	if g.Channels != 1 {
		t.Fatalf("Channels: got %d, want 1", g.Channels)
	}
	if g.At(1, 1, 0) != 255 {
		t.Errorf("white: got %d, want 255", g.At(1, 1, 0))
	}
}

func TestGrayFromImage_Empty(t *testing.T) {
	for _, img := range []image.Image{
		image.NewRGBA(image.Rect(0, 0, 0, 0)),
		image.NewGray(image.Rect(0, 0, 4, 0)),
	} {
		g, err := GrayFromImage(img)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%T %v: got err %v, want ErrInvalidInput", img, img.Bounds(), err)
		}
		if g != nil {
			t.Errorf("%T %v: got grid %v, want nil", img, img.Bounds(), g)
		}
	}
}

package imaging

import (
	"errors"
	"testing"
)

func TestMedianBlur_RemovesSpeckle(t *testing.T) {
	g := NewGrid(15, 15, 1)
	g.Set(7, 7, 0, 255)
	g.Set(2, 11, 0, 255)

	out, err := MedianBlur(g, 5)
	if err != nil {
		t.Fatalf("MedianBlur failed: %v", err)
	}
	if n := out.CountNonZero(); n != 0 {
		t.Errorf("isolated pixels should be removed, got %d", n)
	}
}

func TestMedianBlur_KeepsLargeStructures(t *testing.T) {
	// A 5-pixel wide vertical band survives a 5x5 median.
	g := grayGrid(20, 20, func(x, y int) uint8 {
		if x >= 8 && x <= 12 {
			return 255
		}
		return 0
	})

	out, err := MedianBlur(g, 5)
	if err != nil {
		t.Fatalf("MedianBlur failed: %v", err)
	}
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			want := uint8(0)
			if x >= 8 && x <= 12 {
				want = 255
			}
			if got := out.At(x, y, 0); got != want {
				t.Fatalf("pixel (%d,%d): got %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestMedianBlur_Shape(t *testing.T) {
	g := grayGrid(13, 7, func(x, y int) uint8 { return uint8(x + y) })

	out, err := MedianBlur(g, 3)
	if err != nil {
		t.Fatalf("MedianBlur failed: %v", err)
	}
	if out.Width != 13 || out.Height != 7 || out.Channels != 1 {
		t.Errorf("shape: got %dx%dx%d, want 13x7x1", out.Width, out.Height, out.Channels)
	}
}

func TestMedianBlur_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		grid  *Grid
		ksize int
	}{
		{"even size", NewGrid(5, 5, 1), 4},
		{"too small", NewGrid(5, 5, 1), 1},
		{"color grid", NewGrid(5, 5, 3), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := MedianBlur(tt.grid, tt.ksize); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("got %v, want ErrInvalidInput", err)
			}
		})
	}
}

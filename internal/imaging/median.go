package imaging

import (
	"fmt"

	"github.com/anthonynsimon/bild/effect"
)

// MedianBlur replaces each pixel of a 1-channel grid with the median of the
// ksize x ksize square around it. Borders are replicated. ksize must be odd and
// at least 3.
func MedianBlur(g *Grid, ksize int) (*Grid, error) {
	if err := g.Validate(1); err != nil {
		return nil, err
	}
	if ksize < 3 || ksize%2 == 0 {
		return nil, fmt.Errorf("%w: median aperture %d, want an odd size >= 3", ErrInvalidInput, ksize)
	}

	// bild's window length is 2*radius+1 and its padding extends edge pixels.
	filtered := effect.Median(g.ToImage(), float64(ksize/2))
	return grayFromRGBA(filtered), nil
}

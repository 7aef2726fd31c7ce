package imaging

import (
	"fmt"
	"math"
	"strings"

	"github.com/anthonynsimon/bild/parallel"
)

// StructuringElement is a binary neighbourhood mask used by morphological
// operations. The anchor is the centre cell (Width/2, Height/2).
type StructuringElement struct {
	Width  int
	Height int
	Cells  []bool
}

// Ellipse builds an elliptical structuring element inscribed in a
// width x height box.
//
// Row i spans the columns c-dx .. c+dx where c = width/2, r = height/2,
// dy = i-r and dx = round(c * sqrt(1 - dy²/r²)). A 3x3 ellipse is therefore a
// plus sign, and the first and last rows of a 9x9 ellipse hold a single cell.
func Ellipse(width, height int) (*StructuringElement, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: structuring element %dx%d", ErrInvalidInput, width, height)
	}

	se := &StructuringElement{Width: width, Height: height, Cells: make([]bool, width*height)}
	r, c := height/2, width/2
	invR2 := 0.0
	if r > 0 {
		invR2 = 1 / float64(r*r)
	}

	for i := 0; i < height; i++ {
		dy := i - r
		if dy < -r || dy > r {
			continue
		}
		dx := int(math.RoundToEven(float64(c) * math.Sqrt(float64(r*r-dy*dy)*invR2)))
		j1 := c - dx
		if j1 < 0 {
			j1 = 0
		}
		j2 := c + dx + 1
		if j2 > width {
			j2 = width
		}
		for j := j1; j < j2; j++ {
			se.Cells[i*width+j] = true
		}
	}
	return se, nil
}

// Rect builds a fully populated rectangular structuring element.
func Rect(width, height int) (*StructuringElement, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: structuring element %dx%d", ErrInvalidInput, width, height)
	}
	se := &StructuringElement{Width: width, Height: height, Cells: make([]bool, width*height)}
	for i := range se.Cells {
		se.Cells[i] = true
	}
	return se, nil
}

// String renders the element as rows of '#' and '.', mostly for test failures.
func (se *StructuringElement) String() string {
	var b strings.Builder
	for y := 0; y < se.Height; y++ {
		for x := 0; x < se.Width; x++ {
			if se.Cells[y*se.Width+x] {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

type offset struct{ dx, dy int }

func (se *StructuringElement) offsets() []offset {
	ax, ay := se.Width/2, se.Height/2
	offs := make([]offset, 0, len(se.Cells))
	for y := 0; y < se.Height; y++ {
		for x := 0; x < se.Width; x++ {
			if se.Cells[y*se.Width+x] {
				offs = append(offs, offset{dx: x - ax, dy: y - ay})
			}
		}
	}
	return offs
}

// Dilate replaces each pixel of a 1-channel grid with the maximum over the
// cells of se centred on it. Neighbours that fall outside the grid are ignored.
// With an element that contains its anchor, as every Ellipse does, no pixel
// ever gets darker.
func Dilate(g *Grid, se *StructuringElement) (*Grid, error) {
	if err := g.Validate(1); err != nil {
		return nil, err
	}
	if se == nil || len(se.Cells) != se.Width*se.Height {
		return nil, fmt.Errorf("%w: malformed structuring element", ErrInvalidInput)
	}

	offs := se.offsets()
	width, height := g.Width, g.Height
	out := NewGrid(width, height, 1)

	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < width; x++ {
				var best uint8
				for _, o := range offs {
					px, py := x+o.dx, y+o.dy
					if px < 0 || py < 0 || px >= width || py >= height {
						continue
					}
					if v := g.Pix[py*width+px]; v > best {
						best = v
						if best == 255 {
							break
						}
					}
				}
				out.Pix[y*width+x] = best
			}
		}
	})
	return out, nil
}

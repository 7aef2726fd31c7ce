package imaging

import (
	"fmt"
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// tan(22.5°) and tan(67.5°), the boundaries between quantized gradient
// directions used by non-maximum suppression.
const (
	tan22 = 0.41421356237309504880
	tan67 = 2.41421356237309504880
)

// sobelKernels holds the separable derivative and smoothing kernels for each
// supported aperture size.
var sobelKernels = map[int]struct{ deriv, smooth []int }{
	3: {deriv: []int{-1, 0, 1}, smooth: []int{1, 2, 1}},
	5: {deriv: []int{-1, -2, 0, 2, 1}, smooth: []int{1, 4, 6, 4, 1}},
	7: {deriv: []int{-1, -4, -5, 0, 5, 4, 1}, smooth: []int{1, 6, 15, 20, 15, 6, 1}},
}

// Canny performs Canny edge detection on a 1-channel grid.
//
// Parameters:
//   - g: Source grid, must have exactly one channel.
//   - low: Low hysteresis threshold. Pixels whose gradient magnitude is not
//     above it are never edges.
//   - high: High hysteresis threshold. Local maxima above it seed edges.
//     The two thresholds are swapped if given in the wrong order.
//   - aperture: Sobel aperture size, one of 3, 5 or 7.
//   - l2: When true the gradient magnitude is sqrt(dx²+dy²); otherwise the
//     cheaper |dx|+|dy| approximation is used.
//
// Returns a 1-channel grid of the same size where edges are 255 and everything
// else is 0.
//
// # Algorithm
//
//  1. Gradient computation: separable Sobel derivatives of the requested
//     aperture, borders replicated. No smoothing is applied beforehand.
//
//  2. Non-maximum suppression: the gradient direction is quantized to
//     horizontal, vertical or one of the two diagonals and a pixel survives only
//     if its magnitude is a local maximum along that direction. Magnitudes
//     outside the grid count as zero.
//
//  3. Hysteresis thresholding:
//     - Surviving pixels above high are strong edges
//     - Surviving pixels above low are weak edges, kept only when
//     8-connected to a strong edge through other weak edges
//     - Everything else is discarded
func Canny(g *Grid, low, high float64, aperture int, l2 bool) (*Grid, error) {
	if err := g.Validate(1); err != nil {
		return nil, err
	}
	kernels, ok := sobelKernels[aperture]
	if !ok {
		return nil, fmt.Errorf("%w: aperture size %d, want 3, 5 or 7", ErrInvalidInput, aperture)
	}
	if low > high {
		low, high = high, low
	}

	width, height := g.Width, g.Height
	dx := sobel(g, kernels.deriv, kernels.smooth)
	dy := sobel(g, kernels.smooth, kernels.deriv)

	magnitude := make([]float64, width*height)
	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < width; x++ {
				i := y*width + x
				gx, gy := float64(dx[i]), float64(dy[i])
				if l2 {
					magnitude[i] = math.Sqrt(gx*gx + gy*gy)
				} else {
					magnitude[i] = math.Abs(gx) + math.Abs(gy)
				}
			}
		}
	})

	mag := func(x, y int) float64 {
		if x < 0 || y < 0 || x >= width || y >= height {
			return 0
		}
		return magnitude[y*width+x]
	}

	// Non-maximum suppression
	const (
		candidate = iota
		notEdge
		edge
	)
	state := make([]uint8, width*height)
	stack := make([]int, 0, width)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			m := magnitude[i]
			state[i] = notEdge
			if m <= low {
				continue
			}

			gx, gy := float64(dx[i]), float64(dy[i])
			ax, ay := math.Abs(gx), math.Abs(gy)

			var isMax bool
			switch {
			case ay < ax*tan22:
				isMax = m > mag(x-1, y) && m >= mag(x+1, y)
			case ay > ax*tan67:
				isMax = m > mag(x, y-1) && m >= mag(x, y+1)
			default:
				s := 1
				if (gx < 0) != (gy < 0) {
					s = -1
				}
				isMax = m > mag(x-s, y-1) && m > mag(x+s, y+1)
			}
			if !isMax {
				continue
			}

			if m > high {
				state[i] = edge
				stack = append(stack, i)
			} else {
				state[i] = candidate
			}
		}
	}

	// Double threshold and edge tracking by hysteresis
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width

		for ky := -1; ky <= 1; ky++ {
			for kx := -1; kx <= 1; kx++ {
				px, py := x+kx, y+ky
				if px < 0 || py < 0 || px >= width || py >= height {
					continue
				}
				j := py*width + px
				if state[j] == candidate {
					state[j] = edge
					stack = append(stack, j)
				}
			}
		}
	}

	result := NewGrid(width, height, 1)
	for i, s := range state {
		if s == edge {
			result.Pix[i] = 255
		}
	}
	return result, nil
}

// sobel convolves g with the separable kernel kx (along rows) followed by ky
// (along columns). Borders are replicated. The result is unnormalized.
func sobel(g *Grid, kx, ky []int) []int32 {
	width, height := g.Width, g.Height
	rx, ry := len(kx)/2, len(ky)/2

	horizontal := make([]int32, width*height)
	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			row := g.Pix[y*width : (y+1)*width]
			for x := 0; x < width; x++ {
				var sum int32
				for k, w := range kx {
					if w == 0 {
						continue
					}
					sum += int32(w) * int32(row[clamp(x+k-rx, 0, width-1)])
				}
				horizontal[y*width+x] = sum
			}
		}
	})

	out := make([]int32, width*height)
	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < width; x++ {
				var sum int32
				for k, w := range ky {
					if w == 0 {
						continue
					}
					sum += int32(w) * horizontal[clamp(y+k-ry, 0, height-1)*width+x]
				}
				out[y*width+x] = sum
			}
		}
	})
	return out
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

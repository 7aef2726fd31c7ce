// Package imaging provides the pixel grid type and the classical image
// operations used to extract vessel-like edges from fundus photographs.
//
// All operations work on *Grid values: 8-bit, row-major, interleaved channels,
// with three-channel grids stored in B, G, R order. Coordinates are 0-based with
// (0,0) at the top-left corner.
//
// # Operations
//
//   - IsolateChannel, RemapContrast, BGRToGray and GreenWithContrast for the
//     color stage
//   - Canny for edge detection with a configurable Sobel aperture
//   - Ellipse, Rect and Dilate for morphology
//   - MedianBlur for speckle removal
//
// # Ownership
//
// No function in this package writes to a grid it receives. Every result is a
// freshly allocated grid, so callers may keep and reuse their inputs.
//
// # Thread Safety
//
// Operations are stateless and safe to call concurrently. Canny, Dilate and
// MedianBlur split their rows across goroutines internally.
//
// # Error Handling
//
// Functions return an error wrapping ErrInvalidInput when a grid has the wrong
// channel count, empty dimensions or an inconsistent pixel buffer, and when a
// parameter such as an aperture size is out of range.
package imaging

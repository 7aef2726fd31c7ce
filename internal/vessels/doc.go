// Package vessels turns a fundus photograph into a thickened edge map that
// outlines blood-vessel structures.
//
// The work happens in five fixed stages, each feeding the next:
//
//  1. Keep only the green channel, remap contrast and brightness, convert to gray
//  2. Canny edge detection (thresholds 150/255, Sobel aperture 5, L2 magnitude)
//  3. Dilation with a 3x3 elliptical structuring element
//  4. 5x5 median blur to drop isolated specks
//  5. Dilation with a 9x9 elliptical structuring element
//
// A Recognition owns deep copies of the photograph, the field-of-view mask and
// the expert annotation it was built from, so the caller's grids are never
// aliased or written. The mask and the annotation are carried along for later
// masking and scoring steps but are not read by any stage today.
package vessels

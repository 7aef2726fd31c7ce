package display

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	grid "github.com/ironsheep/fundus-vessels/internal/imaging"
)

// Regions lists the names accepted by RegionRect.
var Regions = []string{
	"top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half",
	"center",
}

// ParseRegion reports whether region is one of Regions.
func ParseRegion(region string) error {
	for _, r := range Regions {
		if r == region {
			return nil
		}
	}
	return fmt.Errorf("unknown region: %s", region)
}

// RegionRect returns the rectangle of a named region of a width x height
// image. "center" is the middle half in both directions.
func RegionRect(width, height int, region string) (image.Rectangle, error) {
	midX, midY := width/2, height/2

	switch region {
	case "top-left":
		return image.Rect(0, 0, midX, midY), nil
	case "top-right":
		return image.Rect(midX, 0, width, midY), nil
	case "bottom-left":
		return image.Rect(0, midY, midX, height), nil
	case "bottom-right":
		return image.Rect(midX, midY, width, height), nil
	case "top-half":
		return image.Rect(0, 0, width, midY), nil
	case "bottom-half":
		return image.Rect(0, midY, width, height), nil
	case "left-half":
		return image.Rect(0, 0, midX, height), nil
	case "right-half":
		return image.Rect(midX, 0, width, height), nil
	case "center":
		qW, qH := width/4, height/4
		return image.Rect(qW, qH, width-qW, height-qH), nil
	}
	return image.Rectangle{}, ParseRegion(region)
}

// Crop cuts r out of g and optionally magnifies it, so that a part of an edge
// map can be inspected at full detail. A scale of 0 or 1 keeps the size.
//
// Scaling uses nearest neighbour sampling, which keeps an edge map binary.
// The result has the same channel count as g.
func Crop(g *grid.Grid, r image.Rectangle, scale float64) (*grid.Grid, error) {
	if err := g.Validate(0); err != nil {
		return nil, err
	}
	if !r.In(g.Bounds()) {
		return nil, fmt.Errorf("%w: crop region %v outside image bounds %v", grid.ErrInvalidInput, r, g.Bounds())
	}
	if r.Empty() {
		return nil, fmt.Errorf("%w: empty crop region %v", grid.ErrInvalidInput, r)
	}
	if scale < 0 {
		return nil, fmt.Errorf("%w: negative scale %v", grid.ErrInvalidInput, scale)
	}

	cropped := imaging.Crop(g.ToImage(), r)
	if scale != 0 && scale != 1 {
		w := int(float64(r.Dx()) * scale)
		h := int(float64(r.Dy()) * scale)
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("%w: scale %v leaves nothing of %v", grid.ErrInvalidInput, scale, r)
		}
		cropped = imaging.Resize(cropped, w, h, imaging.NearestNeighbor)
	}

	if g.Channels == 1 {
		return grid.GrayFromImage(cropped)
	}
	return grid.FromImage(cropped), nil
}

package dataset

import (
	"fmt"

	"github.com/ironsheep/fundus-vessels/internal/imaging"
)

// Case holds the three decoded images of one case identifier.
type Case struct {
	ID         string
	Photograph *imaging.Grid
	Mask       *imaging.Grid
	Expert     *imaging.Grid
}

// CheckDimensions reports whether the mask and the expert annotation have the
// same width and height as the photograph. Nothing in the recognition pipeline
// depends on this yet; any later per-pixel comparison will.
func (c *Case) CheckDimensions() error {
	if c.Photograph == nil {
		return fmt.Errorf("case %q: no photograph", c.ID)
	}
	for _, other := range []struct {
		role Role
		grid *imaging.Grid
	}{
		{FieldOfViewMask, c.Mask},
		{ExpertAnnotation, c.Expert},
	} {
		if other.grid == nil {
			continue
		}
		if !c.Photograph.SameSize(other.grid) {
			return fmt.Errorf("case %q: %s is %dx%d, photograph is %dx%d",
				c.ID, other.role, other.grid.Width, other.grid.Height,
				c.Photograph.Width, c.Photograph.Height)
		}
	}
	return nil
}

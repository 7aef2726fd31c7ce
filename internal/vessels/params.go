package vessels

import (
	"fmt"

	"github.com/ironsheep/fundus-vessels/internal/imaging"
)

// Params holds the constants of the five recognition stages.
type Params struct {
	Contrast   float64 `yaml:"contrast" json:"contrast"`
	Brightness float64 `yaml:"brightness" json:"brightness"`

	CannyLow      float64 `yaml:"cannyLow" json:"canny_low"`
	CannyHigh     float64 `yaml:"cannyHigh" json:"canny_high"`
	CannyAperture int     `yaml:"cannyAperture" json:"canny_aperture"`
	CannyL2       bool    `yaml:"cannyL2" json:"canny_l2"`

	FirstDilation  int `yaml:"firstDilation" json:"first_dilation"`
	MedianSize     int `yaml:"medianSize" json:"median_size"`
	SecondDilation int `yaml:"secondDilation" json:"second_dilation"`
}

// DefaultParams returns the tuned stage constants.
func DefaultParams() Params {
	return Params{
		Contrast:       15,
		Brightness:     50,
		CannyLow:       150,
		CannyHigh:      255,
		CannyAperture:  5,
		CannyL2:        true,
		FirstDilation:  3,
		MedianSize:     5,
		SecondDilation: 9,
	}
}

// Validate checks that every stage can run with these parameters.
func (p Params) Validate() error {
	switch p.CannyAperture {
	case 3, 5, 7:
	default:
		return fmt.Errorf("%w: canny aperture %d, want 3, 5 or 7", imaging.ErrInvalidInput, p.CannyAperture)
	}
	if p.CannyLow < 0 || p.CannyHigh < 0 {
		return fmt.Errorf("%w: negative canny threshold", imaging.ErrInvalidInput)
	}
	if p.MedianSize < 3 || p.MedianSize%2 == 0 {
		return fmt.Errorf("%w: median size %d, want an odd size >= 3", imaging.ErrInvalidInput, p.MedianSize)
	}
	if p.FirstDilation <= 0 || p.SecondDilation <= 0 {
		return fmt.Errorf("%w: dilation sizes must be positive", imaging.ErrInvalidInput)
	}
	return nil
}

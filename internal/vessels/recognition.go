package vessels

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/fundus-vessels/internal/imaging"
)

// Option configures a Recognition.
type Option func(*Recognition)

// WithParams replaces the default stage constants.
func WithParams(p Params) Option {
	return func(r *Recognition) {
		r.params = p
	}
}

// WithLogger sets the logger used for per-stage debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Recognition) {
		r.logger = logger
	}
}

// Recognition is one recognition session over a single case.
//
// It holds private copies of the photograph, the mask and the expert
// annotation taken when it is created. Later changes to the caller's grids do
// not affect it, and nothing it does writes to them.
type Recognition struct {
	picture *imaging.Grid
	mask    *imaging.Grid
	expert  *imaging.Grid

	params Params
	logger zerolog.Logger
}

// New validates the photograph and copies all three inputs.
//
// The photograph must be a 3-channel BGR grid. The mask and the expert
// annotation may be nil; they are currently inert and only kept for future
// masking and scoring steps.
func New(picture, mask, expert *imaging.Grid, opts ...Option) (*Recognition, error) {
	if err := picture.Validate(3); err != nil {
		return nil, fmt.Errorf("photograph: %w", err)
	}
	for name, g := range map[string]*imaging.Grid{"mask": mask, "expert annotation": expert} {
		if g == nil {
			continue
		}
		if err := g.Validate(0); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	r := &Recognition{
		picture: picture.Clone(),
		mask:    mask.Clone(),
		expert:  expert.Clone(),
		params:  DefaultParams(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.params.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Params returns the stage constants in use.
func (r *Recognition) Params() Params {
	return r.params
}

// Mask returns a copy of the field-of-view mask, or nil if none was given.
func (r *Recognition) Mask() *imaging.Grid {
	return r.mask.Clone()
}

// Expert returns a copy of the expert annotation, or nil if none was given.
func (r *Recognition) Expert() *imaging.Grid {
	return r.expert.Clone()
}

// GreenChannelWithContrast runs the first stage alone: green channel isolation,
// contrast/brightness remap and gray conversion.
func (r *Recognition) GreenChannelWithContrast() (*imaging.Grid, error) {
	return imaging.GreenWithContrast(r.picture, r.params.Contrast, r.params.Brightness)
}

// Recognize runs all five stages and returns the final edge map together with
// every intermediate. ctx is checked between stages.
func (r *Recognition) Recognize(ctx context.Context) (*Result, error) {
	p := r.params
	small, err := imaging.Ellipse(p.FirstDilation, p.FirstDilation)
	if err != nil {
		return nil, err
	}
	large, err := imaging.Ellipse(p.SecondDilation, p.SecondDilation)
	if err != nil {
		return nil, err
	}

	steps := []struct {
		stage Stage
		run   func(in *imaging.Grid) (*imaging.Grid, error)
	}{
		{StageGray, func(*imaging.Grid) (*imaging.Grid, error) {
			return r.GreenChannelWithContrast()
		}},
		{StageCanny, func(in *imaging.Grid) (*imaging.Grid, error) {
			return imaging.Canny(in, p.CannyLow, p.CannyHigh, p.CannyAperture, p.CannyL2)
		}},
		{StageFirstDilation, func(in *imaging.Grid) (*imaging.Grid, error) {
			return imaging.Dilate(in, small)
		}},
		{StageMedian, func(in *imaging.Grid) (*imaging.Grid, error) {
			return imaging.MedianBlur(in, p.MedianSize)
		}},
		{StageSecondDilation, func(in *imaging.Grid) (*imaging.Grid, error) {
			return imaging.Dilate(in, large)
		}},
	}

	result := &Result{stages: make(map[Stage]*imaging.Grid, len(steps))}
	var current *imaging.Grid
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("before stage %s: %w", step.stage, err)
		}

		start := time.Now()
		out, err := step.run(current)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", step.stage, err)
		}
		elapsed := time.Since(start)

		if e := r.logger.Debug(); e.Enabled() {
			e.Str("stage", string(step.stage)).
				Dur("elapsed", elapsed).
				Int("nonzero", out.CountNonZero()).
				Msg("stage complete")
		}

		result.stages[step.stage] = out
		result.Timings = append(result.Timings, StageTiming{Stage: step.stage, Duration: elapsed})
		current = out
	}

	result.Edges = current
	return result, nil
}

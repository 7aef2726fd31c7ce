package vessels

import (
	"errors"
	"fmt"
	"time"

	"github.com/ironsheep/fundus-vessels/internal/imaging"
)

// ErrUnknownStage is returned when a stage name is not recognized.
var ErrUnknownStage = errors.New("unknown stage")

// Stage names one intermediate output of the pipeline.
type Stage string

const (
	StageGray           Stage = "gray"
	StageCanny          Stage = "canny"
	StageFirstDilation  Stage = "dilate_small"
	StageMedian         Stage = "median"
	StageSecondDilation Stage = "edges"
)

// Stages lists the pipeline stages in execution order.
var Stages = []Stage{StageGray, StageCanny, StageFirstDilation, StageMedian, StageSecondDilation}

// ParseStage validates a stage name. The empty string selects the final stage.
func ParseStage(s string) (Stage, error) {
	if s == "" {
		return StageSecondDilation, nil
	}
	for _, st := range Stages {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStage, s)
}

// StageTiming records how long one stage took.
type StageTiming struct {
	Stage    Stage         `json:"stage"`
	Duration time.Duration `json:"duration_ns"`
}

// Result is the output of one recognition run.
type Result struct {
	// Edges is the final single-channel edge map, the same size as the photograph.
	Edges *imaging.Grid

	// Timings lists every stage in execution order.
	Timings []StageTiming

	stages map[Stage]*imaging.Grid
}

// Stage returns the output of the named stage. The returned grid is shared
// with the result; clone it before modifying.
func (r *Result) Stage(s Stage) (*imaging.Grid, error) {
	g, ok := r.stages[s]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, s)
	}
	return g, nil
}

// Total returns the summed duration of all stages.
func (r *Result) Total() time.Duration {
	var total time.Duration
	for _, t := range r.Timings {
		total += t.Duration
	}
	return total
}

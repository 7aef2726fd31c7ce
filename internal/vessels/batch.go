package vessels

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/fundus-vessels/internal/dataset"
)

// CaseLoader loads the three images of a case. *dataset.Loader implements it.
type CaseLoader interface {
	LoadCase(ctx context.Context, caseID string) (*dataset.Case, error)
}

// RecognizeCase loads one case and runs the recognition pipeline on it.
func RecognizeCase(ctx context.Context, loader CaseLoader, caseID string, opts ...Option) (*Result, error) {
	c, err := loader.LoadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	r, err := New(c.Photograph, c.Mask, c.Expert, opts...)
	if err != nil {
		return nil, fmt.Errorf("case %q: %w", caseID, err)
	}
	res, err := r.Recognize(ctx)
	if err != nil {
		return nil, fmt.Errorf("case %q: %w", caseID, err)
	}
	return res, nil
}

// CaseResult is the outcome of one case in a batch.
type CaseResult struct {
	CaseID string
	Result *Result
	Err    error
}

// RecognizeCases runs RecognizeCase for every identifier with at most workers
// cases in flight (workers <= 0 means one). Cases are independent: a failure is
// recorded in its CaseResult and does not stop the others. Results are returned
// in input order.
func RecognizeCases(ctx context.Context, loader CaseLoader, caseIDs []string, workers int, opts ...Option) []CaseResult {
	if workers <= 0 {
		workers = 1
	}

	results := make([]CaseResult, len(caseIDs))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, id := range caseIDs {
		i, id := i, id
		g.Go(func() error {
			res, err := RecognizeCase(ctx, loader, id, opts...)
			results[i] = CaseResult{CaseID: id, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

package vessels

import (
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ironsheep/fundus-vessels/internal/dataset"
	"github.com/ironsheep/fundus-vessels/internal/dataset/datasettest"
)

func writeLineCase(t *testing.T, root, caseID string) {
	t.Helper()
	datasettest.WriteCase(t, root, caseID,
		datasettest.VerticalLine(60, 40, 30),
		datasettest.Solid(60, 40, color.White),
		datasettest.Solid(60, 40, color.Black))
}

func TestRecognizeCase(t *testing.T) {
	root := t.TempDir()
	writeLineCase(t, root, "01_h")
	loader := dataset.NewLoader(datasettest.Paths(root), zerolog.Nop())

	res, err := RecognizeCase(context.Background(), loader, "01_h")
	if err != nil {
		t.Fatalf("RecognizeCase failed: %v", err)
	}
	if res.Edges.Width != 60 || res.Edges.Height != 40 {
		t.Errorf("dimensions: got %dx%d, want 60x40", res.Edges.Width, res.Edges.Height)
	}
	if res.Edges.At(30, 20, 0) == 0 {
		t.Error("the line should be inside the edge band")
	}
}

func TestRecognizeCase_MissingPhotograph(t *testing.T) {
	loader := dataset.NewLoader(datasettest.Paths(t.TempDir()), zerolog.Nop())

	_, err := RecognizeCase(context.Background(), loader, "01_h")
	if !errors.Is(err, dataset.ErrDecode) {
		t.Errorf("got %v, want ErrDecode", err)
	}
}

func TestRecognizeCases(t *testing.T) {
	root := t.TempDir()
	writeLineCase(t, root, "01_h")
	writeLineCase(t, root, "02_h")
	loader := dataset.NewLoader(datasettest.Paths(root), zerolog.Nop())

	ids := []string{"01_h", "missing", "02_h"}
	results := RecognizeCases(context.Background(), loader, ids, 2)

	if len(results) != len(ids) {
		t.Fatalf("got %d results, want %d", len(results), len(ids))
	}
	for i, id := range ids {
		if results[i].CaseID != id {
			t.Errorf("result %d: got case %s, want %s", i, results[i].CaseID, id)
		}
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("present cases failed: %v / %v", results[0].Err, results[2].Err)
	}
	if !errors.Is(results[1].Err, dataset.ErrDecode) {
		t.Errorf("missing case: got %v, want ErrDecode", results[1].Err)
	}
	if results[1].Result != nil {
		t.Error("failed case should not carry a result")
	}
}

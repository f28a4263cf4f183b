package wcag

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/a11yaudit/a11ycheck/dom"
	"github.com/a11yaudit/a11ycheck/textdetect"
)

func TestSnapRows(t *testing.T) {
	boxes := []BoundingBox{
		{X1: 0, Y1: 10, X2: 20, Y2: 18},
		{X1: 30, Y1: 12, X2: 50, Y2: 20}, // within 3px of 10: snapped
		{X1: 60, Y1: 16, X2: 80, Y2: 24}, // 6px from the snapped 10: kept
	}
	snapRows(boxes)
	if boxes[1].Y1 != 10 {
		t.Errorf("boxes[1].Y1 = %d, want snapped to 10", boxes[1].Y1)
	}
	if boxes[2].Y1 != 16 {
		t.Errorf("boxes[2].Y1 = %d, want unchanged 16", boxes[2].Y1)
	}
}

func TestSnapRowsChains(t *testing.T) {
	// Each neighbour is within tolerance of the previous snapped value,
	// so the whole run collapses onto the first row.
	boxes := []BoundingBox{
		{Y1: 10}, {Y1: 13}, {Y1: 12}, {Y1: 11},
	}
	snapRows(boxes)
	for i, b := range boxes {
		if b.Y1 != 10 {
			t.Errorf("boxes[%d].Y1 = %d, want 10", i, b.Y1)
		}
	}
}

func TestMergeHorizontally(t *testing.T) {
	// Same row, gap (5) smaller than line height (10): merge. The merged
	// box ends at the second box's x2 and keeps the worse contrast.
	boxes := []BoundingBox{
		{X1: 0, X2: 40, Y1: 10, Y2: 20, Contrast: 2.5, ContrastThreshold: 4.5},
		{X1: 45, X2: 90, Y1: 10, Y2: 20, Contrast: 1.8, ContrastThreshold: 4.5},
	}
	merged := mergeHorizontally(boxes)
	if len(merged) != 1 {
		t.Fatalf("got %d boxes, want 1", len(merged))
	}
	if merged[0].X2 != 90 {
		t.Errorf("merged X2 = %d, want 90", merged[0].X2)
	}
	if merged[0].Contrast != 1.8 {
		t.Errorf("merged contrast = %v, want min 1.8", merged[0].Contrast)
	}
}

func TestMergeHorizontallyKeepsDistantBoxes(t *testing.T) {
	boxes := []BoundingBox{
		{X1: 0, X2: 40, Y1: 10, Y2: 20, Contrast: 2.5},
		{X1: 60, X2: 90, Y1: 10, Y2: 20, Contrast: 1.8}, // gap 20 ≥ line height 10
	}
	if merged := mergeHorizontally(boxes); len(merged) != 2 {
		t.Errorf("got %d boxes, want 2", len(merged))
	}
}

func TestMergeHorizontallyRejectsVerticalDrift(t *testing.T) {
	boxes := []BoundingBox{
		{X1: 0, X2: 40, Y1: 10, Y2: 20, Contrast: 2.5},
		{X1: 42, X2: 90, Y1: 16, Y2: 26, Contrast: 1.8}, // y1 delta 6 ≥ 10/2
	}
	if merged := mergeHorizontally(boxes); len(merged) != 2 {
		t.Errorf("got %d boxes, want 2", len(merged))
	}
}

// eastCell places one confident detection whose decoded box ends at the
// cell's pixel offset and extends left pixels left and top pixels up.
type eastCell struct {
	x, y      int
	top, left float32
}

func engineFor(rows, cols int, cells []eastCell) textdetect.Engine {
	n := rows * cols
	out := &textdetect.RawOutput{Rows: rows, Cols: cols, Scores: make([]float32, n)}
	for i := range out.Geometry {
		out.Geometry[i] = make([]float32, n)
	}
	for _, c := range cells {
		i := c.y*cols + c.x
		out.Scores[i] = 0.95
		out.Geometry[0][i] = c.top
		out.Geometry[3][i] = c.left
	}
	return stubEngine{out: out}
}

type stubEngine struct {
	out *textdetect.RawOutput
	err error
}

func (s stubEngine) Infer(context.Context, image.Image) (*textdetect.RawOutput, error) {
	return s.out, s.err
}

func grayNRGBA(v uint8) color.NRGBA { return color.NRGBA{v, v, v, 255} }

// pageSnapshot is a minimal snapshot with one div covering the viewport.
func pageSnapshot(w, h float64) *dom.Snapshot {
	return &dom.Snapshot{Nodes: []dom.Node{
		{Tag: "html", Parent: -1, Rect: dom.Rect{W: w, H: h}, Children: []int{1}},
		{Tag: "body", Parent: 0, Rect: dom.Rect{W: w, H: h}, Children: []int{2}},
		{Tag: "div", Parent: 1, Rect: dom.Rect{W: w, H: h}},
	}}
}

func newTestChecker(t *testing.T, engine textdetect.Engine) *Checker {
	t.Helper()
	c, err := NewChecker(Config{
		TextDetector: textdetect.New(engine),
		Language:     stubPredictor{},
	})
	if err != nil {
		t.Fatalf("NewChecker: %v", err)
	}
	return c
}

func TestDetectTextContrastDedupKeepsWorst(t *testing.T) {
	// Two low-contrast text boxes on the same row, too far apart to
	// merge, both resolving to the same element: one infraction with the
	// lower contrast survives.
	smallW, smallH := 100, 40 // padded: 128x64, resized large: 256x128

	large := image.NewNRGBA(image.Rect(0, 0, 256, 128))
	fill(large, large.Bounds(), grayNRGBA(255))
	// Box A: (10,12)-(40,20) in 1×, (20,24)-(80,40) in 2×.
	fill(large, image.Rect(20, 24, 80, 40), grayNRGBA(160))
	// Box B: (64,12)-(80,20) in 1×, (128,24)-(160,40) in 2×.
	fill(large, image.Rect(128, 24, 160, 40), grayNRGBA(200))

	cA := SampledContrast(large, image.Rect(20, 24, 80, 40), 3)
	cB := SampledContrast(large, image.Rect(128, 24, 160, 40), 3)
	for name, c := range map[string]float64{"A": cA, "B": cB} {
		if c < contrastFloor || c >= minContrastRatio {
			t.Fatalf("test setup: contrast %s = %v not in [1.2, 4.5)", name, c)
		}
	}
	want := min(cA, cB)

	in := Input{
		Small:    image.NewNRGBA(image.Rect(0, 0, smallW, smallH)),
		Large:    large,
		DOM:      pageSnapshot(float64(smallW), float64(smallH)),
		Language: "",
	}
	checker := newTestChecker(t, engineFor(16, 32, []eastCell{
		{x: 10, y: 5, top: 8, left: 30}, // A: x2=40, y2=20
		{x: 20, y: 5, top: 8, left: 16}, // B: x2=80, y2=20
	}))

	infractions, err := checker.detectTextContrast(context.Background(), in)
	if err != nil {
		t.Fatalf("detectTextContrast: %v", err)
	}
	if len(infractions) != 1 {
		t.Fatalf("got %d infractions, want 1 after dedup: %+v", len(infractions), infractions)
	}
	inf := infractions[0]
	if inf.Criterion != CriterionTextContrast {
		t.Errorf("criterion = %s", inf.Criterion)
	}
	if inf.XPath != "/html[1]/body[1]/div[1]" {
		t.Errorf("xpath = %s", inf.XPath)
	}
	if inf.Contrast != want {
		t.Errorf("contrast = %v, want worst of the two (%v)", inf.Contrast, want)
	}
	if inf.ContrastThreshold != minContrastRatio {
		t.Errorf("threshold = %v, want %v", inf.ContrastThreshold, minContrastRatio)
	}
}

func TestDetectTextContrastHighContrastPasses(t *testing.T) {
	// Black text on white scores ~21 and must never be reported.
	large := image.NewNRGBA(image.Rect(0, 0, 256, 128))
	fill(large, large.Bounds(), grayNRGBA(255))
	fill(large, image.Rect(22, 26, 78, 38), grayNRGBA(0))

	in := Input{
		Small: image.NewNRGBA(image.Rect(0, 0, 100, 40)),
		Large: large,
		DOM:   pageSnapshot(100, 40),
	}
	checker := newTestChecker(t, engineFor(16, 32, []eastCell{
		{x: 10, y: 5, top: 8, left: 30},
	}))

	infractions, err := checker.detectTextContrast(context.Background(), in)
	if err != nil {
		t.Fatalf("detectTextContrast: %v", err)
	}
	if len(infractions) != 0 {
		t.Errorf("got %d infractions for high-contrast text, want 0", len(infractions))
	}
}

func TestDetectTextContrastInferenceError(t *testing.T) {
	checker := newTestChecker(t, stubEngine{err: errors.New("backend down")})
	in := Input{
		Small: image.NewNRGBA(image.Rect(0, 0, 100, 40)),
		Large: image.NewNRGBA(image.Rect(0, 0, 200, 80)),
		DOM:   pageSnapshot(100, 40),
	}
	_, err := checker.detectTextContrast(context.Background(), in)
	if !errors.Is(err, ErrInference) {
		t.Errorf("error = %v, want ErrInference", err)
	}
}

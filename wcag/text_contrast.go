package wcag

import (
	"context"
	"fmt"
	"image"
	"sort"

	"github.com/disintegration/imaging"

	"github.com/a11yaudit/a11ycheck/textdetect"
)

const (
	// minContrastRatio applies to normal-size text, minContrastRatioLarge
	// to text at least largeTextHeight pixels tall.
	minContrastRatio      = 4.5
	minContrastRatioLarge = 3.0
	largeTextHeight       = 20

	// contrastFloor rejects degenerate or noisy detections, including the
	// -1 incomputable sentinel.
	contrastFloor = 1.2

	// rowSnapTolerance is the y1 delta within which boxes are considered
	// part of the same text row.
	rowSnapTolerance = 3

	borderWidth = 3
)

// detectTextContrast finds WCAG 1.4.3 infractions: text regions whose
// sampled contrast against their background falls below the threshold for
// their size class.
func (c *Checker) detectTextContrast(ctx context.Context, in Input) ([]Infraction, error) {
	small := in.Small.Bounds()
	padW, padH := textdetect.PaddedSize(small.Dx(), small.Dy())

	// The 2× capture is resized so its dimensions are exactly double the
	// padded 1× dimensions, keeping 1×-coordinate-times-two sampling
	// aligned with the box decoding.
	large := imaging.Resize(in.Large, padW*2, padH*2, imaging.NearestNeighbor)

	regions, err := c.textDetector.Detect(ctx, in.Small)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}

	var low []BoundingBox
	for _, r := range regions {
		contrast := SampledContrast(large, image.Rect(r.X1*2, r.Y1*2, r.X2*2, r.Y2*2), borderWidth)

		threshold := minContrastRatio
		if r.Y2-r.Y1 >= largeTextHeight {
			threshold = minContrastRatioLarge
		}
		if contrast >= contrastFloor && contrast < threshold {
			low = append(low, BoundingBox{
				X1: r.X1, X2: r.X2, Y1: r.Y1, Y2: r.Y2,
				Contrast:          contrast,
				ContrastThreshold: threshold,
			})
		}
	}

	sortBoxes(low)
	snapRows(low)
	sortBoxes(low)
	merged := mergeHorizontally(low)

	// Correlate each surviving box with the element under its centroid and
	// keep at most one infraction per xpath, preferring the lower (more
	// severe) contrast.
	byXPath := make(map[string]int)
	var infractions []Infraction
	for _, box := range merged {
		cx := float64(box.X1) + float64(box.X2-box.X1)/2
		cy := float64(box.Y1) + float64(box.Y2-box.Y1)/2
		node := in.DOM.HitTest(cx, cy)
		if node < 0 {
			continue
		}
		xpath := in.DOM.XPath(node)
		if i, seen := byXPath[xpath]; seen {
			if box.Contrast > infractions[i].Contrast {
				continue
			}
			infractions[i].Contrast = box.Contrast
			infractions[i].ContrastThreshold = box.ContrastThreshold
			continue
		}
		byXPath[xpath] = len(infractions)
		infractions = append(infractions, contrastInfraction(CriterionTextContrast, xpath, box.Contrast, box.ContrastThreshold))
	}
	return infractions, nil
}

func sortBoxes(boxes []BoundingBox) {
	sort.SliceStable(boxes, func(a, b int) bool {
		if boxes[a].Y1 != boxes[b].Y1 {
			return boxes[a].Y1 < boxes[b].Y1
		}
		return boxes[a].X1 < boxes[b].X1
	})
}

// snapRows aligns boxes that sit on (almost) the same text row: a single
// forward pass overwriting y1 with the preceding box's y1 when they
// differ by at most rowSnapTolerance pixels. Callers re-sort afterwards.
func snapRows(boxes []BoundingBox) {
	prev := -1
	for i := range boxes {
		if i > 0 && abs(boxes[i].Y1-prev) <= rowSnapTolerance {
			boxes[i].Y1 = prev
		}
		prev = boxes[i].Y1
	}
}

// mergeHorizontally concatenates word boxes into line boxes. A box is
// merged into the previous one when the horizontal gap is smaller than
// the previous box's line height and both edge deltas are smaller than
// half of it; the merged box keeps the worse contrast.
func mergeHorizontally(boxes []BoundingBox) []BoundingBox {
	var merged []BoundingBox
	for _, box := range boxes {
		if len(merged) == 0 {
			merged = append(merged, box)
			continue
		}
		prev := &merged[len(merged)-1]
		lineHeight := prev.Y2 - prev.Y1
		gapX := abs(box.X1 - prev.X2)
		dY1 := abs(box.Y1 - prev.Y1)
		dY2 := abs(box.Y2 - prev.Y2)
		if gapX < lineHeight && dY1*2 < lineHeight && dY2*2 < lineHeight {
			if box.Contrast < prev.Contrast {
				prev.Contrast = box.Contrast
			}
			prev.X2 = box.X2
		} else {
			merged = append(merged, box)
		}
	}
	return merged
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

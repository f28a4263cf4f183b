package textdetect

import "sort"

// nonMaxSuppression removes boxes that overlap an already accepted,
// higher-confidence box by more than overlapThresh. Overlap is the
// intersection area divided by the candidate's own area, with inclusive
// pixel extents.
func nonMaxSuppression(boxes []Box, overlapThresh float64) []Box {
	if len(boxes) == 0 {
		return nil
	}

	// Indices ordered by ascending confidence; the best remaining box is
	// always at the tail.
	idxs := make([]int, len(boxes))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		return boxes[idxs[a]].Score < boxes[idxs[b]].Score
	})

	area := func(b Box) float64 {
		return float64(b.X2-b.X1+1) * float64(b.Y2-b.Y1+1)
	}

	var picked []Box
	for len(idxs) > 0 {
		last := len(idxs) - 1
		best := boxes[idxs[last]]
		picked = append(picked, best)

		remaining := idxs[:0]
		for _, j := range idxs[:last] {
			other := boxes[j]
			xx1 := max(best.X1, other.X1)
			yy1 := max(best.Y1, other.Y1)
			xx2 := min(best.X2, other.X2)
			yy2 := min(best.Y2, other.Y2)

			w := float64(xx2 - xx1 + 1)
			h := float64(yy2 - yy1 + 1)
			if w > 0 && h > 0 && w*h/area(other) > overlapThresh {
				continue
			}
			remaining = append(remaining, j)
		}
		idxs = remaining
	}
	return picked
}

package wcag

import (
	"image"
	"math"
)

// Color is an RGB triple with float channels in [0, 255]. Float channels
// carry the fractional border means produced by averaging.
type Color struct {
	R, G, B float64
}

func (c Color) sum() float64 { return c.R + c.G + c.B }

// linearize gamma-decompresses one sRGB channel value per the WCAG
// definition (note the 0.03928 knee, not standard sRGB's 0.04045).
func linearize(v float64) float64 {
	i := v / 255.0
	if i < 0.03928 {
		return i / 12.92
	}
	return math.Pow((i+0.055)/1.055, 2.4)
}

func relativeLuminance(c Color) float64 {
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B)
}

// ContrastRatio returns the WCAG contrast ratio between two colors, in
// [1, 21]. It is symmetric and returns exactly 1 for identical colors.
func ContrastRatio(a, b Color) float64 {
	light, dark := b, b
	if a.sum() > b.sum() {
		light = a
	}
	if a.sum() < b.sum() {
		dark = a
	}
	return (relativeLuminance(light) + 0.05) / (relativeLuminance(dark) + 0.05)
}

// DominantColors returns the two most frequent exact RGB triples inside
// region, ties broken by first encounter in the row-major counting pass.
// Slots are nil when the region holds fewer than two distinct colors.
func DominantColors(img *image.NRGBA, region image.Rectangle) [2]*Color {
	region = region.Intersect(img.Bounds())

	index := make(map[uint32]int)
	var colors []Color
	var counts []int

	for y := region.Min.Y; y < region.Max.Y; y++ {
		row := img.Pix[img.PixOffset(region.Min.X, y):]
		for x := 0; x < region.Dx(); x++ {
			r, g, b := row[x*4], row[x*4+1], row[x*4+2]
			key := uint32(r)<<16 | uint32(g)<<8 | uint32(b)
			i, ok := index[key]
			if !ok {
				i = len(colors)
				index[key] = i
				colors = append(colors, Color{float64(r), float64(g), float64(b)})
				counts = append(counts, 0)
			}
			counts[i]++
		}
	}

	// Two highest counts; a strict > keeps earlier-encountered colors on
	// ties.
	var out [2]*Color
	best, second := -1, -1
	for i := range colors {
		switch {
		case best < 0 || counts[i] > counts[best]:
			second = best
			best = i
		case second < 0 || counts[i] > counts[second]:
			second = i
		}
	}
	if best >= 0 {
		out[0] = &colors[best]
	}
	if second >= 0 {
		out[1] = &colors[second]
	}
	return out
}

// meanColor averages all pixels of region, reporting ok=false when the
// clipped region is empty.
func meanColor(img *image.NRGBA, region image.Rectangle) (Color, bool) {
	region = region.Intersect(img.Bounds())
	if region.Empty() {
		return Color{}, false
	}

	var r, g, b float64
	for y := region.Min.Y; y < region.Max.Y; y++ {
		row := img.Pix[img.PixOffset(region.Min.X, y):]
		for x := 0; x < region.Dx(); x++ {
			r += float64(row[x*4])
			g += float64(row[x*4+1])
			b += float64(row[x*4+2])
		}
	}
	n := float64(region.Dx() * region.Dy())
	return Color{r / n, g / n, b / n}, true
}

// SampledContrast estimates the contrast of the word inside rect against
// its background: the two dominant colors of the word region are compared
// with each other and with the averaged color of borderWidth-pixel strips
// just above and below the rect. The result is the maximum of the three
// ratios (an optimistic estimate); any ratio whose colors are missing
// contributes the -1 sentinel, so an empty region yields -1 overall.
func SampledContrast(img *image.NRGBA, rect image.Rectangle, borderWidth int) float64 {
	dominant := DominantColors(img, rect)

	above, okAbove := meanColor(img, image.Rect(rect.Min.X, rect.Min.Y-borderWidth, rect.Max.X, rect.Min.Y))
	below, okBelow := meanColor(img, image.Rect(rect.Min.X, rect.Max.Y, rect.Max.X, rect.Max.Y+borderWidth))

	var border *Color
	switch {
	case okAbove && okBelow:
		border = &Color{(above.R + below.R) / 2, (above.G + below.G) / 2, (above.B + below.B) / 2}
	case okAbove:
		border = &above
	case okBelow:
		border = &below
	}

	ratios := [3]float64{-1, -1, -1}
	if dominant[0] != nil && dominant[1] != nil {
		ratios[0] = ContrastRatio(*dominant[0], *dominant[1])
	}
	if border != nil && dominant[0] != nil {
		ratios[1] = ContrastRatio(*border, *dominant[0])
	}
	if border != nil && dominant[1] != nil {
		ratios[2] = ContrastRatio(*border, *dominant[1])
	}

	return math.Max(ratios[0], math.Max(ratios[1], ratios[2]))
}

package wcag

import (
	"image"

	"github.com/disintegration/imaging"
)

const (
	// uiContrastThreshold is the fixed non-text contrast minimum.
	uiContrastThreshold = 3.0

	// uiMargin expands a component's rectangle on all sides before
	// cropping, so the border strips have context to sample.
	uiMargin = 20
)

// textInputTypes are the <input> subtypes audited as UI components.
var textInputTypes = map[string]bool{
	"text": true, "password": true, "email": true, "search": true,
	"url": true, "number": true, "tel": true, "date": true,
	"time": true, "datetime-local": true, "month": true, "week": true,
	"range": true, "submit": true, "reset": true, "button": true,
	"file": true, "checkbox": true, "radio": true,
}

// uiComponentTags are audited regardless of attributes.
var uiComponentTags = map[string]bool{
	"button": true, "option": true, "textarea": true, "datalist": true,
}

// detectUIContrast finds WCAG 1.4.11 infractions: interactive components
// whose sampled contrast falls below 3.0. Each element is evaluated
// independently; no merging or dedup applies.
func (c *Checker) detectUIContrast(in Input) []Infraction {
	large := imaging.Clone(in.Large)
	bounds := large.Bounds()

	var infractions []Infraction
	for i := range in.DOM.Nodes {
		node := &in.DOM.Nodes[i]
		if !isUIComponent(node.Tag, node.Attrs["type"]) {
			continue
		}

		// Device-scaled rectangle.
		x1 := int(node.Rect.X * 2)
		y1 := int(node.Rect.Y * 2)
		w := int(node.Rect.W * 2)
		h := int(node.Rect.H * 2)
		if w == 0 || h == 0 {
			continue
		}

		crop := image.Rect(x1-uiMargin, y1-uiMargin, x1+w+uiMargin, y1+h+uiMargin).Intersect(bounds)
		if crop.Empty() {
			continue
		}
		component := imaging.Crop(large, crop)

		inner := image.Rect(x1-crop.Min.X, y1-crop.Min.Y, x1-crop.Min.X+w, y1-crop.Min.Y+h)
		contrast := SampledContrast(component, inner, borderWidth)
		if contrast < 1 {
			continue
		}
		if contrast < uiContrastThreshold {
			xpath := in.DOM.XPath(i)
			infractions = append(infractions, contrastInfraction(CriterionUIContrast, xpath, contrast, uiContrastThreshold))
		}
	}
	return infractions
}

func isUIComponent(tag, inputType string) bool {
	if uiComponentTags[tag] {
		return true
	}
	return tag == "input" && textInputTypes[inputType]
}

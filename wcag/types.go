// Package wcag implements the detection pipeline: it turns two
// screenshots of a page plus its DOM snapshot into WCAG infractions for
// contrast (1.4.3, 1.4.11), language consistency (3.1.1, 3.1.2) and,
// partially, alt-text relevance (1.1.1).
package wcag

// WCAG success criteria covered by the pipeline.
const (
	CriterionTextContrast    = "WCAG_1_4_3"
	CriterionUIContrast      = "WCAG_1_4_11"
	CriterionPageLanguage    = "WCAG_3_1_1"
	CriterionElementLanguage = "WCAG_3_1_2"
	CriterionAltText         = "WCAG_1_1_1"
)

// Infraction is one detected violation. It is a tagged union over the
// contrast, language and alt-text shapes sharing the criterion and xpath
// fields; fields of the other shapes stay unset and are omitted from the
// JSON serialization.
type Infraction struct {
	Criterion         string  `json:"wcag_criterion"`
	XPath             string  `json:"xpath"`
	Contrast          float64 `json:"contrast,omitempty"`
	ContrastThreshold float64 `json:"contrast_threshold,omitempty"`
	HTMLLanguage      string  `json:"html_language,omitempty"`
	PredictedLanguage string  `json:"predicted_language,omitempty"`
	Text              string  `json:"text,omitempty"`
	Severity          string  `json:"severity,omitempty"`
}

func contrastInfraction(criterion, xpath string, contrast, threshold float64) Infraction {
	return Infraction{
		Criterion:         criterion,
		XPath:             xpath,
		Contrast:          contrast,
		ContrastThreshold: threshold,
	}
}

func languageInfraction(criterion, xpath, declared, predicted string) Infraction {
	return Infraction{
		Criterion:         criterion,
		XPath:             xpath,
		HTMLLanguage:      declared,
		PredictedLanguage: predicted,
	}
}

func altTextInfraction(xpath, text, severity string) Infraction {
	return Infraction{
		Criterion: CriterionAltText,
		XPath:     xpath,
		Text:      text,
		Severity:  severity,
	}
}

// BoundingBox is a candidate text region in 1× pixel space. Contrast and
// ContrastThreshold are scratch fields filled in during scoring and
// merging; they start at the -1 "incomputable" sentinel.
type BoundingBox struct {
	X1, X2, Y1, Y2    int
	Contrast          float64
	ContrastThreshold float64
}

// Package langid identifies the language of page text for the 3.1.x
// detectors. It wraps a lingua detector restricted to a closed set of
// languages and gates every verdict on a confidence threshold, so callers
// only ever see predictions the model is actually sure about.
package langid

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// MinProbability is the confidence a prediction must exceed before it is
// trusted. Below it the identifier reports no verdict at all.
const MinProbability = 0.8

// DefaultLanguages are the ISO 639-1 codes supported out of the box.
var DefaultLanguages = []string{"nl", "fr", "de", "en"}

var (
	// 1000 is regexp's maximum repeat count; longer URLs lose their tail
	// to the word filter below.
	urlRE   = regexp.MustCompile(`(https?://|www)[-_.?&~;+=/#0-9A-Za-z]{1,1000}`)
	emailRE = regexp.MustCompile(`[-_.0-9A-Za-z]{1,64}@[-_0-9A-Za-z]{1,255}[-_.0-9A-Za-z]{1,255}`)

	// Unicode letter runs; \w-based classes are ASCII-only here and would
	// split accented words.
	wordRE = regexp.MustCompile(`[\p{L}]+`)
)

// CleanText strips URL-like and email-like substrings from text and keeps
// only word tokens (no digits), joined by single spaces.
func CleanText(text string) string {
	text = urlRE.ReplaceAllString(text, "")
	text = emailRE.ReplaceAllString(text, "")
	return strings.Join(wordRE.FindAllString(text, -1), " ")
}

// CountWords returns the number of word tokens in the cleaned text.
func CountWords(text string) int {
	return len(strings.Fields(CleanText(text)))
}

// Identifier predicts the language of a piece of text within a closed set
// of candidate languages.
type Identifier struct {
	detector lingua.LanguageDetector
	codes    map[lingua.Language]string
}

// New builds an Identifier for the given ISO 639-1 codes. The model is
// loaded eagerly so the first request does not pay the warm-up cost.
func New(codes []string) (*Identifier, error) {
	if len(codes) == 0 {
		codes = DefaultLanguages
	}

	byCode := make(map[string]lingua.Language, len(lingua.AllLanguages()))
	for _, lang := range lingua.AllLanguages() {
		byCode[strings.ToLower(lang.IsoCode639_1().String())] = lang
	}

	langs := make([]lingua.Language, 0, len(codes))
	names := make(map[lingua.Language]string, len(codes))
	for _, code := range codes {
		code = strings.ToLower(code)
		lang, ok := byCode[code]
		if !ok {
			return nil, fmt.Errorf("langid: unsupported language code %q", code)
		}
		langs = append(langs, lang)
		names[lang] = code
	}

	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(langs...).
		WithPreloadedLanguageModels().
		Build()

	return &Identifier{detector: detector, codes: names}, nil
}

// Predict returns the ISO 639-1 code of the most likely language of text,
// or ok=false when the text is empty or the model's confidence does not
// exceed MinProbability.
func (id *Identifier) Predict(text string) (code string, ok bool) {
	cleaned := CleanText(text)
	if cleaned == "" {
		return "", false
	}

	values := id.detector.ComputeLanguageConfidenceValues(cleaned)
	if len(values) == 0 {
		return "", false
	}

	top := values[0]
	if top.Value() <= MinProbability {
		return "", false
	}
	return id.codes[top.Language()], true
}

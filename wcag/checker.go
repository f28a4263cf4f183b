package wcag

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/a11yaudit/a11ycheck/dom"
	"github.com/a11yaudit/a11ycheck/textdetect"
)

// Input is everything one check needs: the two captures of the same page
// state, the DOM snapshot, and the declared page language ("" when the
// page declares none). The pipeline never touches the live browser.
type Input struct {
	Small    image.Image // 1× capture
	Large    image.Image // 2× capture of the same page state
	DOM      *dom.Snapshot
	Language string
}

// Config configures a Checker.
type Config struct {
	// TextDetector is the EAST-backed region detector. Required.
	TextDetector *textdetect.Detector

	// Language predicts the language of text. Required.
	Language Predictor

	// AltText scores image/alt-text similarity. Optional; nil disables
	// the 1.1.1 detector.
	AltText SimilarityScorer

	// HTTPClient fetches image sources for the 1.1.1 detector.
	HTTPClient *http.Client

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Checker runs every criterion detector over one immutable Input and
// aggregates their infractions.
type Checker struct {
	textDetector *textdetect.Detector
	predict      Predictor
	altScorer    SimilarityScorer
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewChecker builds a Checker from cfg.
func NewChecker(cfg Config) (*Checker, error) {
	cfg.defaults()
	if cfg.TextDetector == nil {
		return nil, fmt.Errorf("wcag: config needs a text detector")
	}
	if cfg.Language == nil {
		return nil, fmt.Errorf("wcag: config needs a language predictor")
	}
	return &Checker{
		textDetector: cfg.TextDetector,
		predict:      cfg.Language,
		altScorer:    cfg.AltText,
		httpClient:   cfg.HTTPClient,
		logger:       cfg.Logger,
	}, nil
}

// Check runs the full pipeline. The contrast and language families read
// the same immutable input and write no shared state, so they run
// concurrently; results are concatenated in fixed criterion order. An ML
// failure fails the whole check (wrapped ErrInference) rather than
// passing as an empty result.
func (c *Checker) Check(ctx context.Context, in Input) ([]Infraction, error) {
	var (
		textContrast []Infraction
		uiContrast   []Infraction
		pageLang     []Infraction
		elementLang  []Infraction
		altText      []Infraction
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		textContrast, err = c.detectTextContrast(gctx, in)
		if err != nil {
			return err
		}
		uiContrast = c.detectUIContrast(in)
		return nil
	})

	g.Go(func() error {
		// Without a declared page language there is nothing to compare
		// against; the 3.1.x criteria are silent.
		if in.Language == "" {
			return nil
		}
		pageLang = detectPageLanguage(in.DOM, in.Language, c.predict)
		elementLang = detectElementLanguages(in.DOM, in.Language, c.predict)
		return nil
	})

	g.Go(func() error {
		altText = c.detectAltText(gctx, in.DOM)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Infraction, 0, len(textContrast)+len(uiContrast)+len(pageLang)+len(elementLang)+len(altText))
	out = append(out, textContrast...)
	out = append(out, uiContrast...)
	out = append(out, pageLang...)
	out = append(out, elementLang...)
	out = append(out, altText...)

	c.logger.Info("check complete",
		"contrast", len(textContrast)+len(uiContrast),
		"language", len(pageLang)+len(elementLang),
		"alt_text", len(altText))
	return out, nil
}

package wcag

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/a11yaudit/a11ycheck/dom"
)

// altWarningThreshold is the similarity score below which an image's alt
// text is flagged as possibly unrelated to the image.
const altWarningThreshold = 0.27

// SeverityWarning marks 1.1.1 findings; the similarity signal is too
// fuzzy to report as hard errors.
const SeverityWarning = "warning"

const maxAltImageBytes = 8 << 20

// SimilarityScorer is the opaque image/text similarity capability used by
// the partial 1.1.1 detector.
type SimilarityScorer interface {
	ImageTextSimilarity(ctx context.Context, imageData []byte, text string) (float64, error)
}

// detectAltText flags images whose alt text scores poorly against the
// image content. A per-image fetch or scoring failure skips that image
// only; the capability is best-effort and never fails the check.
func (c *Checker) detectAltText(ctx context.Context, snap *dom.Snapshot) []Infraction {
	if c.altScorer == nil {
		return nil
	}

	var infractions []Infraction
	for i := range snap.Nodes {
		node := &snap.Nodes[i]
		if node.Tag != "img" {
			continue
		}
		alt, ok := node.Attr("alt")
		if !ok {
			continue
		}
		src, ok := node.Attr("src")
		if !ok {
			continue
		}

		data, err := c.fetchImage(ctx, src)
		if err != nil {
			c.logger.Debug("alt-text image fetch failed", "src", src, "error", err)
			continue
		}

		score, err := c.altScorer.ImageTextSimilarity(ctx, data, alt)
		if err != nil {
			c.logger.Debug("alt-text similarity failed", "src", src, "error", err)
			continue
		}
		if score < altWarningThreshold {
			infractions = append(infractions, altTextInfraction(snap.XPath(i), alt, SeverityWarning))
		}
	}
	return infractions
}

func (c *Checker) fetchImage(ctx context.Context, src string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxAltImageBytes))
}

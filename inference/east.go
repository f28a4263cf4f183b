// Package inference contains HTTP clients for the ML sidecars: the EAST
// text-detection server and the image/text similarity server. Both are
// treated as synchronous, potentially slow remote capabilities; callers
// decide how a failure maps onto the check's error model.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/a11yaudit/a11ycheck/textdetect"
)

// EASTClient implements textdetect.Engine against a remote inference
// server: PNG in, raw score/geometry maps out.
type EASTClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewEASTClient creates a client for the detection server at baseURL.
func NewEASTClient(baseURL string, timeout time.Duration, logger *slog.Logger) *EASTClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EASTClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type eastResponse struct {
	Rows     int          `json:"rows"`
	Cols     int          `json:"cols"`
	Scores   []float32    `json:"scores"`
	Geometry [5][]float32 `json:"geometry"`
}

// Infer posts the padded screenshot and decodes the model's raw maps.
func (c *EASTClient) Infer(ctx context.Context, img image.Image) (*textdetect.RawOutput, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("inference: encode image: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/detect_text", &buf)
	if err != nil {
		return nil, fmt.Errorf("inference: create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference: east request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("inference: east returned status %d: %s", resp.StatusCode, body)
	}

	var out eastResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("inference: decode east response: %w", err)
	}

	c.logger.Debug("east inference done",
		"rows", out.Rows, "cols", out.Cols, "duration", time.Since(start))

	return &textdetect.RawOutput{
		Rows:     out.Rows,
		Cols:     out.Cols,
		Scores:   out.Scores,
		Geometry: out.Geometry,
	}, nil
}

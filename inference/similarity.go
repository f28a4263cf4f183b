package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// SimilarityClient scores how well an image matches a piece of text using
// a remote embedding server (CLIP-style). Used by the partial 1.1.1
// alt-text detector.
type SimilarityClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewSimilarityClient creates a client for the similarity server at
// baseURL.
func NewSimilarityClient(baseURL string, timeout time.Duration, logger *slog.Logger) *SimilarityClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SimilarityClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type similarityRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"` // base64 PNG/JPEG bytes
}

type similarityResponse struct {
	Score float64 `json:"score"`
}

// ImageTextSimilarity returns the cosine similarity between the image and
// the text in the server's shared embedding space.
func (c *SimilarityClient) ImageTextSimilarity(ctx context.Context, imageData []byte, text string) (float64, error) {
	payload, err := json.Marshal(similarityRequest{
		Text:  text,
		Image: base64.StdEncoding.EncodeToString(imageData),
	})
	if err != nil {
		return 0, fmt.Errorf("inference: marshal similarity request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/similarity", bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("inference: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("inference: similarity request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("inference: similarity returned status %d: %s", resp.StatusCode, body)
	}

	var out similarityResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("inference: decode similarity response: %w", err)
	}
	return out.Score, nil
}

package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Session is one audited page: a tab that has finished loading. Capture
// and Snapshot read the same page state; nothing mutates the page between
// them.
type Session struct {
	page   *rod.Page
	width  int
	height int
	logger *slog.Logger
}

func (s *Session) navigate(ctx context.Context, pageURL string, timeout time.Duration) error {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page := s.page.Context(navCtx)
	if err := s.setScale(page, 1); err != nil {
		return fmt.Errorf("%w: viewport: %v", ErrNavigate, err)
	}
	if err := page.Navigate(pageURL); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNavigate, pageURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		s.logger.Warn("render: wait load timeout", "url", pageURL, "error", err)
	}
	return nil
}

func (s *Session) setScale(page *rod.Page, scale float64) error {
	return proto.EmulationSetDeviceMetricsOverride{
		Width:             s.width,
		Height:            s.height,
		DeviceScaleFactor: scale,
	}.Call(page)
}

// Capture screenshots the full page at the given device scale factor.
// Scale 1 and 2 of the same session see identical layout; only the pixel
// density differs.
func (s *Session) Capture(ctx context.Context, scale float64) (image.Image, error) {
	page := s.page.Context(ctx)
	if err := s.setScale(page, scale); err != nil {
		return nil, fmt.Errorf("%w: device metrics: %v", ErrCapture, err)
	}
	data, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: screenshot: %v", ErrCapture, err)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrCapture, err)
	}
	return img, nil
}

// DeclaredLanguage returns the first two characters of the root element's
// lang attribute, or "" when the page declares no language.
func (s *Session) DeclaredLanguage(ctx context.Context) (string, error) {
	res, err := s.page.Context(ctx).Eval(`() => document.documentElement.getAttribute("lang") || ""`)
	if err != nil {
		return "", fmt.Errorf("%w: lang attribute: %v", ErrCapture, err)
	}
	lang := res.Value.Str()
	if len(lang) < 2 {
		return "", nil
	}
	return lang[:2], nil
}

// Close closes the tab.
func (s *Session) Close() error {
	if s.page != nil {
		return s.page.Close()
	}
	return nil
}

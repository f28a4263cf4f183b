// Package render drives a headless Chrome via Rod to produce the raw
// material of a check: two screenshots of the same page state at device
// scale 1 and 2, an element-tree snapshot, and the declared page language.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// Config configures the browser manager.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// NavigateTimeout bounds navigation plus load wait. Default: 30s.
	NavigateTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.NavigateTimeout <= 0 {
		c.NavigateTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager owns the Chrome process and hands out one Session per audited
// page. Sessions are independent tabs; the manager itself is safe for
// concurrent use.
type Manager struct {
	cfg     Config
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewManager creates a browser Manager. Call Start to launch Chrome.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{cfg: cfg}
}

// Start launches Chrome (or connects to a remote instance).
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("render: manager is closed")
	}
	if m.browser != nil {
		return nil
	}

	log := m.cfg.Logger
	var wsURL string

	if m.cfg.RemoteURL != "" {
		wsURL = m.cfg.RemoteURL
		log.Info("render: connecting to remote browser", "url", wsURL)
	} else {
		l := launcher.New().
			Headless(true).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("render: launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		log.Info("render: launched local chrome", "url", wsURL)
	}

	b := rod.New().Context(ctx).ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("render: connect: %w", err)
	}
	if err := b.IgnoreCertErrors(true); err != nil {
		log.Warn("render: ignore cert errors failed", "error", err)
	}

	m.browser = b
	return nil
}

// Open creates a stealth tab sized width x height, navigates to pageURL,
// and waits for the load event. Callers must Close the session on every
// path.
func (m *Manager) Open(ctx context.Context, pageURL string, width, height int) (*Session, error) {
	m.mu.Lock()
	b := m.browser
	m.mu.Unlock()
	if b == nil {
		return nil, fmt.Errorf("%w: browser not started", ErrNavigate)
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("%w: create tab: %v", ErrNavigate, err)
	}

	s := &Session{
		page:   page,
		width:  width,
		height: height,
		logger: m.cfg.Logger,
	}
	if err := s.navigate(ctx, pageURL, m.cfg.NavigateTimeout); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close shuts down Chrome.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true

	if m.browser != nil {
		m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	return nil
}

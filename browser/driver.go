package browser

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Kind names a driver implementation, for logs and results.
type Kind string

const (
	KindChrome    Kind = "chrome"
	KindSimulated Kind = "simulated"
)

// Driver is the capability contract both browser implementations
// satisfy. Failures surface as errors; the navigation loop converts
// them to terminal states instead of crashing the request.
type Driver interface {
	// Start launches the browser and navigates to the start page.
	Start(ctx context.Context) error
	// Screenshot captures the rendered page as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)
	// Execute performs one action against the page.
	Execute(ctx context.Context, a Action) error
	// CurrentURL reports the page the browser is on.
	CurrentURL(ctx context.Context) (string, error)
	// Cleanup releases the browser's resources. Safe to call twice.
	Cleanup()
}

// Config sizes the viewport and selects launch behavior for drivers.
type Config struct {
	Headless       bool
	ChromePath     string
	ViewportWidth  int
	ViewportHeight int
	StartURL       string
	// SettleDelay is the pause after each action so the page can react.
	SettleDelay time.Duration
}

// DefaultConfig returns the viewport and start page the hosted
// computer-use tool is declared with.
func DefaultConfig() Config {
	return Config{
		Headless:       true,
		ViewportWidth:  1024,
		ViewportHeight: 768,
		StartURL:       "https://www.google.com",
		SettleDelay:    500 * time.Millisecond,
	}
}

func (c *Config) applyDefaults() {
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 1024
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = 768
	}
	if c.StartURL == "" {
		c.StartURL = "https://www.google.com"
	}
}

// New picks a driver: the real Chrome driver when it starts, otherwise
// the simulated driver. Callers depend only on the Driver interface;
// Kind tells them which one they got.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Driver, Kind, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.applyDefaults()

	chrome := NewChromeDriver(cfg, logger)
	if err := chrome.Start(ctx); err != nil {
		logger.Warn("chrome driver unavailable, falling back to simulated browser", zap.Error(err))
		chrome.Cleanup()

		sim := NewSimulatedDriver(cfg, logger)
		if err := sim.Start(ctx); err != nil {
			return nil, "", err
		}
		return sim, KindSimulated, nil
	}
	return chrome, KindChrome, nil
}

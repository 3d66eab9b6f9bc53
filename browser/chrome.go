package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ChromeDriver drives a real Chrome instance over the DevTools
// protocol. Actions dispatch raw input events so the page sees the
// same pointer and keyboard stream a user would produce.
type ChromeDriver struct {
	cfg    Config
	logger *zap.Logger

	mu          sync.Mutex
	allocCancel context.CancelFunc
	browserCtx  context.Context
	cancel      context.CancelFunc
	started     bool
}

// NewChromeDriver creates the driver without launching anything;
// Start launches the browser process.
func NewChromeDriver(cfg Config, logger *zap.Logger) *ChromeDriver {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.applyDefaults()
	return &ChromeDriver{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "chrome_driver")),
	}
}

// Start launches Chrome and opens the start page.
func (d *ChromeDriver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", d.cfg.Headless),
		chromedp.WindowSize(d.cfg.ViewportWidth, d.cfg.ViewportHeight),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
	)
	if d.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(d.cfg.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			d.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)

	if err := chromedp.Run(browserCtx, chromedp.Navigate(d.cfg.StartURL)); err != nil {
		cancel()
		allocCancel()
		return fmt.Errorf("failed to start browser: %w", err)
	}

	d.allocCancel = allocCancel
	d.browserCtx = browserCtx
	d.cancel = cancel
	d.started = true

	d.logger.Info("chrome browser started",
		zap.Bool("headless", d.cfg.Headless),
		zap.Int("viewport_w", d.cfg.ViewportWidth),
		zap.Int("viewport_h", d.cfg.ViewportHeight),
		zap.String("start_url", d.cfg.StartURL))
	return nil
}

// Screenshot captures the full rendered page as PNG bytes.
func (d *ChromeDriver) Screenshot(ctx context.Context) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return nil, fmt.Errorf("browser not running")
	}

	var buf []byte
	if err := chromedp.Run(d.browserCtx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return buf, nil
}

// Execute performs one typed action and waits SettleDelay for the page
// to react.
func (d *ChromeDriver) Execute(ctx context.Context, a Action) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return fmt.Errorf("browser not running")
	}
	if err := a.Validate(); err != nil {
		return err
	}

	d.logger.Debug("executing action", zap.Stringer("action", a))

	var err error
	switch a.Type {
	case ActionClick:
		err = d.click(a.X, a.Y, 1)
	case ActionDoubleClick:
		err = d.click(a.X, a.Y, 2)
	case ActionTypeText:
		err = d.typeText(a.Text)
	case ActionKeypress:
		err = d.pressKeys(a.Keys)
	case ActionScroll:
		err = chromedp.Run(d.browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
			return input.DispatchMouseEvent(input.MouseWheel,
				float64(d.cfg.ViewportWidth/2), float64(d.cfg.ViewportHeight/2)).
				WithDeltaX(float64(a.DeltaX)).
				WithDeltaY(float64(a.DeltaY)).Do(ctx)
		}))
	case ActionWait:
		err = chromedp.Run(d.browserCtx, chromedp.Sleep(a.Duration))
	case ActionNavigate:
		err = chromedp.Run(d.browserCtx, chromedp.Navigate(a.URL))
	case ActionScreenshot:
		// No page mutation; the loop captures screenshots itself.
	}
	if err != nil {
		return fmt.Errorf("action %s failed: %w", a, err)
	}

	if d.cfg.SettleDelay > 0 && a.Type != ActionWait {
		_ = chromedp.Run(d.browserCtx, chromedp.Sleep(d.cfg.SettleDelay))
	}
	return nil
}

func (d *ChromeDriver) click(x, y, count int) error {
	return chromedp.Run(d.browserCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return input.DispatchMouseEvent(input.MousePressed, float64(x), float64(y)).
				WithButton(input.Left).WithClickCount(int64(count)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return input.DispatchMouseEvent(input.MouseReleased, float64(x), float64(y)).
				WithButton(input.Left).WithClickCount(int64(count)).Do(ctx)
		}),
	)
}

func (d *ChromeDriver) typeText(text string) error {
	return chromedp.Run(d.browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, ch := range text {
			if err := input.DispatchKeyEvent(input.KeyChar).
				WithText(string(ch)).Do(ctx); err != nil {
				return err
			}
		}
		return nil
	}))
}

// pressKeys sends named keys (Enter, Tab, ArrowDown, ...) one after the
// other; combinations arrive as separate array entries from the model.
func (d *ChromeDriver) pressKeys(keys []string) error {
	return chromedp.Run(d.browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, key := range keys {
			down := input.DispatchKeyEvent(input.KeyDown).WithKey(key)
			if err := down.Do(ctx); err != nil {
				return err
			}
			up := input.DispatchKeyEvent(input.KeyUp).WithKey(key)
			if err := up.Do(ctx); err != nil {
				return err
			}
		}
		return nil
	}))
}

// CurrentURL reports the page location.
func (d *ChromeDriver) CurrentURL(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started {
		return "", fmt.Errorf("browser not running")
	}

	var url string
	if err := chromedp.Run(d.browserCtx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("failed to get url: %w", err)
	}
	return url, nil
}

// Cleanup tears the browser process down.
func (d *ChromeDriver) Cleanup() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.allocCancel != nil {
		d.allocCancel()
		d.allocCancel = nil
	}
	if d.started {
		d.logger.Info("chrome browser closed")
	}
	d.started = false
}

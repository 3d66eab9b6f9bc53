package browser

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/innovate-ai/voxagent/types"
)

// SimulatedDriver is the stand-in used when Chrome cannot be launched.
// It renders a placeholder page, records every action it is asked to
// perform, and tracks a fictitious URL so the loop still observes
// navigation: a navigate action moves the URL directly, and typing a
// string that starts with "http" is treated as entering an address.
type SimulatedDriver struct {
	cfg    Config
	logger *zap.Logger

	mu      sync.Mutex
	running bool
	url     string
	actions []Action
}

// NewSimulatedDriver creates a simulated driver sized like the real one.
func NewSimulatedDriver(cfg Config, logger *zap.Logger) *SimulatedDriver {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.applyDefaults()
	return &SimulatedDriver{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "simulated_driver")),
	}
}

// Start marks the driver running; nothing external launches.
func (d *SimulatedDriver) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.running = true
	d.url = d.cfg.StartURL
	d.logger.Info("starting simulated browser", zap.String("start_url", d.url))
	return nil
}

// Screenshot renders a placeholder page: a flat light-gray canvas with
// a darker bar across the top standing in for the address bar.
func (d *SimulatedDriver) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil, types.NewError(types.ErrActionExecution, "simulated browser not running")
	}

	img := image.NewRGBA(image.Rect(0, 0, d.cfg.ViewportWidth, d.cfg.ViewportHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{240, 240, 240, 255}}, image.Point{}, draw.Src)

	barHeight := 40
	if barHeight > d.cfg.ViewportHeight {
		barHeight = d.cfg.ViewportHeight
	}
	bar := image.Rect(0, 0, d.cfg.ViewportWidth, barHeight)
	draw.Draw(img, bar, &image.Uniform{color.RGBA{200, 200, 200, 255}}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, types.NewError(types.ErrActionExecution, "failed to render placeholder screenshot").WithCause(err)
	}
	return buf.Bytes(), nil
}

// Execute records the action and updates the fictitious URL.
func (d *SimulatedDriver) Execute(ctx context.Context, a Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return types.NewError(types.ErrActionExecution, "simulated browser not running")
	}
	if err := a.Validate(); err != nil {
		return err
	}

	d.actions = append(d.actions, a)
	d.logger.Info("simulated action", zap.Stringer("action", a))

	switch a.Type {
	case ActionNavigate:
		d.url = a.URL
	case ActionTypeText:
		if strings.HasPrefix(a.Text, "http") {
			d.url = a.Text
		}
	}
	return nil
}

// CurrentURL reports the fictitious location.
func (d *SimulatedDriver) CurrentURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return "", types.NewError(types.ErrActionExecution, "simulated browser not running")
	}
	return d.url, nil
}

// Cleanup stops the simulation. Safe to call twice.
func (d *SimulatedDriver) Cleanup() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		d.logger.Info("simulated browser resources cleaned up")
	}
	d.running = false
}

// Actions returns a copy of every action executed so far.
func (d *SimulatedDriver) Actions() []Action {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Action, len(d.actions))
	copy(out, d.actions)
	return out
}

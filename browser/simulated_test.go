package browser

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedDriverScreenshotIsPNG(t *testing.T) {
	d := NewSimulatedDriver(DefaultConfig(), nil)
	require.NoError(t, d.Start(context.Background()))
	defer d.Cleanup()

	data, err := d.Screenshot(context.Background())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1024, img.Bounds().Dx())
	assert.Equal(t, 768, img.Bounds().Dy())

	// Below the address bar the page is flat light gray.
	r, g, b, _ := img.At(512, 400).RGBA()
	assert.Equal(t, uint32(240), r>>8)
	assert.Equal(t, uint32(240), g>>8)
	assert.Equal(t, uint32(240), b>>8)
}

func TestSimulatedDriverNotRunning(t *testing.T) {
	d := NewSimulatedDriver(DefaultConfig(), nil)

	_, err := d.Screenshot(context.Background())
	assert.Error(t, err)
	assert.Error(t, d.Execute(context.Background(), Click(1, 1)))

	require.NoError(t, d.Start(context.Background()))
	d.Cleanup()
	_, err = d.CurrentURL(context.Background())
	assert.Error(t, err)
}

func TestSimulatedDriverHonorsCancelledContext(t *testing.T) {
	d := NewSimulatedDriver(DefaultConfig(), nil)
	require.NoError(t, d.Start(context.Background()))
	defer d.Cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, d.Execute(ctx, Click(1, 1)), context.Canceled)
	_, err := d.Screenshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = d.CurrentURL(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, d.Start(ctx), context.Canceled)

	// The driver itself stays usable with a live context.
	assert.NoError(t, d.Execute(context.Background(), Click(2, 2)))
}

func TestSimulatedDriverRecordsActions(t *testing.T) {
	d := NewSimulatedDriver(DefaultConfig(), nil)
	require.NoError(t, d.Start(context.Background()))
	defer d.Cleanup()

	require.NoError(t, d.Execute(context.Background(), Click(10, 20)))
	require.NoError(t, d.Execute(context.Background(), Type("hola")))

	acts := d.Actions()
	require.Len(t, acts, 2)
	assert.Equal(t, ActionClick, acts[0].Type)
	assert.Equal(t, ActionTypeText, acts[1].Type)
}

// The fictitious URL follows the last navigate action, or the last
// typed text that looks like an address; everything else leaves it
// unchanged.
func TestProperty_SimulatedDriverURLTracking(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	genAction := gen.OneGenOf(
		gen.IntRange(0, 767).Map(func(n int) Action { return Click(n, n) }),
		gen.AlphaString().Map(func(s string) Action { return Type(s) }),
		gen.AlphaString().Map(func(s string) Action { return Type("http://" + s) }),
		gen.AlphaString().Map(func(s string) Action { return Navigate("https://" + s) }),
		gen.Const(Scroll(0, 100)),
		gen.Const(TakeScreenshot()),
	)

	properties.Property("current URL reflects the last address-bearing action", prop.ForAll(
		func(actions []Action) bool {
			d := NewSimulatedDriver(DefaultConfig(), nil)
			if err := d.Start(context.Background()); err != nil {
				return false
			}
			defer d.Cleanup()

			want := DefaultConfig().StartURL
			for _, a := range actions {
				if err := d.Execute(context.Background(), a); err != nil {
					return false
				}
				switch {
				case a.Type == ActionNavigate:
					want = a.URL
				case a.Type == ActionTypeText && len(a.Text) >= 4 && a.Text[:4] == "http":
					want = a.Text
				}
			}

			got, err := d.CurrentURL(context.Background())
			return err == nil && got == want
		},
		gen.SliceOf(genAction),
	))

	properties.TestingRun(t)
}

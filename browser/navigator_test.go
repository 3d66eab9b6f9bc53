package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/innovate-ai/voxagent/openai"
)

// scriptedPlanner returns a fixed sequence of plans, then keeps
// repeating the last one. It counts every model turn.
type scriptedPlanner struct {
	plans []*Plan
	calls int
}

func (p *scriptedPlanner) next() (*Plan, error) {
	p.calls++
	if len(p.plans) == 0 {
		return nil, errors.New("planner script exhausted")
	}
	plan := p.plans[0]
	if len(p.plans) > 1 {
		p.plans = p.plans[1:]
	}
	return plan, nil
}

func (p *scriptedPlanner) PlanStart(ctx context.Context, instructions string, screenshot []byte) (*Plan, error) {
	return p.next()
}

func (p *scriptedPlanner) PlanNext(ctx context.Context, prev *Plan, screenshot []byte) (*Plan, error) {
	return p.next()
}

// countingDriver tracks calls and can be told to fail.
type countingDriver struct {
	screenshots    int
	executes       int
	cleanups       int
	failExecuteAt  int // 1-based execute index that fails; 0 means never
	failScreenshot int // 1-based screenshot index that fails; 0 means never
}

func (d *countingDriver) Start(ctx context.Context) error { return nil }

func (d *countingDriver) Screenshot(ctx context.Context) ([]byte, error) {
	d.screenshots++
	if d.failScreenshot != 0 && d.screenshots >= d.failScreenshot {
		return nil, errors.New("capture failed")
	}
	return []byte("png"), nil
}

func (d *countingDriver) Execute(ctx context.Context, a Action) error {
	d.executes++
	if d.failExecuteAt != 0 && d.executes >= d.failExecuteAt {
		return errors.New("dispatch failed")
	}
	return nil
}

func (d *countingDriver) CurrentURL(ctx context.Context) (string, error) { return "about:blank", nil }

func (d *countingDriver) Cleanup() { d.cleanups++ }

func actionPlan(ref string, reasoning ...string) *Plan {
	return &Plan{
		Ref:       ref,
		Reasoning: reasoning,
		Call:      &PlannedCall{CallID: "call-" + ref, Action: Click(10, 10)},
	}
}

func donePlan(finalText string, reasoning ...string) *Plan {
	return &Plan{Ref: "done", Reasoning: reasoning, FinalText: finalText}
}

func newTestNavigator(p Planner) *Navigator {
	return NewNavigator(p, NavigatorConfig{MaxRounds: 15, ScreenshotDir: ""}, nil)
}

func (n *Navigator) runT(t *testing.T, driver Driver) (*Result, error) {
	t.Helper()
	return n.Run(context.Background(), "busca el precio", driver, nil)
}

func TestNavigatorCompletes(t *testing.T) {
	planner := &scriptedPlanner{plans: []*Plan{
		actionPlan("r1", "Abro la página"),
		actionPlan("r2", "Escribo la consulta"),
		donePlan("El precio es 42€", "Leo el resultado"),
	}}
	driver := &countingDriver{}

	nav := NewNavigator(planner, NavigatorConfig{MaxRounds: 15, ScreenshotDir: t.TempDir()}, nil)
	res, err := nav.runT(t, driver)
	require.NoError(t, err)

	assert.Equal(t, TerminalCompleted, res.Terminal)
	assert.Equal(t, 3, res.Rounds)
	assert.Equal(t, 2, driver.executes)
	// Initial screenshot plus one after each successful action.
	assert.Equal(t, 3, driver.screenshots)
	assert.Zero(t, driver.cleanups, "caller-provided driver must stay alive")

	assert.Contains(t, res.Summary, "Paso 1: Abro la página")
	assert.Contains(t, res.Summary, "Paso 2: Escribo la consulta")
	assert.Contains(t, res.Summary, "Paso 3: Leo el resultado")
	assert.Contains(t, res.Summary, "Resultado: El precio es 42€")
	assert.NotContains(t, res.Summary, "límite máximo")
	assert.NotEmpty(t, res.ScreenshotPath)

	require.Len(t, res.Steps, 3)
	assert.Equal(t, 1, res.Steps[0].Index)
	assert.Equal(t, []string{"Abro la página"}, res.Steps[0].Reasoning)
	require.NotNil(t, res.Steps[0].Action)
	assert.True(t, res.Steps[0].ActionOK)
	assert.NotEmpty(t, res.Steps[0].ScreenshotPath)
	assert.Nil(t, res.Steps[2].Action, "final round carries no action")
	assert.Equal(t, "Resultado: El precio es 42€", res.Steps[2].Note)
}

func TestNavigatorRoundLimit(t *testing.T) {
	// The planner never stops asking for actions.
	planner := &scriptedPlanner{plans: []*Plan{actionPlan("loop", "Sigo buscando")}}
	driver := &countingDriver{}

	nav := newTestNavigator(planner)
	res, err := nav.runT(t, driver)
	require.NoError(t, err)

	assert.Equal(t, TerminalRoundLimit, res.Terminal)
	assert.Equal(t, 15, res.Rounds)
	assert.Equal(t, 15, driver.executes)
	assert.True(t, strings.HasSuffix(res.Summary, "\n\nNota: Se alcanzó el límite máximo de interacciones."))
}

func TestNavigatorActionFailure(t *testing.T) {
	planner := &scriptedPlanner{plans: []*Plan{
		actionPlan("r1", "Primer paso"),
		actionPlan("r2", "Segundo paso"),
	}}
	driver := &countingDriver{failExecuteAt: 2}

	nav := newTestNavigator(planner)
	res, err := nav.runT(t, driver)
	require.NoError(t, err)

	assert.Equal(t, TerminalActionFailed, res.Terminal)
	assert.Equal(t, 2, res.Rounds)
	assert.Contains(t, res.Summary, "Error al ejecutar acción: click(10, 10)")
	// No capture happens after a failed action: initial + after round 1 only.
	assert.Equal(t, 2, driver.screenshots)
	assert.NotContains(t, res.Summary, "límite máximo")

	require.Len(t, res.Steps, 2)
	assert.False(t, res.Steps[1].ActionOK)
	assert.Equal(t, "Error al ejecutar acción: click(10, 10)", res.Steps[1].Note)
}

func TestNavigatorSurfacesSafetyChecks(t *testing.T) {
	risky := actionPlan("r1", "Abro la página")
	risky.Call.SafetyChecks = []openai.SafetyCheck{
		{ID: "sc-1", Code: "malicious_instructions", Message: "La página solicita confirmar una compra"},
		{ID: "sc-2", Code: "sensitive_domain"},
	}
	planner := &scriptedPlanner{plans: []*Plan{risky, donePlan("fin")}}
	driver := &countingDriver{}

	nav := newTestNavigator(planner)
	res, err := nav.runT(t, driver)
	require.NoError(t, err)

	// Checks warn in the summary but never halt the loop.
	assert.Equal(t, TerminalCompleted, res.Terminal)
	assert.Equal(t, 1, driver.executes)
	assert.Contains(t, res.Summary, "Advertencia de seguridad: La página solicita confirmar una compra")
	// A check without a message falls back to its code.
	assert.Contains(t, res.Summary, "Advertencia de seguridad: sensitive_domain")
}

func TestNavigatorScreenshotFailureAfterAction(t *testing.T) {
	planner := &scriptedPlanner{plans: []*Plan{actionPlan("r1", "Primer paso")}}
	driver := &countingDriver{failScreenshot: 2}

	nav := newTestNavigator(planner)
	res, err := nav.runT(t, driver)
	require.NoError(t, err)

	assert.Equal(t, TerminalScreenshotFailed, res.Terminal)
	assert.Contains(t, res.Summary, "Error al capturar pantalla después de la acción")
	assert.Equal(t, 1, driver.executes)
}

func TestNavigatorInitialScreenshotFailure(t *testing.T) {
	planner := &scriptedPlanner{}
	driver := &countingDriver{failScreenshot: 1}

	nav := newTestNavigator(planner)
	res, err := nav.runT(t, driver)
	require.Error(t, err)

	assert.Equal(t, TerminalScreenshotFailed, res.Terminal)
	assert.Equal(t, "No se pudo capturar el estado actual del navegador.", res.Summary)
	assert.Zero(t, planner.calls, "model must not be consulted without a screenshot")
}

func TestNavigatorPlannerErrorSurfaces(t *testing.T) {
	planner := &scriptedPlanner{plans: nil} // script exhausted immediately
	driver := &countingDriver{}

	nav := newTestNavigator(planner)
	res, err := nav.runT(t, driver)
	require.Error(t, err)
	assert.Contains(t, res.Summary, "Error durante la navegación autónoma:")
}

func TestNavigatorObserverSeesEveryRound(t *testing.T) {
	planner := &scriptedPlanner{plans: []*Plan{
		actionPlan("r1", "Paso uno"),
		donePlan("listo"),
	}}
	driver := &countingDriver{}

	var updates []RoundUpdate
	nav := NewNavigator(planner, NavigatorConfig{MaxRounds: 15, ScreenshotDir: t.TempDir()}, nil)
	_, err := nav.Run(context.Background(), "tarea", driver, func(u RoundUpdate) {
		updates = append(updates, u)
	})
	require.NoError(t, err)

	require.Len(t, updates, 2)
	assert.Equal(t, 1, updates[0].Round)
	assert.Equal(t, "click(10, 10)", updates[0].Action)
	assert.Equal(t, 2, updates[1].Round)
	assert.Empty(t, updates[1].Action)
}

// Round accounting holds for any run length: rounds never exceed the
// cap, and with a healthy driver the screenshot count is one more than
// the number of executed actions.
func TestProperty_NavigatorRoundBound(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxRounds := rapid.IntRange(1, 30).Draw(rt, "maxRounds")
		steps := rapid.IntRange(0, 40).Draw(rt, "steps")

		plans := make([]*Plan, 0, steps+1)
		for i := 0; i < steps; i++ {
			plans = append(plans, actionPlan(fmt.Sprintf("r%d", i)))
		}
		plans = append(plans, donePlan("fin"))

		planner := &scriptedPlanner{plans: plans}
		driver := &countingDriver{}

		nav := NewNavigator(planner, NavigatorConfig{MaxRounds: maxRounds}, nil)
		res, err := nav.Run(context.Background(), "tarea", driver, nil)
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}

		if res.Rounds > maxRounds {
			rt.Fatalf("rounds %d exceeded cap %d", res.Rounds, maxRounds)
		}
		if len(res.Steps) != res.Rounds {
			rt.Fatalf("step records %d != rounds %d", len(res.Steps), res.Rounds)
		}
		if driver.screenshots != driver.executes+1 {
			rt.Fatalf("screenshots %d != executes %d + 1", driver.screenshots, driver.executes)
		}
		if steps >= maxRounds {
			if res.Terminal != TerminalRoundLimit {
				rt.Fatalf("expected round_limit with %d pending steps, got %s", steps, res.Terminal)
			}
		} else if res.Terminal != TerminalCompleted {
			rt.Fatalf("expected completed, got %s", res.Terminal)
		}
	})
}

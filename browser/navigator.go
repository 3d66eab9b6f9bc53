package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/innovate-ai/voxagent/openai"
)

// TerminalState says how a navigation session ended.
type TerminalState string

const (
	// TerminalCompleted: the model stopped requesting actions.
	TerminalCompleted TerminalState = "completed"
	// TerminalActionFailed: the driver rejected an action.
	TerminalActionFailed TerminalState = "action_failed"
	// TerminalScreenshotFailed: a post-action capture failed.
	TerminalScreenshotFailed TerminalState = "screenshot_failed"
	// TerminalRoundLimit: the round cap was hit with actions pending.
	TerminalRoundLimit TerminalState = "round_limit"
)

// Result is the outcome of one navigation session.
type Result struct {
	Instructions   string        `json:"instructions"`
	Summary        string        `json:"summary"`
	ScreenshotPath string        `json:"screenshot_path,omitempty"`
	Rounds         int           `json:"rounds"`
	Steps          []Round       `json:"steps"`
	Terminal       TerminalState `json:"terminal"`
	DriverKind     Kind          `json:"driver_kind"`
}

// Round records one loop iteration: what the model reasoned, which
// action ran and how it went. Note carries the human-readable outcome
// line when the round produced one.
type Round struct {
	Index          int      `json:"index"`
	Reasoning      []string `json:"reasoning,omitempty"`
	Action         *Action  `json:"action,omitempty"`
	ActionOK       bool     `json:"action_ok"`
	ScreenshotPath string   `json:"screenshot_path,omitempty"`
	Note           string   `json:"note,omitempty"`
}

// RoundUpdate is emitted after each round for live observers.
type RoundUpdate struct {
	Round          int      `json:"round"`
	Reasoning      []string `json:"reasoning,omitempty"`
	Action         string   `json:"action,omitempty"`
	ScreenshotPath string   `json:"screenshot_path,omitempty"`
}

// NavigatorConfig bounds the loop and places its artifacts.
type NavigatorConfig struct {
	MaxRounds     int
	ScreenshotDir string
	Driver        Config
}

// Navigator runs the autonomous loop: screenshot, ask the planner for
// an action, execute it, screenshot again, repeat. Every round is
// capped; model safety checks are logged, surfaced as warnings in the
// running summary and acknowledged, but never halt the loop.
type Navigator struct {
	planner Planner
	cfg     NavigatorConfig
	logger  *zap.Logger
}

// NewNavigator wires a planner to the loop.
func NewNavigator(planner Planner, cfg NavigatorConfig, logger *zap.Logger) *Navigator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = 15
	}
	return &Navigator{
		planner: planner,
		cfg:     cfg,
		logger:  logger.With(zap.String("component", "navigator")),
	}
}

// Run executes one navigation session. When driver is nil the
// navigator creates one (Chrome, falling back to simulated) and owns
// its cleanup; a caller-provided driver is left running for reuse.
// observe may be nil; when set it is called after every round.
func (n *Navigator) Run(ctx context.Context, instructions string, driver Driver, observe func(RoundUpdate)) (*Result, error) {
	res := &Result{Instructions: instructions, Terminal: TerminalCompleted}

	owned := false
	if driver == nil {
		d, kind, err := New(ctx, n.cfg.Driver, n.logger)
		if err != nil {
			res.Summary = "No se pudo iniciar el navegador virtual."
			return res, err
		}
		driver = d
		owned = true
		res.DriverKind = kind
	}
	if owned {
		defer driver.Cleanup()
	}

	screenshot, err := driver.Screenshot(ctx)
	if err != nil {
		res.Summary = "No se pudo capturar el estado actual del navegador."
		res.Terminal = TerminalScreenshotFailed
		return res, err
	}

	plan, err := n.planner.PlanStart(ctx, instructions, screenshot)
	if err != nil {
		res.Summary = "Error durante la navegación autónoma: " + err.Error()
		return res, err
	}

	var lines []string
	settled := false
	round := 0
	for round < n.cfg.MaxRounds {
		round++
		res.Rounds = round
		step := Round{Index: round, Reasoning: plan.Reasoning}

		for _, summary := range plan.Reasoning {
			lines = append(lines, fmt.Sprintf("Paso %d: %s", round, summary))
		}

		if plan.Call == nil {
			if plan.FinalText != "" {
				step.Note = "Resultado: " + plan.FinalText
				lines = append(lines, step.Note)
			}
			res.Terminal = TerminalCompleted
			settled = true
			res.Steps = append(res.Steps, step)
			n.emit(observe, RoundUpdate{Round: round, Reasoning: plan.Reasoning})
			break
		}

		call := plan.Call
		action := call.Action
		step.Action = &action
		for _, check := range call.SafetyChecks {
			lines = append(lines, "Advertencia de seguridad: "+safetyText(check))
			n.logger.Warn("acknowledging model safety check",
				zap.String("check_id", check.ID),
				zap.String("code", check.Code),
				zap.String("message", check.Message))
		}

		n.logger.Info("executing planned action",
			zap.Int("round", round),
			zap.Stringer("action", call.Action))

		if err := driver.Execute(ctx, call.Action); err != nil {
			n.logger.Error("action failed", zap.Error(err), zap.Stringer("action", call.Action))
			step.Note = fmt.Sprintf("Error al ejecutar acción: %s", call.Action)
			lines = append(lines, step.Note)
			res.Terminal = TerminalActionFailed
			settled = true
			res.Steps = append(res.Steps, step)
			n.emit(observe, RoundUpdate{Round: round, Reasoning: plan.Reasoning, Action: call.Action.String()})
			break
		}
		step.ActionOK = true

		screenshot, err = driver.Screenshot(ctx)
		if err != nil {
			n.logger.Error("post-action screenshot failed", zap.Error(err))
			step.Note = "Error al capturar pantalla después de la acción"
			lines = append(lines, step.Note)
			res.Terminal = TerminalScreenshotFailed
			settled = true
			res.Steps = append(res.Steps, step)
			n.emit(observe, RoundUpdate{Round: round, Reasoning: plan.Reasoning, Action: call.Action.String()})
			break
		}

		if path, err := n.saveScreenshot(screenshot); err == nil {
			res.ScreenshotPath = path
			step.ScreenshotPath = path
		} else {
			n.logger.Warn("failed to persist screenshot", zap.Error(err))
		}

		res.Steps = append(res.Steps, step)
		n.emit(observe, RoundUpdate{
			Round:          round,
			Reasoning:      plan.Reasoning,
			Action:         call.Action.String(),
			ScreenshotPath: res.ScreenshotPath,
		})

		plan, err = n.planner.PlanNext(ctx, plan, screenshot)
		if err != nil {
			res.Summary = strings.Join(lines, "\n")
			if res.Summary != "" {
				res.Summary += "\n"
			}
			res.Summary += "Error durante la navegación autónoma: " + err.Error()
			return res, err
		}
	}

	res.Summary = strings.Join(lines, "\n")
	if !settled {
		res.Terminal = TerminalRoundLimit
		res.Summary += "\n\nNota: Se alcanzó el límite máximo de interacciones."
	}

	n.logger.Info("navigation finished",
		zap.Int("rounds", res.Rounds),
		zap.String("terminal", string(res.Terminal)))
	return res, nil
}

// safetyText picks the human-readable side of a safety check.
func safetyText(c openai.SafetyCheck) string {
	if c.Message != "" {
		return c.Message
	}
	return c.Code
}

func (n *Navigator) emit(observe func(RoundUpdate), u RoundUpdate) {
	if observe != nil {
		observe(u)
	}
}

func (n *Navigator) saveScreenshot(data []byte) (string, error) {
	dir := n.cfg.ScreenshotDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("screenshot_%s.png", uuid.NewString()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

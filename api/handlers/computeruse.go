package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/innovate-ai/voxagent/browser"
)

// BrowserNavigator runs one autonomous browsing session.
type BrowserNavigator interface {
	Run(ctx context.Context, instructions string, driver browser.Driver, observe func(browser.RoundUpdate)) (*browser.Result, error)
}

// NavigationMetrics records finished sessions. A nil value disables
// recording.
type NavigationMetrics interface {
	RecordNavigation(terminal, driver string, rounds int)
}

// ComputerUseHandler exposes the autonomous browser over HTTP and
// WebSocket.
type ComputerUseHandler struct {
	navigator BrowserNavigator
	metrics   NavigationMetrics
	// sessionTimeout bounds one navigation session end to end.
	sessionTimeout time.Duration
	logger         *zap.Logger
}

// NewComputerUseHandler builds the handler. metrics may be nil.
func NewComputerUseHandler(navigator BrowserNavigator, metrics NavigationMetrics, logger *zap.Logger) *ComputerUseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComputerUseHandler{
		navigator:      navigator,
		metrics:        metrics,
		sessionTimeout: 10 * time.Minute,
		logger:         logger.With(zap.String("component", "computer_use_handler")),
	}
}

type computerUseRequest struct {
	Instructions string `json:"instructions"`
}

type computerUseResponse struct {
	Summary       string          `json:"summary"`
	ScreenshotURL string          `json:"screenshot_url,omitempty"`
	TerminalState string          `json:"terminal_state"`
	Steps         []browser.Round `json:"steps"`
}

// streamFrame is one WebSocket message: a per-round update or the
// final result.
type streamFrame struct {
	Type   string               `json:"type"` // "round", "result", "error"
	Round  *browser.RoundUpdate `json:"round,omitempty"`
	Result *computerUseResponse `json:"result,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// HandleRun serves POST /api/computer-use. Navigation failures are
// reported inside the summary, not as HTTP errors: the session always
// ends with a human-readable account of what happened.
func (h *ComputerUseHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var req computerUseRequest
	if !DecodeJSONBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Instructions) == "" {
		WriteErrorMessage(w, http.StatusBadRequest, "No se proporcionaron instrucciones")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.sessionTimeout)
	defer cancel()

	result, err := h.navigator.Run(ctx, req.Instructions, nil, nil)
	if err != nil {
		h.logger.Warn("navigation session ended with error",
			zap.String("terminal", string(result.Terminal)),
			zap.Error(err))
	}
	h.record(result)

	WriteJSON(w, http.StatusOK, h.toResponse(result))
}

// HandleStream serves GET /api/computer-use/stream: the client sends
// one {instructions} frame and receives a frame per round plus a final
// result frame.
func (h *ComputerUseHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithTimeout(r.Context(), h.sessionTimeout)
	defer cancel()

	var req computerUseRequest
	if err := wsjson.Read(ctx, conn, &req); err != nil {
		h.logger.Warn("failed to read instructions frame", zap.Error(err))
		return
	}
	if strings.TrimSpace(req.Instructions) == "" {
		_ = wsjson.Write(ctx, conn, streamFrame{Type: "error", Error: "No se proporcionaron instrucciones"})
		_ = conn.Close(websocket.StatusPolicyViolation, "no instructions")
		return
	}

	observe := func(u browser.RoundUpdate) {
		update := u
		update.ScreenshotPath = screenshotURL(u.ScreenshotPath)
		if err := wsjson.Write(ctx, conn, streamFrame{Type: "round", Round: &update}); err != nil {
			h.logger.Debug("failed to push round frame", zap.Error(err))
		}
	}

	result, err := h.navigator.Run(ctx, req.Instructions, nil, observe)
	if err != nil {
		h.logger.Warn("navigation session ended with error",
			zap.String("terminal", string(result.Terminal)),
			zap.Error(err))
	}
	h.record(result)

	if err := wsjson.Write(ctx, conn, streamFrame{Type: "result", Result: h.toResponse(result)}); err != nil {
		h.logger.Warn("failed to push result frame", zap.Error(err))
		return
	}
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

func (h *ComputerUseHandler) toResponse(result *browser.Result) *computerUseResponse {
	// Step screenshots leave the handler as serving URLs, never as
	// filesystem paths.
	steps := make([]browser.Round, len(result.Steps))
	for i, step := range result.Steps {
		step.ScreenshotPath = screenshotURL(step.ScreenshotPath)
		steps[i] = step
	}
	return &computerUseResponse{
		Summary:       result.Summary,
		ScreenshotURL: screenshotURL(result.ScreenshotPath),
		TerminalState: string(result.Terminal),
		Steps:         steps,
	}
}

func (h *ComputerUseHandler) record(result *browser.Result) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordNavigation(string(result.Terminal), string(result.DriverKind), result.Rounds)
}

// screenshotURL maps a stored screenshot path to its serving URL.
func screenshotURL(path string) string {
	if path == "" {
		return ""
	}
	return "/screenshots/" + filepath.Base(path)
}

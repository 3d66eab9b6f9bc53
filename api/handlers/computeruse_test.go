package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/innovate-ai/voxagent/browser"
)

type fakeNavigator struct {
	result  *browser.Result
	err     error
	updates []browser.RoundUpdate
}

func (f *fakeNavigator) Run(ctx context.Context, instructions string, driver browser.Driver, observe func(browser.RoundUpdate)) (*browser.Result, error) {
	for _, u := range f.updates {
		if observe != nil {
			observe(u)
		}
	}
	res := f.result
	if res == nil {
		res = &browser.Result{Instructions: instructions, Terminal: browser.TerminalCompleted}
	}
	return res, f.err
}

type fakeNavMetrics struct {
	terminal string
	driver   string
	rounds   int
	calls    int
}

func (f *fakeNavMetrics) RecordNavigation(terminal, driver string, rounds int) {
	f.calls++
	f.terminal = terminal
	f.driver = driver
	f.rounds = rounds
}

func TestComputerUseHandler_Run(t *testing.T) {
	click := browser.Click(100, 200)
	nav := &fakeNavigator{result: &browser.Result{
		Summary:        "Paso 1: abrir página\nResultado: listo",
		ScreenshotPath: "/tmp/screens/screenshot_abc.png",
		Rounds:         3,
		Steps: []browser.Round{
			{Index: 1, Reasoning: []string{"abrir página"}, Action: &click, ActionOK: true, ScreenshotPath: "/tmp/screens/screenshot_abc.png"},
			{Index: 2, Action: &click, ActionOK: true},
			{Index: 3, Note: "Resultado: listo"},
		},
		Terminal:   browser.TerminalCompleted,
		DriverKind: browser.KindSimulated,
	}}
	metrics := &fakeNavMetrics{}
	h := NewComputerUseHandler(nav, metrics, zap.NewNop())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/computer-use",
		strings.NewReader(`{"instructions":"busca el clima en Madrid"}`))
	h.HandleRun(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp computerUseResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Paso 1: abrir página\nResultado: listo", resp.Summary)
	assert.Equal(t, "/screenshots/screenshot_abc.png", resp.ScreenshotURL)
	assert.Equal(t, "completed", resp.TerminalState)

	require.Len(t, resp.Steps, 3)
	assert.Equal(t, 1, resp.Steps[0].Index)
	require.NotNil(t, resp.Steps[0].Action)
	assert.True(t, resp.Steps[0].ActionOK)
	// Step screenshots come back as serving URLs, not filesystem paths.
	assert.Equal(t, "/screenshots/screenshot_abc.png", resp.Steps[0].ScreenshotPath)
	assert.Equal(t, "Resultado: listo", resp.Steps[2].Note)

	assert.Equal(t, 1, metrics.calls)
	assert.Equal(t, "completed", metrics.terminal)
	assert.Equal(t, "simulated", metrics.driver)
	assert.Equal(t, 3, metrics.rounds)
}

func TestComputerUseHandler_MissingInstructions(t *testing.T) {
	h := NewComputerUseHandler(&fakeNavigator{}, nil, zap.NewNop())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/computer-use", strings.NewReader(`{"instructions":"  "}`))
	h.HandleRun(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No se proporcionaron instrucciones")
}

func TestComputerUseHandler_NavigationErrorStillResponds(t *testing.T) {
	nav := &fakeNavigator{
		result: &browser.Result{
			Summary:  "No se pudo iniciar el navegador virtual.",
			Terminal: browser.TerminalCompleted,
		},
		err: assert.AnError,
	}
	h := NewComputerUseHandler(nav, nil, zap.NewNop())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/computer-use", strings.NewReader(`{"instructions":"abre google"}`))
	h.HandleRun(w, r)

	// Failures are narrated in the summary, not turned into HTTP errors.
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No se pudo iniciar el navegador virtual.")
}

func TestComputerUseHandler_NoScreenshotOmitsURL(t *testing.T) {
	nav := &fakeNavigator{result: &browser.Result{Summary: "done", Terminal: browser.TerminalCompleted}}
	h := NewComputerUseHandler(nav, nil, zap.NewNop())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/computer-use", strings.NewReader(`{"instructions":"abre google"}`))
	h.HandleRun(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "screenshot_url")
}

func TestComputerUseHandler_Stream(t *testing.T) {
	nav := &fakeNavigator{
		updates: []browser.RoundUpdate{
			{Round: 1, Action: "click at (100, 200)", ScreenshotPath: "/tmp/screens/screenshot_1.png"},
			{Round: 2, Action: "type \"clima\""},
		},
		result: &browser.Result{
			Summary: "Resultado: listo",
			Rounds:  2,
			Steps: []browser.Round{
				{Index: 1, ActionOK: true},
				{Index: 2, Note: "Resultado: listo"},
			},
			Terminal: browser.TerminalCompleted,
		},
	}
	h := NewComputerUseHandler(nav, nil, zap.NewNop())

	srv := httptest.NewServer(http.HandlerFunc(h.HandleStream))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.NoError(t, wsjson.Write(ctx, conn, computerUseRequest{Instructions: "busca el clima"}))

	var frames []streamFrame
	for {
		var frame streamFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			break
		}
		frames = append(frames, frame)
		if frame.Type == "result" {
			break
		}
	}

	require.Len(t, frames, 3)
	assert.Equal(t, "round", frames[0].Type)
	assert.Equal(t, 1, frames[0].Round.Round)
	assert.Equal(t, "/screenshots/screenshot_1.png", frames[0].Round.ScreenshotPath)
	assert.Equal(t, "round", frames[1].Type)
	assert.Equal(t, "result", frames[2].Type)
	assert.Equal(t, "Resultado: listo", frames[2].Result.Summary)
	assert.Len(t, frames[2].Result.Steps, 2)
}

func TestComputerUseHandler_StreamMissingInstructions(t *testing.T) {
	h := NewComputerUseHandler(&fakeNavigator{}, nil, zap.NewNop())

	srv := httptest.NewServer(http.HandlerFunc(h.HandleStream))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	require.NoError(t, wsjson.Write(ctx, conn, computerUseRequest{}))

	var frame streamFrame
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	assert.Equal(t, "error", frame.Type)
	assert.Equal(t, "No se proporcionaron instrucciones", frame.Error)
}

func TestScreenshotURL(t *testing.T) {
	assert.Empty(t, screenshotURL(""))
	assert.Equal(t, "/screenshots/shot.png", screenshotURL("/var/data/screens/shot.png"))
	assert.Equal(t, "/screenshots/shot.png", screenshotURL("shot.png"))
}

// Package browser drives a real or simulated browser through a closed
// set of typed actions, and runs the autonomous navigation loop that
// alternates between a vision model and the driver.
package browser

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/innovate-ai/voxagent/types"
)

// ActionType discriminates the Action variants.
type ActionType string

const (
	ActionClick       ActionType = "click"
	ActionDoubleClick ActionType = "double_click"
	ActionTypeText    ActionType = "type"
	ActionKeypress    ActionType = "keypress"
	ActionScroll      ActionType = "scroll"
	ActionWait        ActionType = "wait"
	ActionNavigate    ActionType = "navigate"
	ActionScreenshot  ActionType = "screenshot"
)

// Action is one browser action requested by the model. Exactly the
// payload fields of the active variant are meaningful; the rest stay
// zero. Consumers switch exhaustively on Type.
type Action struct {
	Type ActionType `json:"type"`

	// click / double_click
	X int `json:"x,omitempty"`
	Y int `json:"y,omitempty"`

	// type
	Text string `json:"text,omitempty"`

	// keypress
	Keys []string `json:"keys,omitempty"`

	// scroll
	DeltaX int `json:"delta_x,omitempty"`
	DeltaY int `json:"delta_y,omitempty"`

	// wait
	Duration time.Duration `json:"duration,omitempty"`

	// navigate
	URL string `json:"url,omitempty"`
}

// Click builds a click action at viewport coordinates.
func Click(x, y int) Action { return Action{Type: ActionClick, X: x, Y: y} }

// DoubleClick builds a double-click action at viewport coordinates.
func DoubleClick(x, y int) Action { return Action{Type: ActionDoubleClick, X: x, Y: y} }

// Type builds a text-entry action.
func Type(text string) Action { return Action{Type: ActionTypeText, Text: text} }

// Keypress builds a key-combination action.
func Keypress(keys ...string) Action { return Action{Type: ActionKeypress, Keys: keys} }

// Scroll builds a wheel action with pixel deltas.
func Scroll(dx, dy int) Action { return Action{Type: ActionScroll, DeltaX: dx, DeltaY: dy} }

// Wait builds a pause action.
func Wait(d time.Duration) Action { return Action{Type: ActionWait, Duration: d} }

// Navigate builds a direct navigation action.
func Navigate(url string) Action { return Action{Type: ActionNavigate, URL: url} }

// TakeScreenshot builds a screenshot-only action.
func TakeScreenshot() Action { return Action{Type: ActionScreenshot} }

// wireAction mirrors the computer-use model's action object. The model
// emits scroll deltas as scroll_x/scroll_y, key presses as a keys array
// or a single key, and wait durations in milliseconds.
type wireAction struct {
	Type    string   `json:"type"`
	X       *int     `json:"x,omitempty"`
	Y       *int     `json:"y,omitempty"`
	Text    string   `json:"text,omitempty"`
	Key     string   `json:"key,omitempty"`
	Keys    []string `json:"keys,omitempty"`
	ScrollX *int     `json:"scroll_x,omitempty"`
	ScrollY *int     `json:"scroll_y,omitempty"`
	DeltaX  *int     `json:"delta_x,omitempty"`
	DeltaY  *int     `json:"delta_y,omitempty"`
	// Duration arrives in milliseconds.
	Duration *int   `json:"duration,omitempty"`
	URL      string `json:"url,omitempty"`
}

// UnmarshalJSON decodes the model's action object into the closed sum
// type. Unknown action types fail with ErrActionExecution.
func (a *Action) UnmarshalJSON(data []byte) error {
	var w wireAction
	if err := json.Unmarshal(data, &w); err != nil {
		return types.NewError(types.ErrActionExecution, "malformed action").WithCause(err)
	}

	intOr := func(p *int, def int) int {
		if p != nil {
			return *p
		}
		return def
	}

	switch ActionType(w.Type) {
	case ActionClick:
		*a = Click(intOr(w.X, 0), intOr(w.Y, 0))
	case ActionDoubleClick:
		*a = DoubleClick(intOr(w.X, 0), intOr(w.Y, 0))
	case ActionTypeText:
		*a = Type(w.Text)
	case ActionKeypress, "press":
		keys := w.Keys
		if len(keys) == 0 && w.Key != "" {
			keys = []string{w.Key}
		}
		*a = Keypress(keys...)
	case ActionScroll:
		dx := intOr(w.ScrollX, intOr(w.DeltaX, 0))
		dy := intOr(w.ScrollY, intOr(w.DeltaY, 0))
		*a = Scroll(dx, dy)
	case ActionWait:
		ms := intOr(w.Duration, 1000)
		*a = Wait(time.Duration(ms) * time.Millisecond)
	case ActionNavigate, "goto":
		*a = Navigate(w.URL)
	case ActionScreenshot:
		*a = TakeScreenshot()
	default:
		return types.Errorf(types.ErrActionExecution, "unknown action type %q", w.Type)
	}
	return nil
}

// Validate checks the action holds a known type and a usable payload.
func (a Action) Validate() error {
	switch a.Type {
	case ActionClick, ActionDoubleClick:
		if a.X < 0 || a.Y < 0 {
			return types.Errorf(types.ErrActionExecution, "negative %s coordinates (%d, %d)", a.Type, a.X, a.Y)
		}
	case ActionTypeText:
		// Empty text is legal: the model sometimes clears a field this way.
	case ActionKeypress:
		if len(a.Keys) == 0 {
			return types.NewError(types.ErrActionExecution, "keypress without keys")
		}
	case ActionScroll, ActionScreenshot:
	case ActionWait:
		if a.Duration < 0 {
			return types.NewError(types.ErrActionExecution, "negative wait duration")
		}
	case ActionNavigate:
		if a.URL == "" {
			return types.NewError(types.ErrActionExecution, "navigate without url")
		}
	default:
		return types.Errorf(types.ErrActionExecution, "unknown action type %q", a.Type)
	}
	return nil
}

// String renders the action for logs and summaries.
func (a Action) String() string {
	switch a.Type {
	case ActionClick, ActionDoubleClick:
		return fmt.Sprintf("%s(%d, %d)", a.Type, a.X, a.Y)
	case ActionTypeText:
		return fmt.Sprintf("type(%q)", a.Text)
	case ActionKeypress:
		return fmt.Sprintf("keypress(%s)", strings.Join(a.Keys, "+"))
	case ActionScroll:
		return fmt.Sprintf("scroll(%d, %d)", a.DeltaX, a.DeltaY)
	case ActionWait:
		return fmt.Sprintf("wait(%s)", a.Duration)
	case ActionNavigate:
		return fmt.Sprintf("navigate(%s)", a.URL)
	case ActionScreenshot:
		return "screenshot()"
	default:
		return string(a.Type)
	}
}

package browser

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/innovate-ai/voxagent/openai"
	"github.com/innovate-ai/voxagent/types"
)

// Plan is one turn of the vision model: what it was thinking, the
// action it wants executed (nil when it is done), and its final answer
// when it produced one. Ref ties the next turn to this one.
type Plan struct {
	Ref       string
	Reasoning []string
	Call      *PlannedCall
	FinalText string
}

// PlannedCall is a model-requested action already decoded into the
// closed Action type, plus the identifiers needed to report the result
// back.
type PlannedCall struct {
	CallID       string
	Action       Action
	SafetyChecks []openai.SafetyCheck
}

// Planner produces browser actions from screenshots. PlanStart opens a
// session with the task instructions; PlanNext reports an executed
// call's screenshot and asks for the next step.
type Planner interface {
	PlanStart(ctx context.Context, instructions string, screenshot []byte) (*Plan, error)
	PlanNext(ctx context.Context, prev *Plan, screenshot []byte) (*Plan, error)
}

// ResponsesPlanner drives the computer-use model through the Responses
// API. Screenshots travel as data URLs; turns chain through
// previous_response_id so the model keeps its own context.
type ResponsesPlanner struct {
	client *openai.Client
	model  string
	width  int
	height int
}

// NewResponsesPlanner builds a planner for the given model and viewport.
func NewResponsesPlanner(client *openai.Client, model string, width, height int) *ResponsesPlanner {
	return &ResponsesPlanner{client: client, model: model, width: width, height: height}
}

func (p *ResponsesPlanner) tool() openai.ComputerUseTool {
	return openai.ComputerUseTool{
		Type:          "computer_use_preview",
		DisplayWidth:  p.width,
		DisplayHeight: p.height,
		Environment:   "browser",
	}
}

func dataURL(screenshot []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(screenshot)
}

// PlanStart opens the session: instructions plus the current screenshot.
func (p *ResponsesPlanner) PlanStart(ctx context.Context, instructions string, screenshot []byte) (*Plan, error) {
	req := &openai.ResponsesRequest{
		Model: p.model,
		Tools: []openai.ComputerUseTool{p.tool()},
		Input: []openai.InputItem{{
			Role: "user",
			Content: []openai.InputContent{
				{Type: "input_text", Text: instructions},
				{Type: "input_image", ImageURL: dataURL(screenshot)},
			},
		}},
		Reasoning:  &openai.ResponseReasoning{GenerateSummary: "concise"},
		Truncation: "auto",
	}
	resp, err := p.client.CreateResponse(ctx, req)
	if err != nil {
		return nil, err
	}
	return p.toPlan(resp)
}

// PlanNext returns the executed call's screenshot to the model.
// Pending safety checks from the previous turn are acknowledged here;
// they are logged upstream, never allowed to halt the loop.
func (p *ResponsesPlanner) PlanNext(ctx context.Context, prev *Plan, screenshot []byte) (*Plan, error) {
	if prev == nil || prev.Call == nil {
		return nil, types.NewError(types.ErrModelCall, "no previous call to continue from")
	}

	req := &openai.ResponsesRequest{
		Model: p.model,
		Tools: []openai.ComputerUseTool{p.tool()},
		Input: []openai.InputItem{{
			Type:                     "computer_call_output",
			CallID:                   prev.Call.CallID,
			Output:                   &openai.InputContent{Type: "input_image", ImageURL: dataURL(screenshot)},
			AcknowledgedSafetyChecks: prev.Call.SafetyChecks,
		}},
		Reasoning:          &openai.ResponseReasoning{GenerateSummary: "concise"},
		Truncation:         "auto",
		PreviousResponseID: prev.Ref,
	}
	resp, err := p.client.CreateResponse(ctx, req)
	if err != nil {
		return nil, err
	}
	return p.toPlan(resp)
}

func (p *ResponsesPlanner) toPlan(resp *openai.ResponsesResponse) (*Plan, error) {
	plan := &Plan{
		Ref:       resp.ID,
		Reasoning: resp.ReasoningSummaries(),
		FinalText: resp.FinalText(),
	}
	if call := resp.ComputerCall(); call != nil {
		var action Action
		if err := json.Unmarshal(call.Action, &action); err != nil {
			return nil, err
		}
		plan.Call = &PlannedCall{
			CallID:       call.CallID,
			Action:       action,
			SafetyChecks: call.PendingSafetyChecks,
		}
	}
	return plan, nil
}

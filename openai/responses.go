package openai

import (
	"context"
	"encoding/json"

	"github.com/innovate-ai/voxagent/types"
)

// ComputerUseTool declares the computer-use tool on a Responses API call.
type ComputerUseTool struct {
	Type          string `json:"type"`
	DisplayWidth  int    `json:"display_width"`
	DisplayHeight int    `json:"display_height"`
	Environment   string `json:"environment"`
}

// ResponseReasoning asks the model to emit reasoning summaries.
type ResponseReasoning struct {
	GenerateSummary string `json:"generate_summary,omitempty"`
}

// InputContent is one content part of an input item: a text fragment or
// an image (data URL or remote URL).
type InputContent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// InputItem is one item of Responses API input. Role+Content carries a
// user message; Type "computer_call_output" returns an executed action's
// screenshot to the model.
type InputItem struct {
	Role    string         `json:"role,omitempty"`
	Content []InputContent `json:"content,omitempty"`

	Type                     string        `json:"type,omitempty"`
	CallID                   string        `json:"call_id,omitempty"`
	Output                   *InputContent `json:"output,omitempty"`
	AcknowledgedSafetyChecks []SafetyCheck `json:"acknowledged_safety_checks,omitempty"`
}

// ResponsesRequest is the /responses request body.
type ResponsesRequest struct {
	Model              string             `json:"model"`
	Tools              []ComputerUseTool  `json:"tools,omitempty"`
	Input              []InputItem        `json:"input"`
	Reasoning          *ResponseReasoning `json:"reasoning,omitempty"`
	Truncation         string             `json:"truncation,omitempty"`
	PreviousResponseID string             `json:"previous_response_id,omitempty"`
}

// SafetyCheck is a pending safety flag attached to a computer call.
type SafetyCheck struct {
	ID      string `json:"id"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ComputerCall is the model's requested browser action.
type ComputerCall struct {
	ID                  string          `json:"id"`
	CallID              string          `json:"call_id"`
	Action              json.RawMessage `json:"action"`
	PendingSafetyChecks []SafetyCheck   `json:"pending_safety_checks,omitempty"`
	Status              string          `json:"status,omitempty"`
}

// OutputItem is one item of Responses API output. Type discriminates:
// "reasoning" carries summaries, "computer_call" carries an action,
// "text"/"message" carry final text.
type OutputItem struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Summary []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"summary,omitempty"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	} `json:"content,omitempty"`

	// computer_call fields, inlined for decoding convenience.
	ID                  string          `json:"id,omitempty"`
	CallID              string          `json:"call_id,omitempty"`
	Action              json.RawMessage `json:"action,omitempty"`
	PendingSafetyChecks []SafetyCheck   `json:"pending_safety_checks,omitempty"`
}

// ResponsesResponse is the /responses response body.
type ResponsesResponse struct {
	ID     string       `json:"id"`
	Model  string       `json:"model"`
	Status string       `json:"status,omitempty"`
	Output []OutputItem `json:"output"`
}

// ComputerCall returns the first computer_call output item, if any.
func (r *ResponsesResponse) ComputerCall() *ComputerCall {
	if r == nil {
		return nil
	}
	for _, item := range r.Output {
		if item.Type == "computer_call" {
			return &ComputerCall{
				ID:                  item.ID,
				CallID:              item.CallID,
				Action:              item.Action,
				PendingSafetyChecks: item.PendingSafetyChecks,
			}
		}
	}
	return nil
}

// ReasoningSummaries collects all reasoning summary texts in output order.
func (r *ResponsesResponse) ReasoningSummaries() []string {
	if r == nil {
		return nil
	}
	var out []string
	for _, item := range r.Output {
		if item.Type != "reasoning" {
			continue
		}
		for _, s := range item.Summary {
			if s.Type == "summary_text" && s.Text != "" {
				out = append(out, s.Text)
			}
		}
	}
	return out
}

// FinalText returns the model's final text answer, if the response
// carries one.
func (r *ResponsesResponse) FinalText() string {
	if r == nil {
		return ""
	}
	for _, item := range r.Output {
		switch item.Type {
		case "text":
			if item.Text != "" {
				return item.Text
			}
		case "message":
			for _, c := range item.Content {
				if c.Text != "" {
					return c.Text
				}
			}
		}
	}
	return ""
}

// CreateResponse calls the Responses API.
func (c *Client) CreateResponse(ctx context.Context, req *ResponsesRequest) (*ResponsesResponse, error) {
	if c.cfg.APIKey == "" {
		return nil, types.NewError(types.ErrConfiguration, "OpenAI API key is not set")
	}

	var resp ResponsesResponse
	if err := c.postJSON(ctx, "/responses", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

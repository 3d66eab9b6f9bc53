package openai

import (
	"context"

	"github.com/innovate-ai/voxagent/types"
)

// ChatMessage is one turn in a chat completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Tool declares a function the model may call.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction describes a callable function and its JSON-schema parameters.
type ToolFunction struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
}

// ToolChoice forces or frees the model's tool selection. Use the string
// form ("auto", "none") or the function form to force one function.
type ToolChoice struct {
	Type     string          `json:"type"`
	Function *ToolChoiceFunc `json:"function,omitempty"`
}

// ToolChoiceFunc names the forced function.
type ToolChoiceFunc struct {
	Name string `json:"name"`
}

// UserLocation biases search-enabled models toward a geography.
type UserLocation struct {
	Type        string            `json:"type"`
	Approximate *ApproximatePlace `json:"approximate,omitempty"`
}

// ApproximatePlace is a coarse location hint.
type ApproximatePlace struct {
	Country string `json:"country,omitempty"`
	City    string `json:"city,omitempty"`
	Region  string `json:"region,omitempty"`
}

// WebSearchOptions configures search-preview model behavior.
type WebSearchOptions struct {
	UserLocation *UserLocation `json:"user_location,omitempty"`
}

// ChatRequest is the /chat/completions request body. Zero-valued optional
// fields are omitted from the wire form.
type ChatRequest struct {
	Model            string            `json:"model"`
	Messages         []ChatMessage     `json:"messages"`
	Temperature      *float64          `json:"temperature,omitempty"`
	MaxTokens        int               `json:"max_tokens,omitempty"`
	Tools            []Tool            `json:"tools,omitempty"`
	ToolChoice       any               `json:"tool_choice,omitempty"`
	WebSearchOptions *WebSearchOptions `json:"web_search_options,omitempty"`
}

// ToolCall is a function call requested by the model.
type ToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// ChatResponse is the /chat/completions response body.
type ChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role      string     `json:"role"`
			Content   string     `json:"content"`
			ToolCalls []ToolCall `json:"tool_calls,omitempty"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Content returns the first choice's message content, or "" when the
// model returned no usable choice.
func (r *ChatResponse) Content() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// FirstToolCall returns the first requested tool call, if any.
func (r *ChatResponse) FirstToolCall() *ToolCall {
	if r == nil || len(r.Choices) == 0 || len(r.Choices[0].Message.ToolCalls) == 0 {
		return nil
	}
	return &r.Choices[0].Message.ToolCalls[0]
}

// CreateChatCompletion calls the chat completions endpoint.
func (c *Client) CreateChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if c.cfg.APIKey == "" {
		return nil, types.NewError(types.ErrConfiguration, "OpenAI API key is not set")
	}

	var resp ChatResponse
	if err := c.postJSON(ctx, "/chat/completions", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Float64 returns a pointer to v, for optional request fields.
func Float64(v float64) *float64 { return &v }

package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/innovate-ai/voxagent/openai"
	"github.com/innovate-ai/voxagent/types"
)

// ComputerUseProcessor is the conversational side of computer use: it
// explains and walks through computer tasks. Actual autonomous
// navigation runs through the browser package, not here.
type ComputerUseProcessor struct {
	chat        ChatClient
	transcriber Transcriber
	model       string
	logger      *zap.Logger
}

// NewComputerUseProcessor builds the agent.
func NewComputerUseProcessor(chat ChatClient, transcriber Transcriber, model string, logger *zap.Logger) *ComputerUseProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if model == "" {
		model = "gpt-4o"
	}
	return &ComputerUseProcessor{
		chat:        chat,
		transcriber: transcriber,
		model:       model,
		logger:      logger.With(zap.String("component", "agent_computer_use")),
	}
}

// Type reports the agent variant.
func (p *ComputerUseProcessor) Type() types.AgentType { return types.AgentComputerUse }

// Process answers the query.
func (p *ComputerUseProcessor) Process(ctx context.Context, in Input) (*Result, error) {
	transcript, err := resolveTranscript(ctx, p.transcriber, in)
	if err != nil {
		return nil, err
	}

	resp, err := p.chat.CreateChatCompletion(ctx, &openai.ChatRequest{
		Model: p.model,
		Messages: []openai.ChatMessage{
			{Role: "system", Content: computerUseSystemPrompt},
			{Role: "user", Content: transcript},
		},
		Tools: []openai.Tool{{
			Type: "function",
			Function: openai.ToolFunction{
				Name:        "code_interpreter",
				Description: "Execute code or analyze data. Use this to help users with computational tasks.",
			},
		}},
		ToolChoice:  "auto",
		Temperature: openai.Float64(0.7),
		MaxTokens:   800,
	})
	if err != nil {
		return nil, err
	}

	content := resp.Content()
	if content == "" {
		return &Result{Transcript: transcript, Response: msgEmptyResponse}, nil
	}
	return &Result{Transcript: transcript, Response: content}, nil
}

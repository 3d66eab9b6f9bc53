package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/innovate-ai/voxagent/openai"
	"github.com/innovate-ai/voxagent/types"
)

// DefaultProcessor is the general conversational agent. When a session
// has history it is replayed into the prompt, oldest turns dropped
// first once the token budget is exceeded.
type DefaultProcessor struct {
	chat        ChatClient
	transcriber Transcriber
	history     HistorySource
	tokens      TokenCounter
	model       string
	budget      int
	logger      *zap.Logger
}

// NewDefaultProcessor builds the agent. history and tokens may be nil;
// the agent then answers each query in isolation.
func NewDefaultProcessor(chat ChatClient, transcriber Transcriber, history HistorySource, tokens TokenCounter, model string, historyBudget int, logger *zap.Logger) *DefaultProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if model == "" {
		model = "gpt-4o"
	}
	if historyBudget <= 0 {
		historyBudget = 2000
	}
	return &DefaultProcessor{
		chat:        chat,
		transcriber: transcriber,
		history:     history,
		tokens:      tokens,
		model:       model,
		budget:      historyBudget,
		logger:      logger.With(zap.String("component", "agent_default")),
	}
}

// Type reports the agent variant.
func (p *DefaultProcessor) Type() types.AgentType { return types.AgentDefault }

// Process answers the query.
func (p *DefaultProcessor) Process(ctx context.Context, in Input) (*Result, error) {
	transcript, err := resolveTranscript(ctx, p.transcriber, in)
	if err != nil {
		return nil, err
	}

	messages := []openai.ChatMessage{{Role: "system", Content: defaultSystemPrompt}}
	messages = append(messages, p.replayHistory(ctx)...)
	messages = append(messages, openai.ChatMessage{Role: "user", Content: transcript})

	resp, err := p.chat.CreateChatCompletion(ctx, &openai.ChatRequest{
		Model:       p.model,
		Messages:    messages,
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

// replayHistory returns the session's prior turns that fit the token
// budget, preserving order and preferring the most recent.
func (p *DefaultProcessor) replayHistory(ctx context.Context) []openai.ChatMessage {
	if p.history == nil {
		return nil
	}
	sessionID, ok := types.SessionID(ctx)
	if !ok {
		return nil
	}

	turns, err := p.history.History(ctx, sessionID)
	if err != nil {
		p.logger.Warn("failed to load history", zap.String("session_id", sessionID), zap.Error(err))
		return nil
	}
	if len(turns) == 0 {
		return nil
	}

	// Walk backwards accumulating cost; keep the newest turns whole.
	start := 0
	if p.tokens != nil {
		used := 0
		start = len(turns)
		for i := len(turns) - 1; i >= 0; i-- {
			used += p.tokens.Count(p.model, turns[i].Content)
			if used > p.budget {
				break
			}
			start = i
		}
	}

	kept := turns[start:]
	messages := make([]openai.ChatMessage, 0, len(kept))
	for _, turn := range kept {
		messages = append(messages, openai.ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	if start > 0 {
		p.logger.Debug("history trimmed to budget",
			zap.Int("dropped", start),
			zap.Int("kept", len(kept)))
	}
	return messages
}

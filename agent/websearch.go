package agent

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/innovate-ai/voxagent/openai"
	"github.com/innovate-ai/voxagent/types"
)

// WebSearchProcessor answers through the search-enabled model, falling
// back to the plain model with a declared web_search tool when the
// search model is unavailable. Model failures never propagate: the
// user always gets a reply, possibly an apology.
type WebSearchProcessor struct {
	chat          ChatClient
	transcriber   Transcriber
	searchModel   string
	fallbackModel string
	logger        *zap.Logger
}

// NewWebSearchProcessor builds the agent.
func NewWebSearchProcessor(chat ChatClient, transcriber Transcriber, searchModel, fallbackModel string, logger *zap.Logger) *WebSearchProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if searchModel == "" {
		searchModel = "gpt-4o-search-preview"
	}
	if fallbackModel == "" {
		fallbackModel = "gpt-4o"
	}
	return &WebSearchProcessor{
		chat:          chat,
		transcriber:   transcriber,
		searchModel:   searchModel,
		fallbackModel: fallbackModel,
		logger:        logger.With(zap.String("component", "agent_web_search")),
	}
}

// Type reports the agent variant.
func (p *WebSearchProcessor) Type() types.AgentType { return types.AgentWebSearch }

// Process answers the query with web context.
func (p *WebSearchProcessor) Process(ctx context.Context, in Input) (*Result, error) {
	transcript, err := resolveTranscript(ctx, p.transcriber, in)
	if err != nil {
		// Without a transcript there is nothing meaningful to search.
		return &Result{Transcript: msgFailedTranscript, Response: msgSearchFailed}, nil
	}

	if result, ok := p.searchPreview(ctx, transcript); ok {
		return result, nil
	}
	return p.fallback(ctx, transcript), nil
}

// searchPreview asks the search-enabled model. The model rejects an
// explicit temperature, so none is sent.
func (p *WebSearchProcessor) searchPreview(ctx context.Context, transcript string) (*Result, bool) {
	resp, err := p.chat.CreateChatCompletion(ctx, &openai.ChatRequest{
		Model: p.searchModel,
		WebSearchOptions: &openai.WebSearchOptions{
			UserLocation: &openai.UserLocation{
				Type: "approximate",
				Approximate: &openai.ApproximatePlace{
					Country: "ES",
					City:    "Madrid",
					Region:  "Madrid",
				},
			},
		},
		Messages: []openai.ChatMessage{
			{Role: "system", Content: webSearchSystemPrompt},
			{Role: "user", Content: "Busca información actualizada sobre: " + transcript},
		},
	})
	if err != nil {
		p.logger.Warn("search model failed, falling back to tools approach", zap.Error(err))
		return nil, false
	}

	content := resp.Content()
	if content == "" {
		return &Result{Transcript: transcript, Response: msgEmptySearchResult}, true
	}
	return &Result{Transcript: transcript, Response: content}, true
}

// fallback asks the plain model with a declared web_search function.
// The model cannot actually browse; a requested tool call is surfaced
// as a search-attempt note instead.
func (p *WebSearchProcessor) fallback(ctx context.Context, transcript string) *Result {
	resp, err := p.chat.CreateChatCompletion(ctx, &openai.ChatRequest{
		Model: p.fallbackModel,
		Messages: []openai.ChatMessage{
			{Role: "system", Content: webSearchFallbackSystemPrompt},
			{Role: "user", Content: transcript},
		},
		Tools: []openai.Tool{{
			Type: "function",
			Function: openai.ToolFunction{
				Name:        "web_search",
				Description: "Search the web for information on a given query. Use this when you need to find up-to-date information.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{
							"type":        "string",
							"description": "The search query",
						},
					},
					"required": []string{"query"},
				},
			},
		}},
		ToolChoice:  "auto",
		Temperature: openai.Float64(0.7),
		MaxTokens:   800,
	})
	if err != nil {
		p.logger.Error("web search fallback failed", zap.Error(err))
		return &Result{Transcript: transcript, Response: msgSearchFailed}
	}

	toolNote := ""
	if call := resp.FirstToolCall(); call != nil {
		info, err := json.Marshal(map[string]string{
			"name":      call.Function.Name,
			"arguments": call.Function.Arguments,
		})
		if err == nil {
			toolNote = "\n\nIntento de búsqueda: " + string(info)
			p.logger.Info("model requested web search", zap.String("tool_call", string(info)))
		}
	}

	content := resp.Content()
	if content == "" {
		return &Result{Transcript: transcript, Response: msgEmptySearchResult + toolNote}
	}
	return &Result{Transcript: transcript, Response: content}
}

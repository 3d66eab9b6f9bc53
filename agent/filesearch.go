package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/innovate-ai/voxagent/openai"
	"github.com/innovate-ai/voxagent/types"
)

// DocumentStore tells the file-search agent which vector store to
// search, if one exists.
type DocumentStore interface {
	StoreID(ctx context.Context) string
}

// FileSearchProcessor answers from uploaded documents. Without a
// vector store it short-circuits with a fixed message and makes no
// model call.
type FileSearchProcessor struct {
	chat        ChatClient
	transcriber Transcriber
	store       DocumentStore
	model       string
	logger      *zap.Logger
}

// NewFileSearchProcessor builds the agent.
func NewFileSearchProcessor(chat ChatClient, transcriber Transcriber, store DocumentStore, model string, logger *zap.Logger) *FileSearchProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if model == "" {
		model = "gpt-4o"
	}
	return &FileSearchProcessor{
		chat:        chat,
		transcriber: transcriber,
		store:       store,
		model:       model,
		logger:      logger.With(zap.String("component", "agent_file_search")),
	}
}

// Type reports the agent variant.
func (p *FileSearchProcessor) Type() types.AgentType { return types.AgentFileSearch }

// Process answers the query from the document store.
func (p *FileSearchProcessor) Process(ctx context.Context, in Input) (*Result, error) {
	transcript, err := resolveTranscript(ctx, p.transcriber, in)
	if err != nil {
		return nil, err
	}

	storeID := ""
	if p.store != nil {
		storeID = p.store.StoreID(ctx)
	}
	if storeID == "" {
		return &Result{Transcript: transcript, Response: msgNoFiles}, nil
	}

	resp, err := p.chat.CreateChatCompletion(ctx, &openai.ChatRequest{
		Model: p.model,
		Messages: []openai.ChatMessage{
			{Role: "system", Content: fileSearchSystemPrompt},
			{Role: "user", Content: transcript},
		},
		Tools: []openai.Tool{{
			Type: "function",
			Function: openai.ToolFunction{
				Name:        "file_search",
				Description: "Search through uploaded files to find relevant information.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"vector_store_ids": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "The IDs of the vector stores to search through.",
						},
					},
					"required": []string{"vector_store_ids"},
				},
			},
		}},
		ToolChoice: openai.ToolChoice{
			Type:     "function",
			Function: &openai.ToolChoiceFunc{Name: "file_search"},
		},
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

// Package agent hosts the assistant variants: a general conversational
// agent plus web-search, computer-use and file-search specializations.
// Each processor resolves a transcript (text passthrough or audio
// transcription) and produces a reply through the chat API.
package agent

import (
	"context"
	"io"

	"github.com/innovate-ai/voxagent/openai"
	"github.com/innovate-ai/voxagent/types"
)

// Input is one user query: either text, or audio to transcribe first.
// Text wins when both are set.
type Input struct {
	Text string

	// AudioFilename's extension identifies the container format.
	AudioFilename string
	Audio         io.Reader
}

// Result pairs what the user said with what the assistant replied.
type Result struct {
	Transcript string `json:"transcript"`
	Response   string `json:"response"`
}

// ChatClient is the slice of the OpenAI client the processors need.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req *openai.ChatRequest) (*openai.ChatResponse, error)
}

// Transcriber turns audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// Processor handles queries for one assistant variant.
type Processor interface {
	Type() types.AgentType
	Process(ctx context.Context, in Input) (*Result, error)
}

// HistoryMessage is one prior turn replayed into the model.
type HistoryMessage struct {
	Role    string
	Content string
}

// HistorySource loads a session's prior turns, oldest first.
type HistorySource interface {
	History(ctx context.Context, sessionID string) ([]HistoryMessage, error)
}

// TokenCounter estimates prompt cost for history budgeting.
type TokenCounter interface {
	Count(model, text string) int
}

// resolveTranscript returns the query text, transcribing audio when no
// text came in.
func resolveTranscript(ctx context.Context, tr Transcriber, in Input) (string, error) {
	if in.Text != "" {
		return in.Text, nil
	}
	if in.Audio == nil {
		return "", types.NewError(types.ErrInvalidRequest, "no text or audio provided")
	}
	if tr == nil {
		return "", types.NewError(types.ErrConfiguration, "no transcriber configured")
	}
	return tr.Transcribe(ctx, in.AudioFilename, in.Audio)
}

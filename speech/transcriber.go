// Package speech converts audio to text and text to audio. Synthesis
// runs through a provider cascade so a cloud outage degrades voice
// quality instead of breaking the conversation.
package speech

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/innovate-ai/voxagent/openai"
	"github.com/innovate-ai/voxagent/types"
)

// TranscriptionClient is the slice of the OpenAI client the
// transcriber needs.
type TranscriptionClient interface {
	Transcribe(ctx context.Context, model, filename string, audio io.Reader) (*openai.Transcription, error)
}

// Transcriber turns recorded audio into text.
type Transcriber struct {
	client TranscriptionClient
	model  string
	logger *zap.Logger
}

// NewTranscriber builds a transcriber for the given model.
func NewTranscriber(client TranscriptionClient, model string, logger *zap.Logger) *Transcriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transcriber{
		client: client,
		model:  model,
		logger: logger.With(zap.String("component", "transcriber")),
	}
}

// Transcribe sends the audio to the model and returns the transcript.
// filename's extension identifies the container format.
func (t *Transcriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	out, err := t.client.Transcribe(ctx, t.model, filename, audio)
	if err != nil {
		t.logger.Error("transcription failed", zap.Error(err), zap.String("filename", filename))
		if types.GetErrorCode(err) == types.ErrConfiguration {
			return "", err
		}
		return "", types.NewError(types.ErrTranscription, "failed to transcribe audio").WithCause(err)
	}

	t.logger.Info("audio transcribed",
		zap.String("filename", filename),
		zap.Int("transcript_len", len(out.Text)))
	return out.Text, nil
}

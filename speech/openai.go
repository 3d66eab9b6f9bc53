package speech

import (
	"context"

	"go.uber.org/zap"

	"github.com/innovate-ai/voxagent/types"
)

// SpeechClient is the slice of the OpenAI client the provider needs.
type SpeechClient interface {
	Speech(ctx context.Context, model, voice, text string) ([]byte, error)
}

// OpenAIProvider synthesizes speech through the OpenAI audio endpoint.
// The voice is fixed per deployment; OpenAI voices are multilingual so
// the language hint is not forwarded.
type OpenAIProvider struct {
	client SpeechClient
	model  string
	voice  string
	logger *zap.Logger
}

// NewOpenAIProvider builds the provider for the given model and voice.
func NewOpenAIProvider(client SpeechClient, model, voice string, logger *zap.Logger) *OpenAIProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIProvider{
		client: client,
		model:  model,
		voice:  voice,
		logger: logger.With(zap.String("component", "openai_tts")),
	}
}

// Name identifies the provider in logs and metrics.
func (p *OpenAIProvider) Name() string { return "openai" }

// Synthesize converts text to MP3 bytes.
func (p *OpenAIProvider) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	audio, err := p.client.Speech(ctx, p.model, p.voice, text)
	if err != nil {
		if types.GetErrorCode(err) == types.ErrConfiguration {
			return nil, err
		}
		return nil, types.NewError(types.ErrSynthesis, "openai speech synthesis failed").
			WithCause(err).WithProvider("openai")
	}

	p.logger.Info("speech synthesized",
		zap.String("voice", p.voice),
		zap.Int("bytes", len(audio)))
	return audio, nil
}

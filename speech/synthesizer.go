package speech

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/innovate-ai/voxagent/types"
)

// apologyText replaces empty input so the user always hears something.
const apologyText = "Lo siento, hubo un problema al generar una respuesta."

// FallbackFilename is the pre-rendered clip served when every provider
// fails.
const FallbackFilename = "fallback.mp3"

// Provider converts text to MP3 bytes. Implementations report
// ErrConfiguration when they are not set up and ErrSynthesis when a
// live attempt fails.
type Provider interface {
	Name() string
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// Synthesizer runs providers in order and keeps the first audio it
// gets. When every provider fails it falls back to a static clip, so a
// successful return always names a playable file.
type Synthesizer struct {
	providers []Provider
	audioDir  string
	logger    *zap.Logger
}

// NewSynthesizer builds the cascade. Provider order is significant:
// earlier providers are preferred.
func NewSynthesizer(providers []Provider, audioDir string, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{
		providers: providers,
		audioDir:  audioDir,
		logger:    logger.With(zap.String("component", "synthesizer")),
	}
}

// EnsureFallback writes the static fallback clip if it is not already
// present. Call once at startup.
func (s *Synthesizer) EnsureFallback() error {
	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return types.NewError(types.ErrConfiguration, "failed to create audio directory").WithCause(err)
	}
	path := filepath.Join(s.audioDir, FallbackFilename)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, silentMP3(), 0o644); err != nil {
		return types.NewError(types.ErrConfiguration, "failed to write fallback clip").WithCause(err)
	}
	return nil
}

// Synthesize converts text to speech and returns the generated file's
// name inside the audio directory. Empty text is replaced with a fixed
// apology instead of failing.
func (s *Synthesizer) Synthesize(ctx context.Context, text, language string) (string, error) {
	if strings.TrimSpace(text) == "" {
		s.logger.Warn("empty text for synthesis, substituting apology")
		text = apologyText
	}

	for _, provider := range s.providers {
		audio, err := provider.Synthesize(ctx, text, language)
		if err != nil {
			level := s.logger.Warn
			if types.GetErrorCode(err) == types.ErrConfiguration {
				level = s.logger.Debug
			}
			level("synthesis provider failed",
				zap.String("provider", provider.Name()),
				zap.Error(err))
			continue
		}

		filename, err := s.writeClip(audio)
		if err != nil {
			s.logger.Error("failed to persist audio clip", zap.Error(err))
			continue
		}
		s.logger.Info("synthesis succeeded",
			zap.String("provider", provider.Name()),
			zap.String("filename", filename))
		return filename, nil
	}

	// Every provider failed; serve the static clip.
	path := filepath.Join(s.audioDir, FallbackFilename)
	if _, err := os.Stat(path); err != nil {
		return "", types.NewError(types.ErrSynthesis, "all synthesis providers failed and no fallback clip exists").WithCause(err)
	}
	s.logger.Error("all synthesis providers failed, serving fallback clip")
	return FallbackFilename, nil
}

func (s *Synthesizer) writeClip(audio []byte) (string, error) {
	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return "", err
	}
	filename := uuid.NewString() + ".mp3"
	if err := os.WriteFile(filepath.Join(s.audioDir, filename), audio, 0o644); err != nil {
		return "", err
	}
	return filename, nil
}

// silentMP3 renders a short run of silent MPEG-1 Layer III frames:
// enough for players to recognize and play the file.
func silentMP3() []byte {
	// 128 kbps, 44.1 kHz frame: 417 bytes plus header.
	frame := make([]byte, 417)
	frame[0], frame[1], frame[2], frame[3] = 0xFF, 0xFB, 0x90, 0x64
	out := make([]byte, 0, len(frame)*10)
	for i := 0; i < 10; i++ {
		out = append(out, frame...)
	}
	return out
}

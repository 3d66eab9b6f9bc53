package agent

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/innovate-ai/voxagent/openai"
)

// LanguageDetector identifies the language of a text sample so
// synthesis can pick a matching voice. It always returns a usable
// code: failures and implausible answers default to English.
type LanguageDetector struct {
	chat   ChatClient
	model  string
	logger *zap.Logger
}

// NewLanguageDetector builds the detector.
func NewLanguageDetector(chat ChatClient, model string, logger *zap.Logger) *LanguageDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if model == "" {
		model = "gpt-4o"
	}
	return &LanguageDetector{
		chat:   chat,
		model:  model,
		logger: logger.With(zap.String("component", "language_detector")),
	}
}

// Detect returns the ISO 639-1 code for the sample's language. Only
// the first 100 characters are sent.
func (d *LanguageDetector) Detect(ctx context.Context, sample string) string {
	trimmed := sample
	if len(trimmed) > 100 {
		// Cut on a rune boundary: a byte slice could split an accented
		// character and ship invalid UTF-8.
		if runes := []rune(trimmed); len(runes) > 100 {
			trimmed = string(runes[:100])
		}
	}

	resp, err := d.chat.CreateChatCompletion(ctx, &openai.ChatRequest{
		Model: d.model,
		Messages: []openai.ChatMessage{
			{Role: "system", Content: languageDetectionPrompt},
			{Role: "user", Content: trimmed},
		},
		MaxTokens:   10,
		Temperature: openai.Float64(0.3),
	})
	if err != nil {
		d.logger.Warn("language detection failed, defaulting to en", zap.Error(err))
		return "en"
	}

	code := strings.ToLower(strings.TrimSpace(resp.Content()))
	if code == "" || len(code) > 5 {
		return "en"
	}
	return code
}

package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/innovate-ai/voxagent/types"
)

const googleTTSEndpoint = "https://texttospeech.googleapis.com/v1/text:synthesize"

// regionByLanguage maps two-letter codes to the language-region form
// the Google voices are published under.
var regionByLanguage = map[string]string{
	"en": "en-US",
	"es": "es-ES",
	"fr": "fr-FR",
	"de": "de-DE",
	"it": "it-IT",
	"ja": "ja-JP",
	"ko": "ko-KR",
	"pt": "pt-BR",
	"ru": "ru-RU",
	"zh": "cmn-CN",
}

// GoogleConfig configures the Google Cloud TTS provider.
type GoogleConfig struct {
	APIKey string
	// Endpoint overrides the synthesize URL, for tests.
	Endpoint     string
	SpeakingRate float64
	Timeout      time.Duration
}

// GoogleProvider synthesizes speech through the Google Cloud
// Text-to-Speech REST API using Neural2 voices.
type GoogleProvider struct {
	cfg    GoogleConfig
	client *http.Client
	logger *zap.Logger
}

// NewGoogleProvider builds the provider. It reports itself unavailable
// per call when no API key is configured.
func NewGoogleProvider(cfg GoogleConfig, logger *zap.Logger) *GoogleProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = googleTTSEndpoint
	}
	if cfg.SpeakingRate <= 0 {
		cfg.SpeakingRate = 1.0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &GoogleProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With(zap.String("component", "google_tts")),
	}
}

// Name identifies the provider in logs and metrics.
func (p *GoogleProvider) Name() string { return "google" }

type googleVoice struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
}

type googleSynthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice       googleVoice `json:"voice"`
	AudioConfig struct {
		AudioEncoding string  `json:"audioEncoding"`
		SpeakingRate  float64 `json:"speakingRate"`
	} `json:"audioConfig"`
}

type googleSynthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// expandLanguage turns a two-letter code into Google's language-region
// form. Codes already carrying a region pass through unchanged.
func expandLanguage(language string) string {
	if len(language) != 2 {
		return language
	}
	if region, ok := regionByLanguage[strings.ToLower(language)]; ok {
		return region
	}
	return language
}

// voiceFor picks the Neural2 female voice matching the language region.
func voiceFor(languageCode string) string {
	if strings.HasPrefix(languageCode, "cmn") || strings.HasPrefix(languageCode, "zh") {
		return "cmn-CN-Neural2-F"
	}
	prefix := strings.SplitN(languageCode, "-", 2)[0]
	if region, ok := regionByLanguage[prefix]; ok {
		return region + "-Neural2-F"
	}
	return "en-US-Neural2-F"
}

// Synthesize converts text to MP3 bytes.
func (p *GoogleProvider) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if p.cfg.APIKey == "" {
		return nil, types.NewError(types.ErrConfiguration, "Google API key is not set").WithProvider("google")
	}

	var req googleSynthesizeRequest
	req.Input.Text = text
	req.Voice.LanguageCode = expandLanguage(language)
	req.Voice.Name = voiceFor(req.Voice.LanguageCode)
	req.AudioConfig.AudioEncoding = "MP3"
	req.AudioConfig.SpeakingRate = p.cfg.SpeakingRate

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, types.NewError(types.ErrSynthesis, "failed to encode request").WithCause(err).WithProvider("google")
	}

	url := p.cfg.Endpoint + "?key=" + p.cfg.APIKey
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, types.NewError(types.ErrSynthesis, "failed to create request").WithCause(err).WithProvider("google")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, types.NewError(types.ErrSynthesis, "request failed").
			WithCause(err).WithProvider("google").WithRetryable(true)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		p.logger.Error("google tts error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return nil, types.Errorf(types.ErrSynthesis, "google tts returned status %d", resp.StatusCode).
			WithProvider("google").WithHTTPStatus(resp.StatusCode).
			WithRetryable(resp.StatusCode >= 500)
	}

	var out googleSynthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, types.NewError(types.ErrSynthesis, "failed to decode response").WithCause(err).WithProvider("google")
	}
	if out.AudioContent == "" {
		return nil, types.NewError(types.ErrSynthesis, "response carried no audio content").WithProvider("google")
	}

	audio, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return nil, types.NewError(types.ErrSynthesis, "failed to decode audio content").WithCause(err).WithProvider("google")
	}

	p.logger.Info("speech synthesized",
		zap.String("language", req.Voice.LanguageCode),
		zap.String("voice", req.Voice.Name),
		zap.Int("bytes", len(audio)))
	return audio, nil
}

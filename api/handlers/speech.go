package handlers

import (
	"context"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/innovate-ai/voxagent/agent"
	"github.com/innovate-ai/voxagent/types"
)

// QueryProcessor routes a query to the assistant variant that handles it.
type QueryProcessor interface {
	Process(ctx context.Context, selector string, in agent.Input) (*agent.Result, types.AgentType, error)
}

// LanguageDetector identifies the language of the reply for synthesis.
type LanguageDetector interface {
	Detect(ctx context.Context, sample string) string
}

// SpeechSynthesizer renders the reply as an audio clip and returns its
// filename inside the audio directory.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, language string) (string, error)
}

// ConversationRecorder persists one exchange of a session's dialogue.
// A nil recorder disables logging.
type ConversationRecorder interface {
	Record(ctx context.Context, sessionID, agentType, userText, assistantText string) error
}

// SpeechHandler serves the main voice/text endpoint: resolve a query
// through the selected agent, detect the reply's language, and
// synthesize it to audio.
type SpeechHandler struct {
	processor   QueryProcessor
	detector    LanguageDetector
	synthesizer SpeechSynthesizer
	recorder    ConversationRecorder
	audioDir    string
	maxBytes    int64
	logger      *zap.Logger
}

// SpeechHandlerConfig wires the speech handler.
type SpeechHandlerConfig struct {
	// AudioUploadDir receives client audio recordings.
	AudioUploadDir string
	// MaxBytes caps the request body; 0 means 32 MB.
	MaxBytes int64
}

// NewSpeechHandler builds the handler. recorder may be nil.
func NewSpeechHandler(
	processor QueryProcessor,
	detector LanguageDetector,
	synthesizer SpeechSynthesizer,
	recorder ConversationRecorder,
	cfg SpeechHandlerConfig,
	logger *zap.Logger,
) *SpeechHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 32 << 20
	}
	return &SpeechHandler{
		processor:   processor,
		detector:    detector,
		synthesizer: synthesizer,
		recorder:    recorder,
		audioDir:    cfg.AudioUploadDir,
		maxBytes:    cfg.MaxBytes,
		logger:      logger.With(zap.String("component", "speech_handler")),
	}
}

type speechRequest struct {
	Text      string `json:"text"`
	AgentType string `json:"agent_type"`
}

type speechResponse struct {
	Transcript string `json:"transcript"`
	Response   string `json:"response"`
	AudioURL   string `json:"audio_url"`
}

// HandleSpeech serves POST /api/speech. The request is either JSON
// {text, agent_type} or multipart form data with an "audio" file and
// an "agent_type" field.
func (h *SpeechHandler) HandleSpeech(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	in, agentType, ok := h.parseInput(w, r)
	if !ok {
		return
	}
	if closer, ok := in.Audio.(io.Closer); ok {
		defer closer.Close()
	}

	result, resolvedType, err := h.processor.Process(r.Context(), agentType, in)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	language := h.detector.Detect(r.Context(), result.Response)

	filename, err := h.synthesizer.Synthesize(r.Context(), result.Response, language)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	h.recordExchange(r.Context(), resolvedType, result)

	WriteJSON(w, http.StatusOK, speechResponse{
		Transcript: result.Transcript,
		Response:   result.Response,
		AudioURL:   "/audio/" + filename,
	})
}

// parseInput extracts the query from either request shape. A false
// return means the error response was already written.
func (h *SpeechHandler) parseInput(w http.ResponseWriter, r *http.Request) (agent.Input, string, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("audio")
		if err != nil {
			WriteErrorMessage(w, http.StatusBadRequest, "No input provided (neither text nor audio)")
			return agent.Input{}, "", false
		}
		defer file.Close()

		if header.Filename == "" {
			WriteErrorMessage(w, http.StatusBadRequest, "Empty file provided")
			return agent.Input{}, "", false
		}

		saved, err := h.saveAudio(header.Filename, file)
		if err != nil {
			WriteError(w, err, h.logger)
			return agent.Input{}, "", false
		}

		recording, err := os.Open(saved)
		if err != nil {
			WriteError(w, types.NewError(types.ErrInvalidRequest, "failed to read uploaded audio").WithCause(err), h.logger)
			return agent.Input{}, "", false
		}
		// The processor consumes the reader before the handler returns.
		in := agent.Input{AudioFilename: filepath.Base(saved), Audio: recording}
		return in, r.FormValue("agent_type"), true
	}

	var req speechRequest
	if !DecodeJSONBody(w, r, &req) {
		return agent.Input{}, "", false
	}
	if strings.TrimSpace(req.Text) == "" {
		WriteErrorMessage(w, http.StatusBadRequest, "No input provided (neither text nor audio)")
		return agent.Input{}, "", false
	}
	return agent.Input{Text: req.Text}, req.AgentType, true
}

// saveAudio persists the client recording under a collision-free name,
// keeping the original extension so the transcription API can identify
// the container.
func (h *SpeechHandler) saveAudio(originalName string, file io.Reader) (string, error) {
	if err := os.MkdirAll(h.audioDir, 0o755); err != nil {
		return "", types.NewError(types.ErrConfiguration, "failed to create upload directory").WithCause(err)
	}

	ext := filepath.Ext(originalName)
	if ext == "" {
		ext = ".webm"
	}
	path := filepath.Join(h.audioDir, uuid.NewString()+ext)

	out, err := os.Create(path)
	if err != nil {
		return "", types.NewError(types.ErrConfiguration, "failed to save uploaded audio").WithCause(err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(path)
		return "", types.NewError(types.ErrInvalidRequest, "failed to save uploaded audio").WithCause(err)
	}
	return path, nil
}

// recordExchange logs the turn when a session is attached. Failures
// never fail the request.
func (h *SpeechHandler) recordExchange(ctx context.Context, agentType types.AgentType, result *agent.Result) {
	if h.recorder == nil {
		return
	}
	sessionID, ok := types.SessionID(ctx)
	if !ok {
		return
	}
	if err := h.recorder.Record(ctx, sessionID, agentType.String(), result.Transcript, result.Response); err != nil {
		h.logger.Warn("failed to record conversation",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
}

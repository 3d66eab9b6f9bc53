package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// LanguageHandler exposes language detection for the frontend.
type LanguageHandler struct {
	detector LanguageDetector
	logger   *zap.Logger
}

// NewLanguageHandler builds the handler.
func NewLanguageHandler(detector LanguageDetector, logger *zap.Logger) *LanguageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LanguageHandler{
		detector: detector,
		logger:   logger.With(zap.String("component", "language_handler")),
	}
}

type detectLanguageRequest struct {
	Text string `json:"text"`
}

type detectLanguageResponse struct {
	Language string `json:"language"`
}

// HandleDetect serves POST /api/detect-language.
func (h *LanguageHandler) HandleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectLanguageRequest
	if !DecodeJSONBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		WriteErrorMessage(w, http.StatusBadRequest, "No text provided")
		return
	}

	language := h.detector.Detect(r.Context(), req.Text)
	WriteJSON(w, http.StatusOK, detectLanguageResponse{Language: language})
}

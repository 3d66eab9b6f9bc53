package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/innovate-ai/voxagent/types"
)

// Transcription is the /audio/transcriptions response body.
type Transcription struct {
	Text string `json:"text"`
}

// Transcribe sends audio through the transcription endpoint. filename's
// extension tells the API the container format (webm, mp3, wav, ...).
func (c *Client) Transcribe(ctx context.Context, model, filename string, audio io.Reader) (*Transcription, error) {
	if c.cfg.APIKey == "" {
		return nil, types.NewError(types.ErrConfiguration, "OpenAI API key is not set")
	}

	var out Transcription
	err := c.postMultipart(ctx, "/audio/transcriptions", func(w *multipart.Writer) error {
		if err := w.WriteField("model", model); err != nil {
			return err
		}
		return writeFormFile(w, "file", filename, audio)
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// speechRequest is the /audio/speech request body.
type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format,omitempty"`
}

// Speech synthesizes text and returns the raw audio bytes (mp3).
func (c *Client) Speech(ctx context.Context, model, voice, text string) ([]byte, error) {
	if c.cfg.APIKey == "" {
		return nil, types.NewError(types.ErrConfiguration, "OpenAI API key is not set")
	}

	payload, err := json.Marshal(speechRequest{
		Model:          model,
		Input:          text,
		Voice:          voice,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return nil, types.NewError(types.ErrSynthesis, "failed to encode request").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/audio/speech"), bytes.NewReader(payload))
	if err != nil {
		return nil, types.NewError(types.ErrSynthesis, "failed to create request").WithCause(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, types.NewError(types.ErrSynthesis, "request failed").
			WithCause(err).WithProvider("openai")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, c.asError(resp)
	}

	// The speech endpoint returns audio, not JSON.
	contentType := resp.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		return nil, types.NewError(types.ErrSynthesis, "unexpected JSON response from speech endpoint").
			WithProvider("openai")
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewError(types.ErrSynthesis, "failed to read audio body").
			WithCause(err).WithProvider("openai")
	}
	return audio, nil
}

package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovate-ai/voxagent/types"
)

func TestGoogleProviderSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		var req googleSynthesizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hola mundo", req.Input.Text)
		assert.Equal(t, "es-ES", req.Voice.LanguageCode)
		assert.Equal(t, "es-ES-Neural2-F", req.Voice.Name)
		assert.Equal(t, "MP3", req.AudioConfig.AudioEncoding)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(googleSynthesizeResponse{
			AudioContent: base64.StdEncoding.EncodeToString([]byte("mp3-bytes")),
		})
	}))
	defer srv.Close()

	p := NewGoogleProvider(GoogleConfig{APIKey: "secret", Endpoint: srv.URL}, nil)
	audio, err := p.Synthesize(context.Background(), "hola mundo", "es")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), audio)
}

func TestGoogleProviderMissingKey(t *testing.T) {
	p := NewGoogleProvider(GoogleConfig{}, nil)
	_, err := p.Synthesize(context.Background(), "hola", "es")
	require.Error(t, err)
	assert.Equal(t, types.ErrConfiguration, types.GetErrorCode(err))
}

func TestGoogleProviderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewGoogleProvider(GoogleConfig{APIKey: "secret", Endpoint: srv.URL}, nil)
	_, err := p.Synthesize(context.Background(), "hola", "es")
	require.Error(t, err)
	assert.Equal(t, types.ErrSynthesis, types.GetErrorCode(err))
	assert.True(t, types.IsRetryable(err))
}

func TestExpandLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en", "en-US"},
		{"es", "es-ES"},
		{"pt", "pt-BR"},
		{"zh", "cmn-CN"},
		{"en-GB", "en-GB"},
		{"xx", "xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, expandLanguage(tt.in), "expandLanguage(%q)", tt.in)
	}
}

func TestVoiceFor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"es-ES", "es-ES-Neural2-F"},
		{"en-GB", "en-US-Neural2-F"},
		{"cmn-CN", "cmn-CN-Neural2-F"},
		{"ja-JP", "ja-JP-Neural2-F"},
		{"xx", "en-US-Neural2-F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, voiceFor(tt.in), "voiceFor(%q)", tt.in)
	}
}

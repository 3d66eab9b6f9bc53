package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovate-ai/voxagent/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil)
	return client, srv
}

func TestCreateChatCompletion(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"choices": [{"index":0,"message":{"role":"assistant","content":"hola"},"finish_reason":"stop"}]
		}`))
	})

	resp, err := client.CreateChatCompletion(context.Background(), &ChatRequest{
		Model: "gpt-4o",
		Messages: []ChatMessage{
			{Role: "system", Content: "Eres un asistente."},
			{Role: "user", Content: "hola"},
		},
		Temperature: Float64(0.7),
		MaxTokens:   800,
	})
	require.NoError(t, err)
	assert.Equal(t, "hola", resp.Content())
	assert.Nil(t, resp.FirstToolCall())
}

func TestCreateChatCompletionMissingKey(t *testing.T) {
	client := NewClient(Config{}, nil)
	_, err := client.CreateChatCompletion(context.Background(), &ChatRequest{Model: "gpt-4o"})
	require.Error(t, err)
	assert.Equal(t, types.ErrConfiguration, types.GetErrorCode(err))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCode  types.ErrorCode
		retryable bool
	}{
		{"unauthorized", http.StatusUnauthorized, types.ErrAuthentication, false},
		{"rate limited", http.StatusTooManyRequests, types.ErrRateLimit, true},
		{"not found", http.StatusNotFound, types.ErrNotFound, false},
		{"server error", http.StatusInternalServerError, types.ErrModelCall, true},
		{"bad request", http.StatusBadRequest, types.ErrModelCall, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":{"message":"nope","type":"invalid_request_error"}}`))
			})

			_, err := client.CreateChatCompletion(context.Background(), &ChatRequest{Model: "gpt-4o"})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, types.GetErrorCode(err))
			assert.Equal(t, tt.retryable, types.IsRetryable(err))
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestTranscribe(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "clip.webm", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"hola mundo"}`))
	})

	out, err := client.Transcribe(context.Background(), "whisper-1", "clip.webm", strings.NewReader("fake-audio"))
	require.NoError(t, err)
	assert.Equal(t, "hola mundo", out.Text)
}

func TestSpeechReturnsAudioBytes(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3-fake-mp3"))
	})

	audio, err := client.Speech(context.Background(), "tts-1", "alloy", "hola")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3-fake-mp3"), audio)
}

func TestVectorStoreFileBatchFlow(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/files" && r.Method == http.MethodPost:
			w.Write([]byte(`{"id":"file-1","filename":"doc.pdf","purpose":"assistants","bytes":42}`))
		case r.URL.Path == "/vector_stores" && r.Method == http.MethodPost:
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "INNOVATE AI Document Store", body["name"])
			require.NotNil(t, body["expires_after"])
			w.Write([]byte(`{"id":"vs-1","name":"INNOVATE AI Document Store"}`))
		case r.URL.Path == "/vector_stores/vs-1/file_batches" && r.Method == http.MethodPost:
			w.Write([]byte(`{"id":"batch-1","vector_store_id":"vs-1","status":"in_progress","file_ids":["file-1"]}`))
		case r.URL.Path == "/vector_stores/vs-1/file_batches/batch-1" && r.Method == http.MethodGet:
			w.Write([]byte(`{"id":"batch-1","vector_store_id":"vs-1","status":"completed","file_ids":["file-1"]}`))
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})

	ctx := context.Background()

	file, err := client.UploadFile(ctx, "doc.pdf", "assistants", strings.NewReader("content"))
	require.NoError(t, err)
	assert.Equal(t, "file-1", file.ID)

	store, err := client.CreateVectorStore(ctx, "INNOVATE AI Document Store", 30)
	require.NoError(t, err)
	assert.Equal(t, "vs-1", store.ID)

	batch, err := client.CreateFileBatch(ctx, store.ID, []string{file.ID})
	require.NoError(t, err)
	assert.Equal(t, "in_progress", batch.Status)

	batch, err = client.RetrieveFileBatch(ctx, store.ID, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", batch.Status)
	assert.Equal(t, []string{"file-1"}, batch.FileIDs)
}

func TestResponsesComputerCall(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/responses", r.URL.Path)

		var req ResponsesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "computer-use-preview", req.Model)
		require.Len(t, req.Tools, 1)
		assert.Equal(t, "browser", req.Tools[0].Environment)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "resp-1",
			"output": [
				{"type":"reasoning","summary":[{"type":"summary_text","text":"Busco el enlace"}]},
				{"type":"computer_call","call_id":"call-1","action":{"type":"click","x":10,"y":20},
				 "pending_safety_checks":[{"id":"sc-1","code":"malicious_instructions","message":"check"}]}
			]
		}`))
	})

	resp, err := client.CreateResponse(context.Background(), &ResponsesRequest{
		Model: "computer-use-preview",
		Tools: []ComputerUseTool{{
			Type:          "computer_use_preview",
			DisplayWidth:  1024,
			DisplayHeight: 768,
			Environment:   "browser",
		}},
		Input: []InputItem{{
			Role:    "user",
			Content: []InputContent{{Type: "text", Text: "busca algo"}},
		}},
	})
	require.NoError(t, err)

	call := resp.ComputerCall()
	require.NotNil(t, call)
	assert.Equal(t, "call-1", call.CallID)
	assert.Len(t, call.PendingSafetyChecks, 1)
	assert.Equal(t, []string{"Busco el enlace"}, resp.ReasoningSummaries())
	assert.Empty(t, resp.FinalText())
}

package speech

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovate-ai/voxagent/types"
)

type fakeProvider struct {
	name     string
	audio    []byte
	err      error
	calls    int
	lastText string
	lastLang string
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	p.calls++
	p.lastText = text
	p.lastLang = language
	return p.audio, p.err
}

func TestSynthesizerFirstProviderWins(t *testing.T) {
	first := &fakeProvider{name: "google", audio: []byte("google-mp3")}
	second := &fakeProvider{name: "openai", audio: []byte("openai-mp3")}

	dir := t.TempDir()
	s := NewSynthesizer([]Provider{first, second}, dir, nil)

	filename, err := s.Synthesize(context.Background(), "hola", "es")
	require.NoError(t, err)
	require.NotEmpty(t, filename)

	data, err := os.ReadFile(filepath.Join(dir, filename))
	require.NoError(t, err)
	assert.Equal(t, []byte("google-mp3"), data)
	assert.Zero(t, second.calls, "later providers must not run after a success")
}

func TestSynthesizerCascadesOnFailure(t *testing.T) {
	first := &fakeProvider{name: "google", err: types.NewError(types.ErrSynthesis, "quota")}
	second := &fakeProvider{name: "openai", audio: []byte("openai-mp3")}

	dir := t.TempDir()
	s := NewSynthesizer([]Provider{first, second}, dir, nil)

	filename, err := s.Synthesize(context.Background(), "hola", "es")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, filename))
	require.NoError(t, err)
	assert.Equal(t, []byte("openai-mp3"), data)
	assert.Equal(t, 1, first.calls)
}

func TestSynthesizerEmptyTextGetsApology(t *testing.T) {
	p := &fakeProvider{name: "google", audio: []byte("mp3")}
	s := NewSynthesizer([]Provider{p}, t.TempDir(), nil)

	_, err := s.Synthesize(context.Background(), "   ", "es")
	require.NoError(t, err)
	assert.Equal(t, "Lo siento, hubo un problema al generar una respuesta.", p.lastText)
}

func TestSynthesizerFallbackClip(t *testing.T) {
	p := &fakeProvider{name: "google", err: errors.New("down")}

	dir := t.TempDir()
	s := NewSynthesizer([]Provider{p}, dir, nil)
	require.NoError(t, s.EnsureFallback())

	filename, err := s.Synthesize(context.Background(), "hola", "es")
	require.NoError(t, err)
	assert.Equal(t, FallbackFilename, filename)

	info, err := os.Stat(filepath.Join(dir, filename))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestSynthesizerErrorsWithoutFallback(t *testing.T) {
	p := &fakeProvider{name: "google", err: errors.New("down")}
	s := NewSynthesizer([]Provider{p}, t.TempDir(), nil)

	_, err := s.Synthesize(context.Background(), "hola", "es")
	require.Error(t, err)
	assert.Equal(t, types.ErrSynthesis, types.GetErrorCode(err))
}

func TestEnsureFallbackIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s := NewSynthesizer(nil, dir, nil)

	require.NoError(t, s.EnsureFallback())
	first, err := os.ReadFile(filepath.Join(dir, FallbackFilename))
	require.NoError(t, err)

	require.NoError(t, s.EnsureFallback())
	second, err := os.ReadFile(filepath.Join(dir, FallbackFilename))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

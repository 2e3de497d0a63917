package tts

import (
	"context"
	"sync"
)

// mp3Stub is an ID3 header with padding; enough for players to sniff the type.
var mp3Stub = append([]byte("ID3"), make([]byte, 32)...)

// Mock is a Provider that returns canned audio and remembers what it was
// asked to say.
type Mock struct {
	// Err, when set, is returned by Synthesize and Health.
	Err error

	// Audio replaces the default MP3 stub.
	Audio []byte

	mu     sync.Mutex
	texts  []string
	closed bool
}

// NewMock returns a healthy mock producing MP3 audio.
func NewMock() *Mock {
	return &Mock{}
}

// WithError returns a mock that fails every call with err.
func WithError(err error) *Mock {
	return &Mock{Err: err}
}

// Synthesize records text and returns the canned audio.
func (m *Mock) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	audio := m.Audio
	if audio == nil {
		audio = mp3Stub
	}
	return &AudioResult{
		Audio:     audio,
		Format:    AudioFormat{Encoding: EncodingMP3, SampleRate: 44100, Channels: 1},
		CharCount: len(text),
	}, nil
}

// Health returns Err.
func (m *Mock) Health(context.Context) error {
	return m.Err
}

// Close marks the mock closed.
func (m *Mock) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Texts returns every string passed to Synthesize, in order.
func (m *Mock) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ Provider = (*Mock)(nil)

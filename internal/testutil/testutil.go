package testutil

import (
	"context"
	"sync"
	"time"

	"firvoice/internal/capture"
	"firvoice/internal/config"
	"firvoice/internal/firclient"
	"firvoice/internal/language"
)

// TestConfig returns a valid configuration for testing with fast retry
// timings.
func TestConfig() *config.Config {
	return &config.Config{
		Backend: config.BackendConfig{
			URL:     "http://localhost:5000",
			Timeout: time.Second,
		},
		Interview: config.InterviewConfig{
			Language:          "english",
			MinRecordingBytes: 1000,
			MaxAttempts:       2,
			RetryBackoff:      time.Millisecond,
			CallSpacing:       0,
			CallTimeout:       time.Second,
		},
		Recording: config.RecordingConfig{
			SampleRate:        16000,
			Channels:          1,
			Format:            "s16le",
			Device:            "",
			SliceDuration:     time.Second,
			ChannelBufferSize: 20,
		},
		Playback: config.PlaybackConfig{
			Enabled: false,
		},
		Transcription: config.TranscriptionConfig{
			Provider: "backend",
		},
		Notifications: config.NotificationsConfig{
			Enabled: true,
			Type:    "log",
		},
		Providers: map[string]config.ProviderConfig{
			"openai": {APIKey: "test-api-key"},
		},
	}
}

// MockRecorder emits a fixed payload as one chunk when started and closes
// its channels on Stop. It satisfies capture.Recorder.
type MockRecorder struct {
	Data     []byte
	EmitErr  error
	StartErr error

	mu      sync.Mutex
	chunkCh chan capture.Chunk
	errCh   chan error
	started bool
}

func (r *MockRecorder) Start(ctx context.Context) (<-chan capture.Chunk, <-chan error, error) {
	if r.StartErr != nil {
		return nil, nil, r.StartErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunkCh = make(chan capture.Chunk, 4)
	r.errCh = make(chan error, 1)
	if len(r.Data) > 0 {
		r.chunkCh <- capture.Chunk{Data: r.Data, Timestamp: time.Now()}
	}
	if r.EmitErr != nil {
		r.errCh <- r.EmitErr
	}
	r.started = true
	return r.chunkCh, r.errCh, nil
}

func (r *MockRecorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		close(r.chunkCh)
		close(r.errCh)
		r.started = false
	}
	return nil
}

func (r *MockRecorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// MockTranscriber satisfies interview.Transcriber through a function field.
type MockTranscriber struct {
	TranscribeFunc func(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error)

	mu    sync.Mutex
	calls int
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio, mimeType, lang)
	}
	return "transcribed text", nil
}

func (m *MockTranscriber) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockSynthesizer satisfies playback.Synthesizer.
type MockSynthesizer struct {
	SynthesizeFunc func(ctx context.Context, text string, lang language.Language) ([]byte, error)
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, text string, lang language.Language) ([]byte, error) {
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text, lang)
	}
	return []byte("audio:" + text), nil
}

// MockSink satisfies playback.Sink and records what it played.
type MockSink struct {
	PlayErr error

	mu     sync.Mutex
	played [][]byte
}

func (m *MockSink) Play(ctx context.Context, audio []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.played = append(m.played, audio)
	return m.PlayErr
}

func (m *MockSink) Played() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.played))
	copy(out, m.played)
	return out
}

// MockBackend satisfies the daemon's backend dependency.
type MockBackend struct {
	Report *firclient.Report
	Err    error

	mu         sync.Mutex
	statements []string
}

func (m *MockBackend) UploadStatement(ctx context.Context, statement string, lang language.Language) (*firclient.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.statements = append(m.statements, statement)
	return m.Report, nil
}

func (m *MockBackend) Statements() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.statements))
	copy(out, m.statements)
	return out
}

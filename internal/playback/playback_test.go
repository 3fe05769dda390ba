package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"firvoice/internal/language"
)

type mockSynth struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockSynth) Synthesize(ctx context.Context, text string, lang language.Language) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return []byte("audio:" + text), nil
}

func (m *mockSynth) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockSink struct {
	mu      sync.Mutex
	played  [][]byte
	block   chan struct{} // when set, Play waits for ctx or close
	playErr error
}

func (m *mockSink) Play(ctx context.Context, audio []byte) error {
	m.mu.Lock()
	m.played = append(m.played, audio)
	block := m.block
	err := m.playErr
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (m *mockSink) playCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.played)
}

// mockWelcomeSynth additionally exposes the dedicated welcome engine.
type mockWelcomeSynth struct {
	mockSynth

	welcomeMu    sync.Mutex
	welcomeCalls int
}

func (m *mockWelcomeSynth) SynthesizeWelcome(ctx context.Context, text string, lang language.Language) ([]byte, error) {
	m.welcomeMu.Lock()
	defer m.welcomeMu.Unlock()
	m.welcomeCalls++
	return []byte("welcome:" + text), nil
}

func (m *mockWelcomeSynth) welcomeCallCount() int {
	m.welcomeMu.Lock()
	defer m.welcomeMu.Unlock()
	return m.welcomeCalls
}

func TestWelcomeUsesDedicatedSynthesizer(t *testing.T) {
	synth := &mockWelcomeSynth{}
	sink := &mockSink{}
	player := NewPlayer(synth, sink)

	ctx := context.Background()
	if err := player.PlayWelcome(ctx, language.English); err != nil {
		t.Fatalf("PlayWelcome: %v", err)
	}

	if got := synth.welcomeCallCount(); got != 1 {
		t.Errorf("welcome synthesis calls = %d, want 1", got)
	}
	if got := synth.callCount(); got != 0 {
		t.Errorf("prompt synthesis calls = %d, want 0 for the welcome message", got)
	}

	// Question prompts stay on the regular engine.
	if err := player.PromptQuestion(ctx, "question", language.English); err != nil {
		t.Fatalf("PromptQuestion: %v", err)
	}
	if got := synth.callCount(); got != 1 {
		t.Errorf("prompt synthesis calls = %d, want 1", got)
	}
	if got := synth.welcomeCallCount(); got != 1 {
		t.Errorf("welcome synthesis calls = %d, want still 1", got)
	}
}

func TestPromptQuestionCachesSynthesis(t *testing.T) {
	synth := &mockSynth{}
	sink := &mockSink{}
	player := NewPlayer(synth, sink)

	ctx := context.Background()
	if err := player.PromptQuestion(ctx, "What happened?", language.English); err != nil {
		t.Fatalf("PromptQuestion: %v", err)
	}
	if err := player.PromptQuestion(ctx, "What happened?", language.English); err != nil {
		t.Fatalf("replay PromptQuestion: %v", err)
	}

	if got := synth.callCount(); got != 1 {
		t.Errorf("synthesize calls = %d, want 1 (second prompt should hit cache)", got)
	}
	if got := sink.playCount(); got != 2 {
		t.Errorf("play calls = %d, want 2", got)
	}
	if !player.Cached(language.English, "What happened?") {
		t.Error("prompt should be cached")
	}
}

func TestCacheIsPerLanguage(t *testing.T) {
	synth := &mockSynth{}
	player := NewPlayer(synth, &mockSink{})

	ctx := context.Background()
	if err := player.PromptQuestion(ctx, "text", language.English); err != nil {
		t.Fatalf("PromptQuestion: %v", err)
	}
	if err := player.PromptQuestion(ctx, "text", language.Hindi); err != nil {
		t.Fatalf("PromptQuestion: %v", err)
	}

	if got := synth.callCount(); got != 2 {
		t.Errorf("synthesize calls = %d, want 2 (different languages)", got)
	}
}

func TestPromptDroppedDuringWelcome(t *testing.T) {
	synth := &mockSynth{}
	block := make(chan struct{})
	sink := &mockSink{block: block}
	player := NewPlayer(synth, sink)

	ctx := context.Background()
	welcomeDone := make(chan error, 1)
	go func() {
		welcomeDone <- player.PlayWelcome(ctx, language.English)
	}()

	// Wait until the welcome clip is actually in the sink.
	deadline := time.After(time.Second)
	for sink.playCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("welcome never reached the sink")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if err := player.PromptQuestion(ctx, "question", language.English); err != nil {
		t.Fatalf("PromptQuestion during welcome: %v", err)
	}
	if got := sink.playCount(); got != 1 {
		t.Errorf("play calls = %d, want 1 (prompt dropped during welcome)", got)
	}

	close(block)
	if err := <-welcomeDone; err != nil {
		t.Fatalf("PlayWelcome: %v", err)
	}

	// After the welcome the gate is open.
	if err := player.PromptQuestion(ctx, "question", language.English); err != nil {
		t.Fatalf("PromptQuestion after welcome: %v", err)
	}
	if got := sink.playCount(); got != 2 {
		t.Errorf("play calls = %d, want 2", got)
	}
}

func TestWelcomeFailureReleasesGate(t *testing.T) {
	synth := &mockSynth{err: errors.New("tts down")}
	sink := &mockSink{}
	player := NewPlayer(synth, sink)

	ctx := context.Background()
	if err := player.PlayWelcome(ctx, language.English); err == nil {
		t.Fatal("PlayWelcome should report the synthesis failure")
	}

	// The failed welcome must not block question prompts.
	synth.err = nil
	if err := player.PromptQuestion(ctx, "question", language.English); err != nil {
		t.Fatalf("PromptQuestion after failed welcome: %v", err)
	}
	if got := sink.playCount(); got != 1 {
		t.Errorf("play calls = %d, want 1", got)
	}
}

func TestNewPromptCancelsCurrent(t *testing.T) {
	synth := &mockSynth{}
	block := make(chan struct{})
	sink := &mockSink{block: block}
	player := NewPlayer(synth, sink)

	ctx := context.Background()
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- player.PromptQuestion(ctx, "first", language.English)
	}()

	deadline := time.After(time.Second)
	for sink.playCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("first prompt never reached the sink")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// Second prompt cancels the first; the blocked sink unblocks via ctx.
	sink.mu.Lock()
	sink.block = nil
	sink.mu.Unlock()
	if err := player.PromptQuestion(ctx, "second", language.English); err != nil {
		t.Fatalf("second PromptQuestion: %v", err)
	}

	select {
	case err := <-firstDone:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("first prompt error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("first prompt did not finish after cancel")
	}
}

func TestResetClearsCache(t *testing.T) {
	synth := &mockSynth{}
	player := NewPlayer(synth, &mockSink{})

	ctx := context.Background()
	if err := player.PromptQuestion(ctx, "text", language.English); err != nil {
		t.Fatalf("PromptQuestion: %v", err)
	}
	player.Reset()
	if player.Cached(language.English, "text") {
		t.Error("cache should be empty after reset")
	}

	if err := player.PromptQuestion(ctx, "text", language.English); err != nil {
		t.Fatalf("PromptQuestion after reset: %v", err)
	}
	if got := synth.callCount(); got != 2 {
		t.Errorf("synthesize calls = %d, want 2 after reset", got)
	}
}

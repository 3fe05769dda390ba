package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"firvoice/internal/language"
)

type transcriberFunc func(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error)

func (f transcriberFunc) Transcribe(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error) {
	return f(ctx, audio, mimeType, lang)
}

type recordingConsumer struct {
	mu         sync.Mutex
	statements []string
	err        error
}

func (c *recordingConsumer) Submit(ctx context.Context, statement string, lang language.Language) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.statements = append(c.statements, statement)
	return nil
}

func fastFinalizeConfig() FinalizeConfig {
	return FinalizeConfig{
		MaxAttempts:  2,
		RetryBackoff: time.Millisecond,
		CallSpacing:  0,
		CallTimeout:  time.Second,
	}
}

// completeSession builds a two-question session with valid recordings for
// both answers.
func completeSession(t *testing.T) *Session {
	t.Helper()
	questions := []Question{{Text: "Q1"}, {Text: "Q2"}}
	queue := &recorderQueue{stubs: []*stubRecorder{
		{data: validAudio()},
		{data: validAudio()},
	}}
	session := NewSessionWithQuestions(language.English, questions, Options{NewRecorder: queue.factory()})

	ctx := context.Background()
	for idx := range questions {
		if err := session.StartCapture(ctx, idx); err != nil {
			t.Fatalf("StartCapture(%d): %v", idx, err)
		}
		if _, err := session.StopCapture(idx); err != nil {
			t.Fatalf("StopCapture(%d): %v", idx, err)
		}
	}
	return session
}

func TestFinalizerIncompleteSession(t *testing.T) {
	questions := []Question{{Text: "Q1"}, {Text: "Q2"}}
	queue := &recorderQueue{stubs: []*stubRecorder{{data: validAudio()}}}
	session := NewSessionWithQuestions(language.English, questions, Options{NewRecorder: queue.factory()})

	ctx := context.Background()
	if err := session.StartCapture(ctx, 0); err != nil {
		t.Fatalf("StartCapture: %v", err)
	}
	if _, err := session.StopCapture(0); err != nil {
		t.Fatalf("StopCapture: %v", err)
	}

	var calls int
	adapter := transcriberFunc(func(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error) {
		calls++
		return "text", nil
	})

	finalizer := NewFinalizer(adapter, &recordingConsumer{}, fastFinalizeConfig())
	_, err := finalizer.Run(ctx, session)

	var incomplete *IncompleteSessionError
	if !errors.As(err, &incomplete) {
		t.Fatalf("Run error = %v, want IncompleteSessionError", err)
	}
	if len(incomplete.Missing) != 1 || incomplete.Missing[0] != 1 {
		t.Errorf("Missing = %v, want [1]", incomplete.Missing)
	}
	if calls != 0 {
		t.Errorf("transcriber called %d times on incomplete session, want 0", calls)
	}
}

func TestFinalizerSequentialSuccess(t *testing.T) {
	session := completeSession(t)

	var mu sync.Mutex
	var order []string
	adapter := transcriberFunc(func(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		answer := fmt.Sprintf("A%d", len(order)+1)
		order = append(order, answer)
		if lang != language.English {
			t.Errorf("lang = %s, want english", lang)
		}
		return answer, nil
	})

	consumer := &recordingConsumer{}
	finalizer := NewFinalizer(adapter, consumer, fastFinalizeConfig())
	outcome, err := finalizer.Run(context.Background(), session)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "Q: Q1\nA: A1\n\nQ: Q2\nA: A2"
	if outcome.Statement != want {
		t.Errorf("statement = %q, want %q", outcome.Statement, want)
	}
	if len(outcome.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(outcome.Results))
	}
	for i, result := range outcome.Results {
		if !result.Succeeded || result.Attempts != 1 || result.QuestionIndex != i {
			t.Errorf("result %d = %+v", i, result)
		}
	}

	if len(consumer.statements) != 1 || consumer.statements[0] != want {
		t.Errorf("consumer received %v, want exactly one statement", consumer.statements)
	}

	stored, done := session.FinalStatement()
	if !done || stored != want {
		t.Errorf("session statement = %q (done=%v), want %q", stored, done, want)
	}
}

func TestFinalizerRetriesOnce(t *testing.T) {
	session := completeSession(t)

	var calls int
	adapter := transcriberFunc(func(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("upstream hiccup")
		}
		return "answer", nil
	})

	finalizer := NewFinalizer(adapter, &recordingConsumer{}, fastFinalizeConfig())
	outcome, err := finalizer.Run(context.Background(), session)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	first := outcome.Results[0]
	if !first.Succeeded || first.Attempts != 2 {
		t.Errorf("first result = %+v, want success on attempt 2", first)
	}
	if second := outcome.Results[1]; !second.Succeeded || second.Attempts != 1 {
		t.Errorf("second result = %+v, want success on attempt 1", second)
	}
}

func TestFinalizerFailureGetsPlaceholder(t *testing.T) {
	session := completeSession(t)

	var calls int
	adapter := transcriberFunc(func(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error) {
		calls++
		if calls <= 2 {
			return "", errors.New("persistent failure")
		}
		return "A2", nil
	})

	consumer := &recordingConsumer{}
	finalizer := NewFinalizer(adapter, consumer, fastFinalizeConfig())
	outcome, err := finalizer.Run(context.Background(), session)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	first := outcome.Results[0]
	if first.Succeeded {
		t.Error("first result should have failed")
	}
	if first.Text != PlaceholderFailed(2) {
		t.Errorf("first text = %q, want %q", first.Text, PlaceholderFailed(2))
	}

	// The failure did not abort the pass.
	if second := outcome.Results[1]; !second.Succeeded || second.Text != "A2" {
		t.Errorf("second result = %+v, want transcribed answer", second)
	}
	if !strings.Contains(outcome.Statement, PlaceholderFailed(2)) {
		t.Errorf("statement missing placeholder: %q", outcome.Statement)
	}
	if len(consumer.statements) != 1 {
		t.Errorf("statement submitted %d times, want 1", len(consumer.statements))
	}
}

func TestFinalizerEmptyTextCountsAsFailure(t *testing.T) {
	session := completeSession(t)

	var calls int
	adapter := transcriberFunc(func(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error) {
		calls++
		if calls == 1 {
			return "   ", nil
		}
		return "answer", nil
	})

	finalizer := NewFinalizer(adapter, &recordingConsumer{}, fastFinalizeConfig())
	outcome, err := finalizer.Run(context.Background(), session)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if first := outcome.Results[0]; !first.Succeeded || first.Attempts != 2 {
		t.Errorf("first result = %+v, want retry after blank text", first)
	}
}

func TestFinalizerHonorsConfiguredMinimum(t *testing.T) {
	questions := []Question{{Text: "Q1"}}
	queue := &recorderQueue{stubs: []*stubRecorder{{data: make([]byte, 500)}}}
	session := NewSessionWithQuestions(language.English, questions, Options{
		NewRecorder:       queue.factory(),
		MinRecordingBytes: 100,
	})

	ctx := context.Background()
	if err := session.StartCapture(ctx, 0); err != nil {
		t.Fatalf("StartCapture: %v", err)
	}
	if _, err := session.StopCapture(0); err != nil {
		t.Fatalf("StopCapture: %v", err)
	}

	adapter := transcriberFunc(func(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error) {
		return "answer", nil
	})

	// A recording the capture path accepted must not be rejected as too
	// short during finalization.
	config := fastFinalizeConfig()
	config.MinRecordingBytes = 100
	finalizer := NewFinalizer(adapter, &recordingConsumer{}, config)
	outcome, err := finalizer.Run(ctx, session)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if first := outcome.Results[0]; !first.Succeeded || first.Text != "answer" {
		t.Errorf("result = %+v, want transcribed answer above the configured minimum", first)
	}
}

func TestFinalizerRunsOnlyOnce(t *testing.T) {
	session := completeSession(t)

	adapter := transcriberFunc(func(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error) {
		return "answer", nil
	})

	finalizer := NewFinalizer(adapter, &recordingConsumer{}, fastFinalizeConfig())
	if _, err := finalizer.Run(context.Background(), session); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if _, err := finalizer.Run(context.Background(), session); err == nil {
		t.Error("second Run should refuse an already finalized session")
	}
}

func TestFinalizerContextCancel(t *testing.T) {
	session := completeSession(t)

	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	adapter := transcriberFunc(func(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error) {
		calls++
		cancel()
		return "", errors.New("failed")
	})

	finalizer := NewFinalizer(adapter, &recordingConsumer{}, fastFinalizeConfig())
	_, err := finalizer.Run(ctx, session)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("transcriber called %d times after cancel, want 1", calls)
	}
}

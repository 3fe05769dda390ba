package interview

import (
	"context"
	"errors"
	"testing"

	"firvoice/internal/language"
)

func TestTokenClassifier(t *testing.T) {
	classifier := NewTokenClassifier()

	tests := []struct {
		name string
		text string
		lang language.Language
		want bool
	}{
		{name: "plain yes", text: "yes", lang: language.English, want: true},
		{name: "yes in sentence", text: "Yes, I saw him clearly.", lang: language.English, want: true},
		{name: "yeah", text: "yeah I think so", lang: language.English, want: true},
		{name: "negative", text: "No, I did not see anyone.", lang: language.English, want: false},
		{name: "hindi yes", text: "हाँ, मैंने देखा", lang: language.Hindi, want: true},
		{name: "hindi no", text: "नहीं", lang: language.Hindi, want: false},
		{name: "punjabi yes", text: "ਹਾਂ ਜੀ", lang: language.Punjabi, want: true},
		{name: "empty", text: "", lang: language.English, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.IsAffirmative(tt.text, tt.lang); got != tt.want {
				t.Errorf("IsAffirmative(%q, %s) = %v, want %v", tt.text, tt.lang, got, tt.want)
			}
		})
	}
}

// walkerSession builds an english session where all base questions are
// answered, ready for a branch decision on the last one.
func walkerSession(t *testing.T) *Session {
	t.Helper()
	stubs := make([]*stubRecorder, 0, 5)
	for i := 0; i < 5; i++ {
		stubs = append(stubs, &stubRecorder{data: validAudio()})
	}
	session := newTestSession(t, stubs...)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := session.StartCapture(ctx, i); err != nil {
			t.Fatalf("StartCapture(%d): %v", i, err)
		}
		if _, err := session.StopCapture(i); err != nil {
			t.Fatalf("StopCapture(%d): %v", i, err)
		}
	}
	return session
}

func TestWalkerNext(t *testing.T) {
	session := newTestSession(t, &stubRecorder{data: validAudio()})
	walker := NewWalker(session, nil, nil)

	if got := walker.Next(); got != 0 {
		t.Errorf("Next on fresh session = %d, want 0", got)
	}

	ctx := context.Background()
	if err := session.StartCapture(ctx, 0); err != nil {
		t.Fatalf("StartCapture: %v", err)
	}
	if _, err := session.StopCapture(0); err != nil {
		t.Fatalf("StopCapture: %v", err)
	}

	if got := walker.Next(); got != 1 {
		t.Errorf("Next after first answer = %d, want 1", got)
	}
}

func TestWalkerDecideAffirmative(t *testing.T) {
	session := walkerSession(t)

	var calls int
	adapter := transcriberFunc(func(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error) {
		calls++
		return "Yes, I know who did it", nil
	})
	walker := NewWalker(session, NewTokenClassifier(), adapter)

	inserted, err := walker.Decide(context.Background(), 4)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if inserted != 3 {
		t.Errorf("inserted = %d, want 3", inserted)
	}
	if got := len(session.Questions()); got != 8 {
		t.Errorf("question count = %d, want 8", got)
	}
	if got := walker.Next(); got != 5 {
		t.Errorf("Next after splice = %d, want first follow-up 5", got)
	}
}

func TestWalkerDecideNegative(t *testing.T) {
	session := walkerSession(t)

	adapter := transcriberFunc(func(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error) {
		return "No, I have no idea", nil
	})
	walker := NewWalker(session, NewTokenClassifier(), adapter)

	inserted, err := walker.Decide(context.Background(), 4)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if inserted != 0 {
		t.Errorf("inserted = %d, want 0", inserted)
	}
	if got := len(session.Questions()); got != 5 {
		t.Errorf("question count = %d, want unchanged 5", got)
	}
	if got := walker.Next(); got != -1 {
		t.Errorf("Next = %d, want -1 (interview complete)", got)
	}
}

func TestWalkerDecideSkipsNonBranching(t *testing.T) {
	session := walkerSession(t)

	var calls int
	adapter := transcriberFunc(func(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error) {
		calls++
		return "yes", nil
	})
	walker := NewWalker(session, NewTokenClassifier(), adapter)

	inserted, err := walker.Decide(context.Background(), 0)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if inserted != 0 || calls != 0 {
		t.Errorf("non-branching question: inserted=%d calls=%d, want 0/0", inserted, calls)
	}
}

func TestWalkerDecideTranscribeFailure(t *testing.T) {
	session := walkerSession(t)

	adapter := transcriberFunc(func(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error) {
		return "", errors.New("service unavailable")
	})
	walker := NewWalker(session, NewTokenClassifier(), adapter)

	inserted, err := walker.Decide(context.Background(), 4)
	if err != nil {
		t.Fatalf("Decide should not fail the interview: %v", err)
	}
	if inserted != 0 {
		t.Errorf("inserted = %d, want 0 on undecidable answer", inserted)
	}
}

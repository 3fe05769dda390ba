package interview

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"firvoice/internal/language"
)

// Transcriber converts one recorded answer to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string, lang language.Language) (string, error)
}

// StatementConsumer receives the assembled statement once finalization is
// done.
type StatementConsumer interface {
	Submit(ctx context.Context, statement string, lang language.Language) error
}

// Placeholder answer texts substituted when a recording cannot be transcribed.
const (
	PlaceholderTooShort = "[Error: recording too short or empty]"
)

// PlaceholderFailed is the answer text for a recording whose transcription
// failed on every attempt.
func PlaceholderFailed(attempts int) string {
	return fmt.Sprintf("[Error: transcription failed after %d attempts]", attempts)
}

// FinalizeConfig tunes the finalization pass. Zero values fall back to the
// defaults below.
type FinalizeConfig struct {
	MaxAttempts       int
	RetryBackoff      time.Duration
	CallSpacing       time.Duration
	CallTimeout       time.Duration
	MinRecordingBytes int
}

func DefaultFinalizeConfig() FinalizeConfig {
	return FinalizeConfig{
		MaxAttempts:       2,
		RetryBackoff:      time.Second,
		CallSpacing:       500 * time.Millisecond,
		CallTimeout:       10 * time.Second,
		MinRecordingBytes: MinRecordingBytes,
	}
}

func (c *FinalizeConfig) applyDefaults() {
	defaults := DefaultFinalizeConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaults.MaxAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = defaults.RetryBackoff
	}
	if c.CallSpacing < 0 {
		c.CallSpacing = defaults.CallSpacing
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = defaults.CallTimeout
	}
	if c.MinRecordingBytes <= 0 {
		c.MinRecordingBytes = defaults.MinRecordingBytes
	}
}

// Outcome is the product of a finalization pass.
type Outcome struct {
	Results   []TranscriptionResult
	Statement string
}

// Finalizer transcribes a completed session's recordings one at a time, in
// question order, assembles the statement and hands it to the consumer.
type Finalizer struct {
	adapter  Transcriber
	consumer StatementConsumer
	config   FinalizeConfig
}

func NewFinalizer(adapter Transcriber, consumer StatementConsumer, config FinalizeConfig) *Finalizer {
	config.applyDefaults()
	return &Finalizer{
		adapter:  adapter,
		consumer: consumer,
		config:   config,
	}
}

// Run finalizes the session. It refuses to start if any question lacks a
// valid recording, so no transcription call is made for a partial interview.
// A failed transcription never aborts the pass: the question gets a
// placeholder answer and the remaining questions still go through.
func (f *Finalizer) Run(ctx context.Context, session *Session) (*Outcome, error) {
	if missing := session.MissingIndexes(); len(missing) > 0 {
		return nil, &IncompleteSessionError{Missing: missing}
	}
	if _, done := session.FinalStatement(); done {
		return nil, fmt.Errorf("session already finalized")
	}

	questions := session.Questions()
	results := make([]TranscriptionResult, 0, len(questions))

	for i := range questions {
		rec, ok := session.RecordingFor(i)
		if !ok {
			// Recording vanished between the completeness check and now.
			return nil, &IncompleteSessionError{Missing: []int{i}}
		}

		if i > 0 && f.config.CallSpacing > 0 {
			if err := sleepCtx(ctx, f.config.CallSpacing); err != nil {
				return nil, err
			}
		}

		result, err := f.transcribeOne(ctx, session.Language(), rec)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	statement, err := BuildStatement(questions, results)
	if err != nil {
		return nil, fmt.Errorf("assemble statement: %w", err)
	}

	if !session.setOutcome(results, statement) {
		return nil, fmt.Errorf("session already finalized")
	}

	if f.consumer != nil {
		if err := f.consumer.Submit(ctx, statement, session.Language()); err != nil {
			return nil, fmt.Errorf("submit statement: %w", err)
		}
	}

	return &Outcome{Results: results, Statement: statement}, nil
}

// transcribeOne runs the retry loop for a single recording. Only a context
// error propagates; transcription failures become placeholder answers.
func (f *Finalizer) transcribeOne(ctx context.Context, lang language.Language, rec Recording) (TranscriptionResult, error) {
	result := TranscriptionResult{QuestionIndex: rec.QuestionIndex}

	// Same threshold the capture path used, so a stored recording is never
	// rejected here for being smaller than the session allowed.
	if !rec.Valid(f.config.MinRecordingBytes) {
		result.Text = PlaceholderTooShort
		return result, nil
	}

	var lastErr error
	for attempt := 1; attempt <= f.config.MaxAttempts; attempt++ {
		result.Attempts = attempt

		if attempt > 1 {
			if err := sleepCtx(ctx, f.config.RetryBackoff); err != nil {
				return result, err
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, f.config.CallTimeout)
		text, err := f.adapter.Transcribe(callCtx, rec.Audio, rec.MimeType, lang)
		cancel()

		if err == nil && strings.TrimSpace(text) == "" {
			err = fmt.Errorf("empty transcription")
		}
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			lastErr = err
			log.Printf("finalize: transcribe question %d attempt %d/%d: %v",
				rec.QuestionIndex+1, attempt, f.config.MaxAttempts, err)
			continue
		}

		result.Text = text
		result.Succeeded = true
		return result, nil
	}

	log.Printf("finalize: question %d failed after %d attempts: %v",
		rec.QuestionIndex+1, result.Attempts, lastErr)
	result.Text = PlaceholderFailed(result.Attempts)
	return result, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

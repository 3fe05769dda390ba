package interview

import (
	"context"
	"fmt"
	"log"
	"sync"

	"firvoice/internal/capture"
	"firvoice/internal/language"
)

// CaptureState describes where a question sits in the capture lifecycle.
type CaptureState string

const (
	StateIdle      CaptureState = "idle"
	StateRecording CaptureState = "recording"
	StateCaptured  CaptureState = "captured"
)

// RecorderFactory builds a fresh recorder for each capture.
type RecorderFactory func() capture.Recorder

// Options configures a Session.
type Options struct {
	NewRecorder       RecorderFactory
	MinRecordingBytes int
	Capture           capture.Config
}

func (o *Options) applyDefaults() {
	if o.NewRecorder == nil {
		o.NewRecorder = func() capture.Recorder {
			return capture.NewRecorder(o.Capture)
		}
	}
	if o.MinRecordingBytes <= 0 {
		o.MinRecordingBytes = MinRecordingBytes
	}
	if o.Capture.SampleRate == 0 {
		o.Capture = capture.DefaultConfig()
	}
}

// Session tracks one interview: the question list, per-question recordings
// and the single in-flight capture. At most one question is recording at any
// instant; starting a new capture force-stops the previous one.
type Session struct {
	language  language.Language
	questions []Question
	options   Options

	mu          sync.Mutex
	recordings  map[int]Recording
	activeIndex int // -1 when nothing is recording
	activeState *captureState
	transcripts []TranscriptionResult
	finalText   string
	finalized   bool
}

// captureState is the bookkeeping for one in-flight capture.
type captureState struct {
	index    int
	recorder capture.Recorder
	done     chan struct{}

	mu       sync.Mutex
	audio    []byte
	firstErr error
}

// NewSession creates a session for the given language using the built-in
// question set.
func NewSession(lang language.Language, opts Options) (*Session, error) {
	questions, err := QuestionsFor(lang)
	if err != nil {
		return nil, err
	}
	return NewSessionWithQuestions(lang, questions, opts), nil
}

// NewSessionWithQuestions creates a session over an explicit question list.
func NewSessionWithQuestions(lang language.Language, questions []Question, opts Options) *Session {
	opts.applyDefaults()
	return &Session{
		language:    lang,
		questions:   questions,
		options:     opts,
		recordings:  make(map[int]Recording),
		activeIndex: -1,
	}
}

func (s *Session) Language() language.Language { return s.language }

// Questions returns the session's question list.
func (s *Session) Questions() []Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// SpliceFollowUp inserts the follow-up questions of the question at index
// directly after it. Returns the number of questions inserted.
func (s *Session) SpliceFollowUp(index int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.questions) {
		return 0
	}
	followUp := s.questions[index].FollowUp
	if followUp == nil || len(followUp.OnYes) == 0 {
		return 0
	}

	inserted := followUp.OnYes
	expanded := make([]Question, 0, len(s.questions)+len(inserted))
	expanded = append(expanded, s.questions[:index+1]...)
	expanded = append(expanded, inserted...)
	expanded = append(expanded, s.questions[index+1:]...)
	s.questions = expanded

	// Recordings past the splice point shift with their questions.
	shifted := make(map[int]Recording, len(s.recordings))
	for idx, rec := range s.recordings {
		if idx > index {
			idx += len(inserted)
		}
		rec.QuestionIndex = idx
		shifted[idx] = rec
	}
	s.recordings = shifted

	// Detach so a repeated yes cannot splice twice.
	s.questions[index].FollowUp = nil

	return len(inserted)
}

// State reports the capture lifecycle state of one question.
func (s *Session) State(index int) CaptureState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeIndex == index {
		return StateRecording
	}
	if _, ok := s.recordings[index]; ok {
		return StateCaptured
	}
	return StateIdle
}

// ActiveIndex returns the question currently recording, or -1.
func (s *Session) ActiveIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeIndex
}

// StartCapture begins recording an answer for the given question. Any capture
// already in flight for another question is stopped and kept first.
func (s *Session) StartCapture(ctx context.Context, index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.questions) {
		s.mu.Unlock()
		return fmt.Errorf("question index %d out of range", index)
	}
	if s.activeIndex == index {
		s.mu.Unlock()
		return fmt.Errorf("question %d is already recording", index+1)
	}
	prev := s.activeState
	prevIndex := s.activeIndex
	s.mu.Unlock()

	if prev != nil {
		if _, err := s.StopCapture(prevIndex); err != nil {
			log.Printf("session: previous capture for question %d discarded: %v", prevIndex+1, err)
		}
	}

	recorder := s.options.NewRecorder()
	chunkCh, errCh, err := recorder.Start(ctx)
	if err != nil {
		return fmt.Errorf("start capture for question %d: %w", index+1, err)
	}

	state := &captureState{
		index:    index,
		recorder: recorder,
		done:     make(chan struct{}),
	}
	go state.collect(chunkCh, errCh)

	s.mu.Lock()
	s.activeIndex = index
	s.activeState = state
	s.mu.Unlock()

	return nil
}

func (c *captureState) collect(chunkCh <-chan capture.Chunk, errCh <-chan error) {
	defer close(c.done)
	for chunkCh != nil || errCh != nil {
		select {
		case chunk, ok := <-chunkCh:
			if !ok {
				chunkCh = nil
				continue
			}
			c.mu.Lock()
			c.audio = append(c.audio, chunk.Data...)
			c.mu.Unlock()
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			c.mu.Lock()
			if c.firstErr == nil {
				c.firstErr = err
			}
			c.mu.Unlock()
		}
	}
}

// StopCapture ends the in-flight capture for the given question and stores
// the recording if it meets the minimum-size threshold. Below the threshold
// the question returns to idle and an EmptyCaptureError is returned.
func (s *Session) StopCapture(index int) (Recording, error) {
	s.mu.Lock()
	if s.activeIndex != index || s.activeState == nil {
		s.mu.Unlock()
		return Recording{}, fmt.Errorf("question %d is not recording", index+1)
	}
	state := s.activeState
	s.activeIndex = -1
	s.activeState = nil
	s.mu.Unlock()

	if err := state.recorder.Stop(); err != nil {
		log.Printf("session: stop recorder: %v", err)
	}
	<-state.done

	state.mu.Lock()
	audio := state.audio
	captureErr := state.firstErr
	state.mu.Unlock()

	rec := Recording{
		QuestionIndex:   index,
		Audio:           capture.ToWAV(audio, s.options.Capture.SampleRate, s.options.Capture.Channels),
		MimeType:        capture.WAVMimeType,
		DurationSeconds: capture.PCMDuration(len(audio), s.options.Capture.SampleRate, s.options.Capture.Channels),
		SizeBytes:       len(audio),
	}

	if !rec.Valid(s.options.MinRecordingBytes) {
		return Recording{}, &EmptyCaptureError{
			QuestionIndex: index,
			SizeBytes:     rec.SizeBytes,
			Err:           captureErr,
		}
	}

	s.mu.Lock()
	s.recordings[index] = rec
	s.mu.Unlock()

	return rec, nil
}

// RecordingFor returns the stored recording for a question, if any.
func (s *Session) RecordingFor(index int) (Recording, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recordings[index]
	return rec, ok
}

// DiscardRecording removes a stored answer so the question can be retaken.
func (s *Session) DiscardRecording(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recordings, index)
}

// IsComplete reports whether every question has a valid stored recording.
func (s *Session) IsComplete() bool {
	return len(s.MissingIndexes()) == 0
}

// MissingIndexes returns the questions still lacking a valid recording, in
// ascending order.
func (s *Session) MissingIndexes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var missing []int
	for i := range s.questions {
		if _, ok := s.recordings[i]; !ok {
			missing = append(missing, i)
		}
	}
	return missing
}

// Recordings returns the stored recordings in ascending question order.
func (s *Session) Recordings() []Recording {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recording, 0, len(s.recordings))
	for _, idx := range sortedIndexes(s.recordings) {
		out = append(out, s.recordings[idx])
	}
	return out
}

// setOutcome stores the finalize results. It succeeds only once per session
// lifetime; Reset clears it.
func (s *Session) setOutcome(results []TranscriptionResult, statement string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return false
	}
	s.transcripts = results
	s.finalText = statement
	s.finalized = true
	return true
}

// Transcripts returns the per-question transcription results, if finalized.
func (s *Session) Transcripts() []TranscriptionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TranscriptionResult, len(s.transcripts))
	copy(out, s.transcripts)
	return out
}

// FinalStatement returns the assembled statement, if finalized.
func (s *Session) FinalStatement() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalText, s.finalized
}

// Reset discards all recordings, transcripts and the final statement, and
// restores the original question list. An in-flight capture is stopped first.
func (s *Session) Reset() {
	s.mu.Lock()
	state := s.activeState
	s.activeIndex = -1
	s.activeState = nil
	s.mu.Unlock()

	if state != nil {
		if err := state.recorder.Stop(); err != nil {
			log.Printf("session: stop recorder on reset: %v", err)
		}
		<-state.done
	}

	questions, err := QuestionsFor(s.language)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordings = make(map[int]Recording)
	s.transcripts = nil
	s.finalText = ""
	s.finalized = false
	if err == nil {
		s.questions = questions
	}
}

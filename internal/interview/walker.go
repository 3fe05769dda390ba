package interview

import (
	"context"
	"fmt"
	"log"
)

// Walker drives the guided interview flow: it hands out the next question to
// ask and expands follow-up branches based on the answer just given.
type Walker struct {
	session    *Session
	classifier Classifier
	adapter    Transcriber
}

func NewWalker(session *Session, classifier Classifier, adapter Transcriber) *Walker {
	if classifier == nil {
		classifier = NewTokenClassifier()
	}
	return &Walker{
		session:    session,
		classifier: classifier,
		adapter:    adapter,
	}
}

// Next returns the index of the first question without a valid recording, or
// -1 when the interview is complete.
func (w *Walker) Next() int {
	missing := w.session.MissingIndexes()
	if len(missing) == 0 {
		return -1
	}
	return missing[0]
}

// Decide inspects the stored answer for a branching question and splices its
// follow-up questions when the answer is affirmative. It returns the number
// of questions inserted. Questions without a follow-up branch decide nothing.
func (w *Walker) Decide(ctx context.Context, index int) (int, error) {
	questions := w.session.Questions()
	if index < 0 || index >= len(questions) {
		return 0, fmt.Errorf("question index %d out of range", index)
	}
	if questions[index].FollowUp == nil {
		return 0, nil
	}

	rec, ok := w.session.RecordingFor(index)
	if !ok {
		return 0, fmt.Errorf("question %d has no recording to decide on", index+1)
	}

	text, err := w.adapter.Transcribe(ctx, rec.Audio, rec.MimeType, w.session.Language())
	if err != nil {
		// An undecidable answer takes the main path rather than stalling
		// the interview.
		log.Printf("walker: transcribe branching answer %d: %v", index+1, err)
		return 0, nil
	}

	if !w.classifier.IsAffirmative(text, w.session.Language()) {
		return 0, nil
	}

	inserted := w.session.SpliceFollowUp(index)
	if inserted > 0 {
		log.Printf("walker: question %d answered yes, added %d follow-up questions", index+1, inserted)
	}
	return inserted, nil
}

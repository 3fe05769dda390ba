package interview

import (
	"fmt"
	"sort"
	"strings"

	"firvoice/internal/language"
)

// MinRecordingBytes is the uniform minimum size for a capture to count as a
// usable answer. Anything below this is treated as an empty capture.
const MinRecordingBytes = 1000

// Question is one interview prompt. A question may carry a follow-up branch
// that is spliced into the sequence when the answer is affirmative.
type Question struct {
	Text     string
	FollowUp *FollowUp
}

// FollowUp is the conditional branch of a question, keyed on a yes answer.
type FollowUp struct {
	OnYes []Question
}

// Recording is one captured audio answer for one question.
type Recording struct {
	QuestionIndex   int
	Audio           []byte
	MimeType        string
	DurationSeconds int
	SizeBytes       int
}

// Valid reports whether the recording meets the minimum-size threshold.
func (r Recording) Valid(minBytes int) bool {
	return r.SizeBytes >= minBytes && len(r.Audio) > 0
}

// TranscriptionResult is the outcome of transcribing one recording.
type TranscriptionResult struct {
	QuestionIndex int
	Text          string
	Succeeded     bool
	Attempts      int
}

// IncompleteSessionError reports a finalize attempt on a session that is
// missing valid recordings. Missing holds the 0-based question indices.
type IncompleteSessionError struct {
	Missing []int
}

func (e *IncompleteSessionError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, idx := range e.Missing {
		parts[i] = fmt.Sprintf("%d", idx+1)
	}
	return fmt.Sprintf("session incomplete: missing recordings for questions %s", strings.Join(parts, ", "))
}

// EmptyCaptureError reports a stopped capture that produced no usable audio.
type EmptyCaptureError struct {
	QuestionIndex int
	SizeBytes     int
	Err           error
}

func (e *EmptyCaptureError) Error() string {
	msg := fmt.Sprintf("empty capture for question %d: %d bytes (minimum %d)",
		e.QuestionIndex+1, e.SizeBytes, MinRecordingBytes)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *EmptyCaptureError) Unwrap() error { return e.Err }

// sortedIndexes returns the keys of a recordings map in ascending order.
func sortedIndexes(m map[int]Recording) []int {
	indexes := make([]int, 0, len(m))
	for idx := range m {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	return indexes
}

// questionSets holds the built-in interview scripts per language, mirroring
// the question flow used by the FIR backend.
var questionSets = map[language.Language][]Question{
	language.English: {
		{Text: "Can you tell me your full name, please?"},
		{Text: "Could you also share your father's or husband's name?"},
		{Text: "What is your date of birth and nationality?"},
		{Text: "Can you please tell me about the incident? Start from the beginning and include important details like the date, time, what exactly happened, and where it took place."},
		{
			Text: "Do you know who committed the crime?",
			FollowUp: &FollowUp{OnYes: []Question{
				{Text: "Please share any details about their appearance or behavior."},
				{Text: "Were the accused wearing anything identifiable or distinct?"},
				{Text: "Do you know the name or any information that can help identify the accused?"},
			}},
		},
	},
	language.Hindi: {
		{Text: "कृपया अपना पूरा नाम बताएं?"},
		{Text: "क्या आप अपने पिता या पति का नाम भी बता सकते हैं?"},
		{Text: "आपकी जन्मतिथि और राष्ट्रीयता क्या है?"},
		{Text: "कृपया मुझे घटना के बारे में बताएं? शुरुआत से बताएं और महत्वपूर्ण विवरण जैसे तारीख, समय, क्या हुआ और कहाँ हुआ, शामिल करें।"},
		{
			Text: "क्या आप जानते हैं कि अपराध किसने किया?",
			FollowUp: &FollowUp{OnYes: []Question{
				{Text: "कृपया उनकी दिखावट या व्यवहार के बारे में कोई जानकारी साझा करें।"},
				{Text: "क्या आरोपी कुछ पहचान योग्य या विशिष्ट पहने हुए थे?"},
				{Text: "क्या आप नाम या कोई ऐसी जानकारी जानते हैं जो आरोपी की पहचान में मदद कर सके?"},
			}},
		},
	},
	language.Punjabi: {
		{Text: "ਕਿਰਪਾ ਕਰਕੇ ਆਪਣਾ ਪੂਰਾ ਨਾਮ ਦੱਸੋ?"},
		{Text: "ਕੀ ਤੁਸੀਂ ਆਪਣੇ ਪਿਤਾ ਜਾਂ ਪਤੀ ਦਾ ਨਾਮ ਵੀ ਦੱਸ ਸਕਦੇ ਹੋ?"},
		{Text: "ਤੁਹਾਡੀ ਜਨਮ ਮਿਤੀ ਅਤੇ ਰਾਸ਼ਟਰੀਅਤਾ ਕੀ ਹੈ?"},
		{Text: "ਕਿਰਪਾ ਕਰਕੇ ਮੈਨੂੰ ਘਟਨਾ ਬਾਰੇ ਦੱਸੋ? ਸ਼ੁਰੂ ਤੋਂ ਦੱਸੋ ਅਤੇ ਮਹੱਤਵਪੂਰਨ ਵੇਰਵੇ ਜਿਵੇਂ ਤਾਰੀਖ, ਸਮਾਂ, ਕੀ ਹੋਇਆ ਅਤੇ ਕਿੱਥੇ ਹੋਇਆ, ਸ਼ਾਮਲ ਕਰੋ।"},
		{
			Text: "ਕੀ ਤੁਸੀਂ ਜਾਣਦੇ ਹੋ ਕਿ ਅਪਰਾਧ ਕਿਸਨੇ ਕੀਤਾ?",
			FollowUp: &FollowUp{OnYes: []Question{
				{Text: "ਕਿਰਪਾ ਕਰਕੇ ਉਹਨਾਂ ਦੀ ਦਿੱਖ ਜਾਂ ਵਿਵਹਾਰ ਬਾਰੇ ਕੋਈ ਜਾਣਕਾਰੀ ਸਾਂਝੀ ਕਰੋ।"},
				{Text: "ਕੀ ਦੋਸ਼ੀ ਕੁਝ ਪਛਾਣਨਯੋਗ ਜਾਂ ਵਿਸ਼ੇਸ਼ ਪਹਿਨੇ ਹੋਏ ਸਨ?"},
				{Text: "ਕੀ ਤੁਸੀ ਨਾਮ ਜਾਂ ਕੋਈ ਅਜਿਹੀ ਜਾਣਕਾਰੀ ਜਾਣਦੇ ਹੋ ਜੋ ਦੋਸ਼ੀ ਦੀ ਪਛਾਣ ਵਿੱਚ ਮਦਦ ਕਰ ਸਕਦੀ ਹੈ?"},
			}},
		},
	},
}

// QuestionsFor returns the built-in question list for a language.
func QuestionsFor(lang language.Language) ([]Question, error) {
	questions, ok := questionSets[lang]
	if !ok {
		return nil, fmt.Errorf("no question set for language %q", lang)
	}
	result := make([]Question, len(questions))
	copy(result, questions)
	return result, nil
}

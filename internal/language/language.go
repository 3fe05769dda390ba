package language

import (
	"fmt"
	"strings"
)

// Language is one of the interview languages supported by the FIR backend.
type Language string

const (
	English Language = "english"
	Hindi   Language = "hindi"
	Punjabi Language = "punjabi"
)

// languages is the master list, in the order the backend documents them.
var languages = []Language{English, Hindi, Punjabi}

// whisperCodes maps interview languages to ISO 639-1 codes for direct
// Whisper transcription.
var whisperCodes = map[Language]string{
	English: "en",
	Hindi:   "hi",
	Punjabi: "pa",
}

// welcomeMessages is the one-time briefing played before the first question.
var welcomeMessages = map[Language]string{
	English: "I am AI police wala. I'll now ask you a series of questions about the incident. Please answer clearly and provide as much detail as possible to help us file your complaint accurately.",
	Hindi:   "मैं एआई पुलिस वाला हूँ। मैं अब आपसे घटना के बारे में कुछ प्रश्न पूछूंगा। कृपया स्पष्ट रूप से उत्तर दें और आपकी शिकायत सही ढंग से दर्ज करने में हमारी मदद के लिए जितना हो सके विवरण प्रदान करें।",
	Punjabi: "ਮੈਂ ਏਆਈ ਪੁਲਿਸ ਵਾਲਾ ਹਾਂ। ਮੈਂ ਹੁਣ ਤੁਹਾਨੂੰ ਘਟਨਾ ਬਾਰੇ ਕੁਝ ਸਵਾਲ ਪੁੱਛਾਂਗਾ। ਕਿਰਪਾ ਕਰਕੇ ਸਪਸ਼ਟ ਤੌਰ 'ਤੇ ਜਵਾਬ ਦਿਓ ਅਤੇ ਤੁਹਾਡੀ ਸ਼ਿਕਾਇਤ ਨੂੰ ਸਹੀ ਢੰਗ ਨਾਲ ਦਰਜ ਕਰਨ ਵਿੱਚ ਸਾਡੀ ਮਦਦ ਲਈ ਜਿੰਨੀ ਹੋ ਸਕੇ ਵੇਰਵਾ ਪ੍ਰਦਾਨ ਕਰੋ।",
}

// affirmativeTokens are the per-language substrings used to classify an
// answer as affirmative when a question carries a follow-up branch.
var affirmativeTokens = map[Language][]string{
	English: {"yes", "yeah", "yep"},
	Hindi:   {"हाँ", "हां", "जी"},
	Punjabi: {"ਹਾਂ", "ਜੀ"},
}

// Parse returns the Language for a user-supplied name.
func Parse(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case English:
		return English, nil
	case Hindi:
		return Hindi, nil
	case Punjabi:
		return Punjabi, nil
	}
	return "", fmt.Errorf("unsupported language: %q (must be english, hindi, or punjabi)", s)
}

// IsValid reports whether l is a recognized interview language.
func (l Language) IsValid() bool {
	_, ok := whisperCodes[l]
	return ok
}

// String returns the backend name of the language.
func (l Language) String() string { return string(l) }

// WhisperCode returns the ISO 639-1 code used by Whisper-style APIs.
// Returns "" (auto-detect) for an unknown language.
func (l Language) WhisperCode() string {
	return whisperCodes[l]
}

// WelcomeMessage returns the briefing text played once per session.
func (l Language) WelcomeMessage() string {
	return welcomeMessages[l]
}

// AffirmativeTokens returns the substrings treated as a "yes" answer.
func (l Language) AffirmativeTokens() []string {
	tokens := affirmativeTokens[l]
	result := make([]string, len(tokens))
	copy(result, tokens)
	return result
}

// List returns all supported languages in declaration order.
func List() []Language {
	result := make([]Language, len(languages))
	copy(result, languages)
	return result
}

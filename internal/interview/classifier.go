package interview

import (
	"strings"

	"firvoice/internal/language"
)

// Classifier decides whether a transcribed answer is affirmative. The token
// matcher below is the default; richer implementations can be swapped in.
type Classifier interface {
	IsAffirmative(text string, lang language.Language) bool
}

// TokenClassifier matches affirmative tokens of the answer's language as
// case-insensitive substrings.
type TokenClassifier struct{}

func NewTokenClassifier() *TokenClassifier { return &TokenClassifier{} }

func (c *TokenClassifier) IsAffirmative(text string, lang language.Language) bool {
	lowered := strings.ToLower(text)
	for _, token := range lang.AffirmativeTokens() {
		if strings.Contains(lowered, strings.ToLower(token)) {
			return true
		}
	}
	return false
}

package interview

import (
	"fmt"
	"strings"
)

// BuildStatement assembles the final statement from questions and their
// transcribed answers. Each question/answer pair becomes a two-line block and
// blocks are separated by a blank line:
//
//	Q: <question text>
//	A: <answer text>
//
// Results must cover the questions in ascending index order; failed
// transcriptions contribute their placeholder text like any other answer.
func BuildStatement(questions []Question, results []TranscriptionResult) (string, error) {
	if len(results) != len(questions) {
		return "", fmt.Errorf("statement needs %d answers, got %d", len(questions), len(results))
	}

	blocks := make([]string, len(results))
	for i, result := range results {
		if result.QuestionIndex != i {
			return "", fmt.Errorf("answer %d is for question %d", i, result.QuestionIndex)
		}
		blocks[i] = fmt.Sprintf("Q: %s\nA: %s", questions[i].Text, result.Text)
	}

	return strings.Join(blocks, "\n\n"), nil
}

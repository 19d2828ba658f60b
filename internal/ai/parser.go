package ai

import (
	"encoding/json"
	"strings"

	"edunexa-backend/internal/logger"
	"edunexa-backend/models"
)

// ParseSummary expects the entire trimmed response to be valid JSON matching
// the summary shape. A half-parsed summary is never acceptable: any failure
// returns *InvalidResponseError carrying the raw text and the caller must
// not cache anything.
func ParseSummary(raw string) (*models.Summary, error) {
	trimmed := strings.TrimSpace(raw)

	var summary models.Summary
	if err := json.Unmarshal([]byte(trimmed), &summary); err != nil {
		return nil, &InvalidResponseError{RawText: trimmed, Err: err}
	}

	return &summary, nil
}

// quizEnvelope matches the instructed response format for quiz generation.
type quizEnvelope struct {
	Quiz []models.QuizQuestion `json:"quiz"`
}

// ParseQuiz scans the response for the first '{' to the last '}' and parses
// that span. Malformed output degrades to an empty slice instead of an
// error; the result is truncated to at most QuizLength entries.
func ParseQuiz(raw string) []models.QuizQuestion {
	text := strings.TrimSpace(raw)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		logger.Warn("quiz response contained no JSON object", "length", len(text))
		return []models.QuizQuestion{}
	}

	var envelope quizEnvelope
	if err := json.Unmarshal([]byte(text[start:end+1]), &envelope); err != nil {
		logger.Warn("quiz response failed to parse, returning empty quiz", "error", err)
		return []models.QuizQuestion{}
	}

	quiz := envelope.Quiz
	if quiz == nil {
		quiz = []models.QuizQuestion{}
	}
	if len(quiz) > models.QuizLength {
		quiz = quiz[:models.QuizLength]
	}

	return quiz
}

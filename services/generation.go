package services

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"edunexa-backend/internal/ai"
	"edunexa-backend/internal/logger"
	"edunexa-backend/models"
)

const pdfMIMEType = "application/pdf"

const summaryPrompt = `
You are an expert teacher.

Summarize the given study material in STRICT JSON format.
Do not add explanations outside JSON.
Do not use markdown.

JSON structure:
{
  "title": "string",
  "overview": "short paragraph",
  "keyPoints": ["point1", "point2", "point3"],
  "importantTerms": ["term1", "term2"],
  "conclusion": "short conclusion"
}
`

const quizPrompt = `
Create EXACTLY 10 multiple-choice questions (MCQs) from this document.

RULES (VERY IMPORTANT):
- Return ONLY valid JSON
- Do NOT add explanations
- Do NOT add markdown
- Each question must have 4 options
- Options must NOT repeat question text
- Answers must be ONLY: "A", "B", "C", or "D"

JSON FORMAT:
{
  "quiz": [
    {
      "question": "Question text",
      "options": [
        "Option 1",
        "Option 2",
        "Option 3",
        "Option 4"
      ],
      "answer": "A"
    }
  ]
}
`

// FileStore is the document repository the orchestrator reads and writes.
type FileStore interface {
	FindByID(ctx context.Context, id string) (*models.File, error)
	SaveSummary(ctx context.Context, id string, summary *models.Summary) error
	SaveQuiz(ctx context.Context, id string, quiz []models.QuizQuestion) error
}

// Fetcher retrieves the raw source bytes for a document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Generator invokes the external model with a prompt and inline document
// bytes and returns the raw response text.
type Generator interface {
	Generate(ctx context.Context, prompt string, data []byte, mimeType string) (string, error)
}

// UsageFunc records model token usage attributed to a user. Optional.
type UsageFunc func(ctx context.Context, userID string, tokens int)

// GenerationService ties document lookup, source fetch, retried model
// invocation, parsing and cache persistence together. Generation is
// cache-first: a document with a valid cached result never reaches the
// model again.
type GenerationService struct {
	files       FileStore
	fetcher     Fetcher
	generator   Generator
	retry       ai.RetryPolicy
	timeout     time.Duration
	recordUsage UsageFunc

	// group coalesces concurrent cold-cache requests for the same
	// document so only one upstream generation is in flight per key.
	group singleflight.Group
}

func NewGenerationService(files FileStore, fetcher Fetcher, generator Generator, retry ai.RetryPolicy, timeout time.Duration) *GenerationService {
	return &GenerationService{
		files:     files,
		fetcher:   fetcher,
		generator: generator,
		retry:     retry,
		timeout:   timeout,
	}
}

// WithUsageRecorder attaches per-user token accounting.
func (s *GenerationService) WithUsageRecorder(fn UsageFunc) *GenerationService {
	s.recordUsage = fn
	return s
}

type SummaryResult struct {
	Summary *models.Summary
	Cached  bool
}

type QuizResult struct {
	Quiz          []models.QuizQuestion
	Cached        bool
	QuotaExceeded bool
}

// GenerateSummary returns the document's summary, generating and caching
// it when no valid cached copy exists. A cached summary is valid when its
// overview is non-empty.
func (s *GenerationService) GenerateSummary(ctx context.Context, fileID, requesterID string) (*SummaryResult, error) {
	file, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if file.Summary != nil && file.Summary.Overview != "" {
		return &SummaryResult{Summary: file.Summary, Cached: true}, nil
	}

	result, err, _ := s.group.Do("summary:"+fileID, func() (interface{}, error) {
		genCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		raw, err := s.generate(genCtx, file.FileURL, summaryPrompt, requesterID)
		if err != nil {
			return nil, err
		}

		summary, err := ai.ParseSummary(raw)
		if err != nil {
			// Never cache a half-generated summary. The raw text rides
			// along on the error for diagnosis.
			logger.Error("summary response failed to parse", "file_id", fileID)
			return nil, err
		}

		if err := s.files.SaveSummary(genCtx, fileID, summary); err != nil {
			return nil, err
		}

		logger.Info("summary generated", "file_id", fileID)
		return summary, nil
	})
	if err != nil {
		return nil, err
	}

	return &SummaryResult{Summary: result.(*models.Summary), Cached: false}, nil
}

// GenerateQuiz returns the document's quiz, generating and caching it when
// the cached copy does not hold exactly the full question count. Quota
// exhaustion is a soft outcome, not an error: the caller relays an empty
// quiz with a quota message.
func (s *GenerationService) GenerateQuiz(ctx context.Context, fileID, requesterID string) (*QuizResult, error) {
	file, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if len(file.Quiz) == models.QuizLength {
		return &QuizResult{Quiz: file.Quiz, Cached: true}, nil
	}

	result, err, _ := s.group.Do("quiz:"+fileID, func() (interface{}, error) {
		genCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		raw, err := s.generate(genCtx, file.FileURL, quizPrompt, requesterID)
		if err != nil {
			return nil, err
		}

		// Malformed output degrades to an empty quiz and is cached as
		// such, to be regenerated on a later request.
		quiz := ai.ParseQuiz(raw)

		if err := s.files.SaveQuiz(genCtx, fileID, quiz); err != nil {
			return nil, err
		}

		logger.Info("quiz generated", "file_id", fileID, "questions", len(quiz))
		return quiz, nil
	})
	if err != nil {
		if ai.IsQuotaExceeded(err) {
			logger.Warn("quiz generation hit quota limit", "file_id", fileID)
			return &QuizResult{Quiz: []models.QuizQuestion{}, QuotaExceeded: true}, nil
		}
		return nil, err
	}

	return &QuizResult{Quiz: result.([]models.QuizQuestion), Cached: false}, nil
}

// generate fetches the source bytes and runs the model call under the
// retry policy.
func (s *GenerationService) generate(ctx context.Context, fileURL, prompt, requesterID string) (string, error) {
	data, err := s.fetcher.Fetch(ctx, fileURL)
	if err != nil {
		return "", err
	}

	raw, err := ai.WithRetry(ctx, s.retry, func() (string, error) {
		return s.generator.Generate(ctx, prompt, data, pdfMIMEType)
	})
	if err != nil {
		return "", err
	}

	if s.recordUsage != nil {
		// Rough accounting: ~4 characters per token.
		s.recordUsage(ctx, requesterID, (len(prompt)+len(raw))/4)
	}

	return raw, nil
}

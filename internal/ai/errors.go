package ai

import (
	"errors"
	"fmt"
	"strings"
)

// GenerationError is an upstream model failure. StatusCode carries the
// HTTP-level status from the API when one was available, 0 otherwise.
type GenerationError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gemini: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// TransientOverload reports whether the failure is a temporary-unavailability
// signal from the model (503-class) and worth retrying after a delay.
func (e *GenerationError) TransientOverload() bool {
	return e.StatusCode == 503 || strings.Contains(e.Message, "503") ||
		strings.Contains(strings.ToLower(e.Message), "overloaded")
}

// QuotaExceeded reports whether the caller's usage allowance is exhausted.
// Not retryable; the quiz path surfaces this as a soft failure.
func (e *GenerationError) QuotaExceeded() bool {
	return e.StatusCode == 429 || strings.Contains(strings.ToLower(e.Message), "quota")
}

// InvalidResponseError means the model returned text that does not parse
// into the expected structure. RawText is kept for operator diagnosis.
type InvalidResponseError struct {
	RawText string
	Err     error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid model response: %v", e.Err)
}

func (e *InvalidResponseError) Unwrap() error {
	return e.Err
}

// IsTransientOverload classifies any error for the retry policy.
func IsTransientOverload(err error) bool {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.TransientOverload()
	}
	return false
}

// IsQuotaExceeded classifies any error as a quota-exhaustion signal.
func IsQuotaExceeded(err error) bool {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.QuotaExceeded()
	}
	return false
}

// IsInvalidResponse reports whether err is a malformed-output failure.
func IsInvalidResponse(err error) bool {
	var ie *InvalidResponseError
	return errors.As(err, &ie)
}

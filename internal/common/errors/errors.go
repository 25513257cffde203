// Package errors provides the structured error type shared by the run pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode identifies a failure class.
type ErrorCode string

const (
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"
	ErrCodeTeamNotFound  ErrorCode = "TEAM_NOT_FOUND"

	ErrCodeSourceDisabled    ErrorCode = "SOURCE_DISABLED"
	ErrCodeSourceFetchFailed ErrorCode = "SOURCE_FETCH_FAILED"

	ErrCodeAIRequestFailed     ErrorCode = "AI_REQUEST_FAILED"
	ErrCodeAITimeout           ErrorCode = "AI_TIMEOUT"
	ErrCodeAIResponseMalformed ErrorCode = "AI_RESPONSE_MALFORMED"

	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeSMTPSendFailed  ErrorCode = "SMTP_SEND_FAILED"
	ErrCodeEmailSendFailed ErrorCode = "EMAIL_SEND_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// ErrMalformedAIResponse is the sentinel matched by errors.Is for any
// model output that could not be read as a JSON list.
var ErrMalformedAIResponse = stderrors.New("malformed AI response")

// StandardError is a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// Is matches another *StandardError by code, and the malformed response
// sentinel for AI_RESPONSE_MALFORMED.
func (e *StandardError) Is(target error) bool {
	if target == ErrMalformedAIResponse {
		return e.Code == ErrCodeAIResponseMalformed
	}
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

func detailsOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 2. Error Constructors
// ==========================

func NewConfigInvalidError(details string) *StandardError {
	return newError(ErrCodeConfigInvalid, "Invalid configuration", details, false, nil)
}

func NewTeamNotFoundError(team string) *StandardError {
	return newError(ErrCodeTeamNotFound, "Team not configured", fmt.Sprintf("team: %s", team), false, nil)
}

func NewSourceDisabledError(source string) *StandardError {
	return newError(ErrCodeSourceDisabled, "Source disabled", fmt.Sprintf("source: %s", source), false, nil)
}

// NewSourceFetchFailedError wraps a reader failure. Fetch failures are not
// retried within a run.
func NewSourceFetchFailedError(source string, err error) *StandardError {
	return newError(ErrCodeSourceFetchFailed,
		fmt.Sprintf("Failed to fetch %s data", source), detailsOf(err), false, err).
		WithMetadata("source", source)
}

func NewAIRequestFailedError(purpose string, err error) *StandardError {
	return newError(ErrCodeAIRequestFailed,
		fmt.Sprintf("AI request failed: %s", purpose), detailsOf(err), true, err)
}

func NewAITimeoutError(purpose string, err error) *StandardError {
	return newError(ErrCodeAITimeout,
		fmt.Sprintf("AI request timed out: %s", purpose), detailsOf(err), true, err)
}

// NewMalformedAIResponseError reports model output that is not a JSON list.
// The raw text is kept in metadata, truncated.
func NewMalformedAIResponseError(details, raw string) *StandardError {
	if len(raw) > 200 {
		raw = raw[:200]
	}
	return newError(ErrCodeAIResponseMalformed, "Malformed AI response", details, false, ErrMalformedAIResponse).
		WithMetadata("raw", raw)
}

func NewValidationError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Validation failed", details, false, nil)
}

func NewSMTPSendFailedError(attempts int, err error) *StandardError {
	return newError(ErrCodeSMTPSendFailed, "SMTP send failed", detailsOf(err), true, err).
		WithMetadata("attempts", attempts)
}

func NewEmailSendFailedError(provider string, attempts int, err error) *StandardError {
	return newError(ErrCodeEmailSendFailed,
		fmt.Sprintf("Email delivery via %s failed", provider), detailsOf(err), false, err).
		WithMetadata("attempts", attempts)
}

// ==========================
// 3. Utility Functions
// ==========================

// ExtractCode returns the code of the first *StandardError in err's chain,
// or INTERNAL_ERROR.
func ExtractCode(err error) ErrorCode {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// IsRetryableErrorCode reports whether a failure of this class may succeed
// on a later attempt.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeAIRequestFailed, ErrCodeAITimeout, ErrCodeSMTPSendFailed:
		return true
	default:
		return false
	}
}

// GetErrorCategory groups codes for log aggregation.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "CONFIG") || strings.HasPrefix(codeStr, "TEAM"):
		return "CONFIG"
	case strings.HasPrefix(codeStr, "SOURCE"):
		return "SOURCE"
	case strings.HasPrefix(codeStr, "AI_"):
		return "AI"
	case strings.Contains(codeStr, "SEND"):
		return "DELIVERY"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

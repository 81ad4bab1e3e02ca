// Package errors provides the standardized error model shared by workers,
// acquisition and the qualitative stage, and its mapping onto BPMN errors.
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

// ErrorCode is a stable, machine-readable error identifier. BPMN error codes
// use the same strings.
type ErrorCode string

const (
	ErrCodeProfileNotFound     ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeProfileFetchFailed  ErrorCode = "PROFILE_FETCH_FAILED"
	ErrCodeProfileDecodeFailed ErrorCode = "PROFILE_DECODE_FAILED"

	ErrCodeValidationFailed    ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidFilterFormat ErrorCode = "INVALID_FILTER_FORMAT"

	ErrCodeScoringFailed ErrorCode = "SCORING_FAILED"
	ErrCodeRankingFailed ErrorCode = "RANKING_FAILED"

	ErrCodeQualitativeUnavailable ErrorCode = "QUALITATIVE_UNAVAILABLE"
	ErrCodeQualitativeTimeout     ErrorCode = "QUALITATIVE_TIMEOUT"
	ErrCodeQualitativeFailed      ErrorCode = "QUALITATIVE_FAILED"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout     ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound     ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeCacheFailed              ErrorCode = "CACHE_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *StandardError) Unwrap() error { return e.cause }

// WithMetadata attaches a key/value and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// AsStandard finds a StandardError anywhere in err's chain.
func AsStandard(err error) (*StandardError, bool) {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// CodeOf returns the code of the first StandardError in err's chain, or
// INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	if se, ok := AsStandard(err); ok {
		return se.Code
	}
	return ErrCodeInternal
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func detailsOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewProfileNotFoundError is returned when a subject, brand or campaign does
// not exist upstream.
func NewProfileNotFoundError(kind, id string, cause error) *StandardError {
	return newError(ErrCodeProfileNotFound,
		fmt.Sprintf("%s profile not found", kind),
		fmt.Sprintf("%s id %s", kind, id), false, cause).
		WithMetadata("kind", kind).
		WithMetadata("id", id)
}

// NewProfileFetchFailedError wraps a transport failure talking to the profile store.
func NewProfileFetchFailedError(kind string, err error) *StandardError {
	return newError(ErrCodeProfileFetchFailed,
		fmt.Sprintf("Failed to fetch %s profile", kind), detailsOf(err), true, err)
}

func NewProfileDecodeFailedError(kind string, err error) *StandardError {
	return newError(ErrCodeProfileDecodeFailed,
		fmt.Sprintf("Failed to decode %s profile", kind), detailsOf(err), false, err)
}

func NewValidationFailedError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Input validation failed", details, false, nil)
}

func NewInvalidFilterFormatError(details string) *StandardError {
	return newError(ErrCodeInvalidFilterFormat, "Invalid filter format", details, false, nil)
}

func NewScoringFailedError(err error) *StandardError {
	return newError(ErrCodeScoringFailed, "Match scoring failed", detailsOf(err), false, err)
}

func NewRankingFailedError(err error) *StandardError {
	return newError(ErrCodeRankingFailed, "Candidate ranking failed", detailsOf(err), false, err)
}

// NewQualitativeUnavailableError marks the qualitative stage as not configured.
func NewQualitativeUnavailableError(details string) *StandardError {
	return newError(ErrCodeQualitativeUnavailable, "Qualitative assessment unavailable", details, false, nil)
}

func NewQualitativeTimeoutError(err error) *StandardError {
	return newError(ErrCodeQualitativeTimeout, "Qualitative assessment timed out", detailsOf(err), true, err)
}

func NewQualitativeFailedError(err error) *StandardError {
	return newError(ErrCodeQualitativeFailed, "Qualitative assessment failed", detailsOf(err), true, err)
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed,
		fmt.Sprintf("Search query against %s failed", index), detailsOf(err), true, err)
}

func NewSearchTimeoutError(index string, err error) *StandardError {
	return newError(ErrCodeSearchTimeout,
		fmt.Sprintf("Search query against %s timed out", index), detailsOf(err), true, err)
}

func NewIndexNotFoundError(index string) *StandardError {
	return newError(ErrCodeIndexNotFound, "Search index not found", index, false, nil)
}

func NewCacheFailedError(op string, err error) *StandardError {
	return newError(ErrCodeCacheFailed,
		fmt.Sprintf("Cache %s failed", op), detailsOf(err), true, err)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection failed", detailsOf(err), true, err)
}

func NewQueryExecutionFailedError(query string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed,
		fmt.Sprintf("Query %s failed", query), detailsOf(err), true, err)
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return newError("BUSINESS_RULE_VIOLATION", message, details, false, nil)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError("EXTERNAL_SERVICE_ERROR",
		fmt.Sprintf("External service '%s' error", service), detailsOf(err), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError("TIMEOUT_ERROR",
		fmt.Sprintf("Service '%s' timeout", service), detailsOf(err), true, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal codes onto the BPMN codes modelled in the
// matching processes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeProfileNotFound:          "PROFILE_NOT_FOUND",
	ErrCodeProfileFetchFailed:       "PROFILE_FETCH_FAILED",
	ErrCodeProfileDecodeFailed:      "PROFILE_DECODE_FAILED",
	ErrCodeValidationFailed:         "VALIDATION_FAILED",
	ErrCodeInvalidFilterFormat:      "INVALID_FILTER_FORMAT",
	ErrCodeScoringFailed:            "SCORING_FAILED",
	ErrCodeRankingFailed:            "RANKING_FAILED",
	ErrCodeQualitativeUnavailable:   "QUALITATIVE_UNAVAILABLE",
	ErrCodeQualitativeTimeout:       "QUALITATIVE_TIMEOUT",
	ErrCodeQualitativeFailed:        "QUALITATIVE_FAILED",
	ErrCodeSearchQueryFailed:        "SEARCH_QUERY_FAILED",
	ErrCodeSearchTimeout:            "SEARCH_TIMEOUT",
	ErrCodeIndexNotFound:            "INDEX_NOT_FOUND",
	ErrCodeCacheFailed:              "CACHE_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:     "QUERY_EXECUTION_FAILED",
}

// GetRetryCount returns the number of job retries a code is worth.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProfileFetchFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeCacheFailed,
		ErrCodeQualitativeFailed:
		return 3

	case ErrCodeSearchTimeout:
		return 2

	case ErrCodeQualitativeTimeout:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for dashboards and logs.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PROFILE"):
		return "ACQUISITION"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY_EXECUTION"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "QUALITATIVE"):
		return "AI"
	case strings.Contains(codeStr, "SCORING") || strings.Contains(codeStr, "RANKING"):
		return "MATCHING"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

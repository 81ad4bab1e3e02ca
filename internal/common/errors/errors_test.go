// internal/common/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = stderrors.New("connection refused")

func TestConstructors(t *testing.T) {
	tests := []struct {
		name      string
		err       *StandardError
		code      ErrorCode
		retryable bool
	}{
		{"profile not found", NewProfileNotFoundError("athlete", "a-1", nil), ErrCodeProfileNotFound, false},
		{"profile fetch", NewProfileFetchFailedError("brand", errUpstream), ErrCodeProfileFetchFailed, true},
		{"profile decode", NewProfileDecodeFailedError("brand", errUpstream), ErrCodeProfileDecodeFailed, false},
		{"validation", NewValidationFailedError("athleteId is required"), ErrCodeValidationFailed, false},
		{"filter format", NewInvalidFilterFormatError("bad sport"), ErrCodeInvalidFilterFormat, false},
		{"qualitative timeout", NewQualitativeTimeoutError(errUpstream), ErrCodeQualitativeTimeout, true},
		{"search query", NewSearchQueryFailedError("athletes", errUpstream), ErrCodeSearchQueryFailed, true},
		{"index missing", NewIndexNotFoundError("athletes"), ErrCodeIndexNotFound, false},
		{"cache", NewCacheFailedError("get", errUpstream), ErrCodeCacheFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.False(t, tt.err.Timestamp.IsZero())
			assert.Contains(t, tt.err.Error(), string(tt.code))
		})
	}
}

func TestStandardError_Chain(t *testing.T) {
	err := fmt.Errorf("load athlete: %w", NewProfileFetchFailedError("athlete", errUpstream))

	assert.ErrorIs(t, err, errUpstream)
	assert.Equal(t, ErrCodeProfileFetchFailed, CodeOf(err))
	assert.Equal(t, ErrCodeInternal, CodeOf(errUpstream))

	se, ok := AsStandard(err)
	require.True(t, ok)
	assert.Equal(t, "connection refused", se.Details)
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("retryable keeps retry budget", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewProfileFetchFailedError("athlete", errUpstream))

		assert.Equal(t, "PROFILE_FETCH_FAILED", bpmn.Code)
		assert.Equal(t, 3, bpmn.Retries)
		assert.Equal(t, "PROFILE_FETCH_FAILED", bpmn.ErrorVariables["originalErrorCode"])
	})

	t.Run("metadata becomes error variables", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewProfileNotFoundError("brand", "b-9", nil))

		assert.Equal(t, 0, bpmn.Retries)
		vars := bpmn.ToErrorVariables()
		assert.Equal(t, "b-9", vars["id"])
		assert.Equal(t, "brand", vars["kind"])
		assert.Equal(t, false, vars["retryable"])
	})

	t.Run("non retryable error zeroes retries", func(t *testing.T) {
		se := NewQualitativeFailedError(errUpstream)
		se.Retryable = false

		assert.Equal(t, 0, ConvertToBPMNError(se).Retries)
	})

	t.Run("unmapped code passes through", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewBusinessRuleError("nope", ""))
		assert.Equal(t, "BUSINESS_RULE_VIOLATION", bpmn.Code)
	})
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "ACQUISITION", GetErrorCategory(ErrCodeProfileNotFound))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeIndexNotFound))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryExecutionFailed))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeQualitativeTimeout))
	assert.Equal(t, "MATCHING", GetErrorCategory(ErrCodeRankingFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidFilterFormat))
	assert.Equal(t, "OTHER", GetErrorCategory("SOMETHING_ELSE"))

	assert.True(t, IsRetryableErrorCode(ErrCodeSearchTimeout))
	assert.False(t, IsRetryableErrorCode(ErrCodeValidationFailed))
}

func TestRemainingRetries(t *testing.T) {
	job := func(retries int32) entities.Job {
		return entities.Job{ActivatedJob: &pb.ActivatedJob{Retries: retries}}
	}

	assert.Equal(t, int32(2), remainingRetries(job(3), 3))
	assert.Equal(t, int32(1), remainingRetries(job(5), 1))
	assert.Equal(t, int32(0), remainingRetries(job(0), 3))
}

func TestNormalizeError(t *testing.T) {
	se := normalizeError(errUpstream)
	assert.Equal(t, ErrCodeInternal, se.Code)
	assert.ErrorIs(t, se, errUpstream)

	wrapped := fmt.Errorf("ctx: %w", NewScoringFailedError(errUpstream))
	assert.Equal(t, ErrCodeScoringFailed, normalizeError(wrapped).Code)
}

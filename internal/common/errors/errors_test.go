package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetRetryCount(t *testing.T) {
	assert.Equal(t, 3, GetRetryCount(ErrCodeDatabaseInsertFailed))
	assert.Equal(t, 3, GetRetryCount(ErrCodeFrontendSyncFailed))
	assert.Equal(t, 3, GetRetryCount(ErrCodeNotificationSendFailed))
	assert.Equal(t, 2, GetRetryCount(ErrCodeQueryTimeout))
	assert.Equal(t, 2, GetRetryCount(ErrCodeSearchTimeout))
	assert.Equal(t, 0, GetRetryCount(ErrCodeDuplicateApplication))
	assert.Equal(t, 0, GetRetryCount(ErrCodeApplicationValidationFailed))
	assert.Equal(t, 0, GetRetryCount(ErrCodeLeaseParseFailed))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeFrontendSyncFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeFrontendAuthFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeDuplicateApplication))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "LEASE", GetErrorCategory(ErrCodeLeaseFileNotFound))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryTimeout))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeSearchIndexFailed))
	assert.Equal(t, "FRONTEND", GetErrorCategory(ErrCodeFrontendSyncFailed))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeDuplicateApplication))
	assert.Equal(t, "OTHER", GetErrorCategory("SOMETHING_ELSE"))
}

func TestToHTTPError_KnownCode(t *testing.T) {
	stdErr := NewDuplicateApplicationError("applicant-001")

	status, body := ToHTTPError(stdErr)

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, string(ErrCodeDuplicateApplication), body.Code)
	assert.False(t, body.Retryable)
	assert.NotEmpty(t, body.Timestamp)
}

func TestToHTTPError_PlainError(t *testing.T) {
	status, body := ToHTTPError(fmt.Errorf("boom"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.Equal(t, "boom", body.Details)
}

func TestToHTTPError_WrappedStandardError(t *testing.T) {
	wrapped := fmt.Errorf("pipeline: %w", NewFrontendSyncFailedError("http://frontend.local", fmt.Errorf("refused")))

	status, body := ToHTTPError(wrapped)

	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, string(ErrCodeFrontendSyncFailed), body.Code)
	assert.True(t, body.Retryable)
}

func TestFrontendSyncFailedError_Message(t *testing.T) {
	err := NewFrontendSyncFailedError("http://frontend.local/api/applications/internal", fmt.Errorf("refused"))

	assert.Contains(t, err.Message, "Connection failed to http://frontend.local/api/applications/internal")
	assert.Equal(t, "http://frontend.local/api/applications/internal", err.Metadata["url"])
}

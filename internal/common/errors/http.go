package errors

import (
	"errors"
	"net/http"
	"time"
)

// HTTPStatusMapping maps internal error codes to HTTP response statuses.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeLeaseFileNotFound:           http.StatusNotFound,
	ErrCodeLeaseParseFailed:            http.StatusUnprocessableEntity,
	ErrCodeApplicationValidationFailed: http.StatusBadRequest,
	ErrCodeDuplicateApplication:        http.StatusConflict,
	ErrCodeApplicationNotFound:         http.StatusNotFound,
	ErrCodeDatabaseConnectionFailed:    http.StatusServiceUnavailable,
	ErrCodeDatabaseInsertFailed:        http.StatusServiceUnavailable,
	ErrCodeQueryExecutionFailed:        http.StatusServiceUnavailable,
	ErrCodeQueryTimeout:                http.StatusGatewayTimeout,
	ErrCodeSearchIndexFailed:           http.StatusServiceUnavailable,
	ErrCodeSearchQueryFailed:           http.StatusServiceUnavailable,
	ErrCodeSearchTimeout:               http.StatusGatewayTimeout,
	ErrCodeFrontendSyncFailed:          http.StatusBadGateway,
	ErrCodeFrontendAuthFailed:          http.StatusBadGateway,
	ErrCodeNotificationSendFailed:      http.StatusServiceUnavailable,
}

// HTTPError is the JSON error body returned to API clients.
type HTTPError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable"`
	Timestamp string `json:"timestamp"`
}

// ToHTTPError normalizes any error into a status code and response body.
func ToHTTPError(err error) (int, *HTTPError) {
	stdErr := Normalize(err)

	status, exists := HTTPStatusMapping[stdErr.Code]
	if !exists {
		status = http.StatusInternalServerError
	}

	return status, &HTTPError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Timestamp: stdErr.Timestamp.Format(time.RFC3339),
	}
}

// Normalize ensures we always have a StandardError to work with.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

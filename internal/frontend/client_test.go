package frontend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	stderrors "lease-backend/internal/common/errors"
	"lease-backend/internal/common/logger"
	"lease-backend/internal/models"
)

func testApplication() *models.Application {
	return &models.Application{
		ID:             "app-001",
		ApplicantID:    "applicant-001",
		ListingID:      "listing-001",
		ReadinessScore: 82,
		Priority:       models.PriorityHigh,
		Status:         models.StatusSubmitted,
	}
}

func newTestClient(origin string) *Client {
	return NewClient(origin, "test-token", 2*time.Second, 2, logger.NewNoOpLogger(),
		WithInitialDelay(time.Millisecond))
}

func TestSyncApplication_Success(t *testing.T) {
	var gotAuth, gotContentType, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.SyncApplication(context.Background(), testApplication())

	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, InternalApplicationsPath, gotPath)
}

func TestSyncApplication_AuthRejected(t *testing.T) {
	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.SyncApplication(context.Background(), testApplication())

	require.Error(t, err)
	stdErr := stderrors.Normalize(err)
	assert.Equal(t, stderrors.ErrCodeFrontendAuthFailed, stdErr.Code)
	// Token mismatch is not retried.
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSyncApplication_ConflictTreatedAsSynced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.SyncApplication(context.Background(), testApplication())

	assert.NoError(t, err)
}

func TestSyncApplication_RetriesServerErrors(t *testing.T) {
	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.SyncApplication(context.Background(), testApplication())

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSyncApplication_UnreachableFrontend(t *testing.T) {
	// Reserve a port, then close it so the connection is refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	origin := srv.URL
	srv.Close()

	client := newTestClient(origin)
	err := client.SyncApplication(context.Background(), testApplication())

	require.Error(t, err)
	stdErr := stderrors.Normalize(err)
	assert.Equal(t, stderrors.ErrCodeFrontendSyncFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestSyncApplication_ConnectionWarningNamesURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	origin := srv.URL
	srv.Close()

	core, logs := observer.New(zap.WarnLevel)
	client := NewClient(origin, "test-token", 2*time.Second, 0,
		logger.NewZapAdapter(zap.New(core)))

	err := client.SyncApplication(context.Background(), testApplication())
	require.Error(t, err)

	entries := logs.All()
	require.NotEmpty(t, entries)
	assert.Equal(t,
		"Error saving application to database: Connection failed to "+origin+InternalApplicationsPath,
		entries[0].Message)
}

func TestSyncApplication_BadRequestNotRetried(t *testing.T) {
	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.SyncApplication(context.Background(), testApplication())

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestURL_TrimsTrailingSlash(t *testing.T) {
	client := NewClient("http://frontend.local/", "tok", time.Second, 1, logger.NewNoOpLogger())
	assert.Equal(t, "http://frontend.local"+InternalApplicationsPath, client.URL())
}

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "lease-backend/internal/common/errors"
	"lease-backend/internal/common/logger"
	"lease-backend/internal/models"
)

func testApplication() *models.Application {
	return &models.Application{
		ApplicantID: "applicant-001",
		ListingID:   "listing-001",
		ApplicationData: map[string]interface{}{
			"personalInfo": map[string]interface{}{
				"name":  "John Doe",
				"email": "john@example.com",
			},
		},
		ReadinessScore: 85,
		Priority:       models.PriorityHigh,
	}
}

func TestCreate_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("applicant-001", "listing-001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectExec(`INSERT INTO applications`).
		WithArgs(
			sqlmock.AnyArg(), // application ID (UUID)
			"applicant-001",
			"listing-001",
			sqlmock.AnyArg(), // application data JSON
			sqlmock.AnyArg(), // lease details JSON
			85,
			models.PriorityHigh,
			models.StatusSubmitted,
			models.SyncPending,
			sqlmock.AnyArg(), // created_at / updated_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(
			"application_created",
			"application",
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := NewApplicationStore(db, logger.NewTestLogger(t))

	app := testApplication()
	err = store.Create(context.Background(), app)

	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, models.StatusSubmitted, app.Status)
	assert.Equal(t, models.SyncPending, app.SyncStatus)

	_, err = time.Parse(time.RFC3339, app.CreatedAt)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("applicant-001", "listing-001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	store := NewApplicationStore(db, logger.NewTestLogger(t))

	err = store.Create(context.Background(), testApplication())

	require.Error(t, err)
	stdErr := stderrors.Normalize(err)
	assert.Equal(t, stderrors.ErrCodeDuplicateApplication, stdErr.Code)
	assert.False(t, stdErr.Retryable)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_InsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("applicant-001", "listing-001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectExec(`INSERT INTO applications`).
		WillReturnError(errors.New("deadlock detected"))

	store := NewApplicationStore(db, logger.NewTestLogger(t))

	err = store.Create(context.Background(), testApplication())

	require.Error(t, err)
	stdErr := stderrors.Normalize(err)
	assert.Equal(t, stderrors.ErrCodeDatabaseInsertFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"id", "applicant_id", "listing_id", "application_data", "lease_details",
		"readiness_score", "priority", "status", "sync_status", "created_at", "updated_at",
	}).AddRow(
		"app-001", "applicant-001", "listing-001",
		[]byte(`{"personalInfo":{"name":"John Doe"}}`),
		[]byte(`{"rentAmount":"$1,500.00","confidence":0.75}`),
		85, models.PriorityHigh, models.StatusSubmitted, models.SyncDone,
		"2026-08-01T10:00:00Z", "2026-08-01T10:00:05Z",
	)

	mock.ExpectQuery(`SELECT id, applicant_id`).
		WithArgs("app-001").
		WillReturnRows(rows)

	store := NewApplicationStore(db, logger.NewTestLogger(t))

	app, err := store.GetByID(context.Background(), "app-001")

	require.NoError(t, err)
	assert.Equal(t, "app-001", app.ID)
	assert.Equal(t, 85, app.ReadinessScore)
	require.NotNil(t, app.LeaseDetails)
	assert.Equal(t, "$1,500.00", app.LeaseDetails.RentAmount)
	assert.Equal(t, 0.75, app.LeaseDetails.Confidence)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, applicant_id`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	store := NewApplicationStore(db, logger.NewTestLogger(t))

	app, err := store.GetByID(context.Background(), "missing")

	require.Error(t, err)
	assert.Nil(t, app)
	stdErr := stderrors.Normalize(err)
	assert.Equal(t, stderrors.ErrCodeApplicationNotFound, stdErr.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSyncStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE applications SET sync_status`).
		WithArgs(models.SyncDone, sqlmock.AnyArg(), "app-001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewApplicationStore(db, logger.NewTestLogger(t))

	err = store.UpdateSyncStatus(context.Background(), "app-001", models.SyncDone)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSyncStatus_UnknownApplication(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE applications SET sync_status`).
		WithArgs(models.SyncFailed, sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewApplicationStore(db, logger.NewTestLogger(t))

	err = store.UpdateSyncStatus(context.Background(), "missing", models.SyncFailed)

	require.Error(t, err)
	stdErr := stderrors.Normalize(err)
	assert.Equal(t, stderrors.ErrCodeApplicationNotFound, stdErr.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// Package store persists application records and their audit trail in
// PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"lease-backend/internal/common/errors"
	"lease-backend/internal/common/logger"
	"lease-backend/internal/models"

	"github.com/google/uuid"
)

type ApplicationStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewApplicationStore(db *sql.DB, log logger.Logger) *ApplicationStore {
	return &ApplicationStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "application-store"}),
	}
}

// Create inserts a new application record, assigning its id and timestamps.
// A second application for the same applicant and listing is rejected.
func (s *ApplicationStore) Create(ctx context.Context, app *models.Application) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM applications
			WHERE applicant_id = $1 AND listing_id = $2
		)`, app.ApplicantID, app.ListingID).Scan(&exists)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(fmt.Errorf("duplicate check failed: %w", err))
	}
	if exists {
		return errors.NewDuplicateApplicationError(
			fmt.Sprintf("applicant %s, listing %s", app.ApplicantID, app.ListingID))
	}

	app.ID = uuid.New().String()
	now := time.Now().UTC().Format(time.RFC3339)
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = models.StatusSubmitted
	}
	if app.SyncStatus == "" {
		app.SyncStatus = models.SyncPending
	}

	applicationDataJSON, err := json.Marshal(app.ApplicationData)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(fmt.Errorf("marshal application data: %w", err))
	}

	var leaseDetailsJSON []byte
	if app.LeaseDetails != nil {
		leaseDetailsJSON, err = json.Marshal(app.LeaseDetails)
		if err != nil {
			return errors.NewDatabaseInsertFailedError(fmt.Errorf("marshal lease details: %w", err))
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications (
			id, applicant_id, listing_id, application_data, lease_details,
			readiness_score, priority, status, sync_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		app.ID,
		app.ApplicantID,
		app.ListingID,
		applicationDataJSON,
		leaseDetailsJSON,
		app.ReadinessScore,
		app.Priority,
		app.Status,
		app.SyncStatus,
		now,
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(fmt.Errorf("insert failed: %w", err))
	}

	s.writeAuditLog(ctx, "application_created", app.ID, map[string]interface{}{
		"applicantId":    app.ApplicantID,
		"listingId":      app.ListingID,
		"readinessScore": app.ReadinessScore,
		"priority":       app.Priority,
	}, now)

	s.logger.Info("application record created", map[string]interface{}{
		"applicationId":  app.ID,
		"applicantId":    app.ApplicantID,
		"listingId":      app.ListingID,
		"readinessScore": app.ReadinessScore,
		"priority":       app.Priority,
	})

	return nil
}

// GetByID loads a single application.
func (s *ApplicationStore) GetByID(ctx context.Context, id string) (*models.Application, error) {
	var (
		app                 models.Application
		applicationDataJSON []byte
		leaseDetailsJSON    []byte
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, applicant_id, listing_id, application_data, lease_details,
		       readiness_score, priority, status, sync_status, created_at, updated_at
		FROM applications WHERE id = $1`, id).Scan(
		&app.ID,
		&app.ApplicantID,
		&app.ListingID,
		&applicationDataJSON,
		&leaseDetailsJSON,
		&app.ReadinessScore,
		&app.Priority,
		&app.Status,
		&app.SyncStatus,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewApplicationNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get_application", err)
	}

	if len(applicationDataJSON) > 0 {
		if err := json.Unmarshal(applicationDataJSON, &app.ApplicationData); err != nil {
			return nil, errors.NewQueryExecutionFailedError("get_application", err)
		}
	}
	if len(leaseDetailsJSON) > 0 {
		var details models.LeaseDetails
		if err := json.Unmarshal(leaseDetailsJSON, &details); err != nil {
			return nil, errors.NewQueryExecutionFailedError("get_application", err)
		}
		app.LeaseDetails = &details
	}

	return &app, nil
}

// UpdateSyncStatus records the outcome of the frontend sync attempt.
func (s *ApplicationStore) UpdateSyncStatus(ctx context.Context, id, syncStatus string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications SET sync_status = $1, updated_at = $2 WHERE id = $3`,
		syncStatus, now, id)
	if err != nil {
		return errors.NewQueryExecutionFailedError("update_sync_status", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return errors.NewApplicationNotFoundError(id)
	}
	return nil
}

// writeAuditLog records an audit event. Failures are logged, never fatal.
func (s *ApplicationStore) writeAuditLog(ctx context.Context, eventType, resourceID string, details map[string]interface{}, createdAt string) {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		s.logger.Warn("failed to marshal audit log details", map[string]interface{}{
			"error": err,
		})
		detailsJSON = []byte("{}")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		eventType,
		"application",
		resourceID,
		detailsJSON,
		createdAt,
	)
	if err != nil {
		s.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err,
			"applicationId": resourceID,
		})
	}
}

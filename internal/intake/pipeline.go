// Package intake orchestrates the application submission pipeline:
// validation, scoring, persistence, search indexing, frontend sync, and
// landlord notification.
package intake

import (
	"context"
	"encoding/json"
	"time"

	"lease-backend/internal/common/errors"
	"lease-backend/internal/common/logger"
	"lease-backend/internal/common/metrics"
	"lease-backend/internal/models"
)

// Submission is the decoded application submission payload.
type Submission struct {
	ApplicantID     string                 `json:"applicantId"`
	ListingID       string                 `json:"listingId"`
	LeaseFilePath   string                 `json:"leaseFilePath,omitempty"`
	ApplicationData map[string]interface{} `json:"applicationData"`
}

type Store interface {
	Create(ctx context.Context, app *models.Application) error
	UpdateSyncStatus(ctx context.Context, id, syncStatus string) error
}

type Indexer interface {
	IndexApplication(ctx context.Context, app *models.Application) error
}

type Syncer interface {
	SyncApplication(ctx context.Context, app *models.Application) error
}

type Notifier interface {
	NotifyNewApplication(ctx context.Context, app *models.Application) (*models.Notification, error)
}

type IdempotencyCache interface {
	MarkSubmitted(ctx context.Context, applicantID, listingID string, ttl time.Duration) (bool, error)
	ClearSubmitted(ctx context.Context, applicantID, listingID string) error
}

type LeaseProcessor interface {
	Process(ctx context.Context, path string) (*models.LeaseDetails, error)
}

type Pipeline struct {
	store          Store
	index          Indexer
	syncer         Syncer
	notifier       Notifier
	cache          IdempotencyCache
	lease          LeaseProcessor
	logger         logger.Logger
	idempotencyTTL time.Duration
}

func NewPipeline(
	store Store,
	index Indexer,
	syncer Syncer,
	notifier Notifier,
	cache IdempotencyCache,
	lease LeaseProcessor,
	log logger.Logger,
	idempotencyTTL time.Duration,
) *Pipeline {
	return &Pipeline{
		store:          store,
		index:          index,
		syncer:         syncer,
		notifier:       notifier,
		cache:          cache,
		lease:          lease,
		logger:         log.WithFields(map[string]interface{}{"component": "intake-pipeline"}),
		idempotencyTTL: idempotencyTTL,
	}
}

// Submit runs the full intake pipeline over a raw submission payload.
// Persistence failures abort the request; indexing, frontend sync, and
// notifications are best-effort and only logged.
func (p *Pipeline) Submit(ctx context.Context, payload map[string]interface{}) (*models.Application, error) {
	if err := ValidateSubmission(payload); err != nil {
		metrics.ApplicationsRejected.WithLabelValues(string(errors.ErrCodeApplicationValidationFailed)).Inc()
		return nil, err
	}

	sub, err := decodeSubmission(payload)
	if err != nil {
		metrics.ApplicationsRejected.WithLabelValues(string(errors.ErrCodeApplicationValidationFailed)).Inc()
		return nil, errors.NewApplicationValidationFailedError(err.Error())
	}

	fresh, err := p.cache.MarkSubmitted(ctx, sub.ApplicantID, sub.ListingID, p.idempotencyTTL)
	if err != nil {
		// Redis being down must not block intake; the store still dedups.
		p.logger.Warn("idempotency marker unavailable", map[string]interface{}{
			"applicantId": sub.ApplicantID,
			"error":       err.Error(),
		})
	} else if !fresh {
		metrics.ApplicationsRejected.WithLabelValues(string(errors.ErrCodeDuplicateApplication)).Inc()
		return nil, errors.NewDuplicateApplicationError(
			sub.ApplicantID + "/" + sub.ListingID)
	}

	app := &models.Application{
		ApplicantID:     sub.ApplicantID,
		ListingID:       sub.ListingID,
		ApplicationData: sub.ApplicationData,
	}

	if sub.LeaseFilePath != "" {
		details, err := p.lease.Process(ctx, sub.LeaseFilePath)
		if err != nil {
			p.logger.Warn("lease extraction skipped", map[string]interface{}{
				"applicantId":   sub.ApplicantID,
				"leaseFilePath": sub.LeaseFilePath,
				"error":         err.Error(),
			})
		} else {
			app.LeaseDetails = details
		}
	}

	app.ReadinessScore = CalculateReadinessScore(sub.ApplicationData)
	app.Priority = DeterminePriority(app.ReadinessScore)

	if err := p.store.Create(ctx, app); err != nil {
		stdErr := errors.Normalize(err)
		metrics.ApplicationsRejected.WithLabelValues(string(stdErr.Code)).Inc()
		if clearErr := p.cache.ClearSubmitted(ctx, sub.ApplicantID, sub.ListingID); clearErr != nil {
			p.logger.Warn("failed to clear idempotency marker", map[string]interface{}{
				"applicantId": sub.ApplicantID,
				"error":       clearErr.Error(),
			})
		}
		return nil, err
	}

	metrics.ApplicationsSubmitted.WithLabelValues(app.Priority).Inc()

	if err := p.index.IndexApplication(ctx, app); err != nil {
		p.logger.Warn("application indexing failed", map[string]interface{}{
			"applicationId": app.ID,
			"error":         err.Error(),
		})
	}

	p.syncToFrontend(ctx, app)

	if _, err := p.notifier.NotifyNewApplication(ctx, app); err != nil {
		p.logger.Warn("landlord notification failed", map[string]interface{}{
			"applicationId": app.ID,
			"error":         err.Error(),
		})
	}

	return app, nil
}

// syncToFrontend attempts the internal-API sync and records the outcome on
// the application. A failed sync is surfaced only through logs and
// sync_status; the submission itself already succeeded.
func (p *Pipeline) syncToFrontend(ctx context.Context, app *models.Application) {
	if err := p.syncer.SyncApplication(ctx, app); err != nil {
		app.SyncStatus = models.SyncFailed
		p.logger.Warn("frontend sync failed", map[string]interface{}{
			"applicationId": app.ID,
			"error":         err.Error(),
		})
	} else {
		app.SyncStatus = models.SyncDone
	}

	if err := p.store.UpdateSyncStatus(ctx, app.ID, app.SyncStatus); err != nil {
		p.logger.Warn("failed to record sync status", map[string]interface{}{
			"applicationId": app.ID,
			"syncStatus":    app.SyncStatus,
			"error":         err.Error(),
		})
	}
}

func decodeSubmission(payload map[string]interface{}) (*Submission, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var sub Submission
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

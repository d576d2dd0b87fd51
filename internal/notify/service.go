// Package notify dispatches landlord and applicant notifications over
// SES email and SNS SMS.
package notify

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"

	"lease-backend/internal/common/errors"
	"lease-backend/internal/common/logger"
	"lease-backend/internal/common/metrics"
	"lease-backend/internal/models"
)

// Interfaces over the AWS clients so tests can mock them.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
}

type Service struct {
	config    Config
	db        *sql.DB
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
	templates map[string]Template
}

func NewService(cfg Config, db *sql.DB, sesClient SESService, snsClient SNSService, log logger.Logger) *Service {
	return &Service{
		config:    cfg,
		db:        db,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
		sesClient: sesClient,
		snsClient: snsClient,
		templates: defaultTemplates(),
	}
}

// NotifyNewApplication tells the listing's landlord a new application came in.
// SMS goes out only for high-priority applications.
func (s *Service) NotifyNewApplication(ctx context.Context, app *models.Application) (*models.Notification, error) {
	email, phone, landlordID, err := s.getLandlordContact(ctx, app.ListingID)
	if err != nil {
		s.logger.Warn("landlord not found for listing", map[string]interface{}{
			"listingId": app.ListingID,
			"error":     err.Error(),
		})
		return s.record(app, landlordID, models.NotificationDisabled, ""), nil
	}

	tmpl, exists := s.templates[models.NotificationNewApplication]
	if !exists {
		return nil, fmt.Errorf("template not found for type: %s", models.NotificationNewApplication)
	}

	data := map[string]interface{}{
		"applicationId":  app.ID,
		"listingId":      app.ListingID,
		"priority":       app.Priority,
		"readinessScore": app.ReadinessScore,
	}
	subject := renderTemplate(tmpl.Subject, data)
	body := renderTemplate(tmpl.Body, data)

	emailSent := false
	smsSent := false

	if s.config.EmailEnabled && email != "" {
		if err := s.sendEmail(ctx, email, subject, body); err != nil {
			metrics.NotificationsSent.WithLabelValues(models.ChannelEmail, models.NotificationFailed).Inc()
			s.logger.Error("email send failed", map[string]interface{}{
				"error": err,
				"email": email,
			})
			return s.record(app, landlordID, models.NotificationFailed, models.ChannelEmail),
				errors.NewNotificationSendFailedError(models.ChannelEmail, err)
		}
		metrics.NotificationsSent.WithLabelValues(models.ChannelEmail, models.NotificationSent).Inc()
		emailSent = true
	}

	if s.config.SMSEnabled && phone != "" && app.Priority == models.PriorityHigh {
		if err := s.sendSMS(ctx, phone, body); err != nil {
			metrics.NotificationsSent.WithLabelValues(models.ChannelSMS, models.NotificationFailed).Inc()
			s.logger.Error("SMS send failed", map[string]interface{}{
				"error": err,
				"phone": phone,
			})
			return s.record(app, landlordID, models.NotificationFailed, models.ChannelSMS),
				errors.NewNotificationSendFailedError(models.ChannelSMS, err)
		}
		metrics.NotificationsSent.WithLabelValues(models.ChannelSMS, models.NotificationSent).Inc()
		smsSent = true
	}

	status := models.NotificationDisabled
	channel := ""
	if emailSent {
		status = models.NotificationSent
		channel = models.ChannelEmail
	}
	if smsSent {
		status = models.NotificationSent
		channel = models.ChannelSMS
	}

	return s.record(app, landlordID, status, channel), nil
}

func (s *Service) record(app *models.Application, landlordID, status, channel string) *models.Notification {
	return &models.Notification{
		ID:            uuid.New().String(),
		RecipientID:   landlordID,
		RecipientType: models.RecipientLandlord,
		Type:          models.NotificationNewApplication,
		Channel:       channel,
		ApplicationID: app.ID,
		Status:        status,
		SentAt:        time.Now().UTC().Format(time.RFC3339),
	}
}

func (s *Service) getLandlordContact(ctx context.Context, listingID string) (email, phone, landlordID string, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT l.id, l.email, l.phone
		FROM landlords l
		JOIN listings ls ON ls.landlord_id = l.id
		WHERE ls.id = $1`, listingID).Scan(&landlordID, &email, &phone)
	return email, phone, landlordID, err
}

func (s *Service) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := s.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
				Html: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(s.config.FromEmail),
	})
	return err
}

func (s *Service) sendSMS(ctx context.Context, to, message string) error {
	_, err := s.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}

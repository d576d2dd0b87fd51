package models

// Notification records a single landlord/applicant notification dispatch.
type Notification struct {
	ID            string                 `json:"id"`
	RecipientID   string                 `json:"recipientId"`
	RecipientType string                 `json:"recipientType"`
	Type          string                 `json:"type"`
	Channel       string                 `json:"channel"`
	ApplicationID string                 `json:"applicationId,omitempty"`
	Status        string                 `json:"status"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	SentAt        string                 `json:"sentAt"`
}

// Notification types
const (
	NotificationNewApplication       = "new_application"
	NotificationApplicationSubmitted = "application_submitted"
)

// Notification channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Notification statuses
const (
	NotificationSent     = "sent"
	NotificationFailed   = "failed"
	NotificationDisabled = "disabled"
)

// Recipient types
const (
	RecipientLandlord  = "landlord"
	RecipientApplicant = "applicant"
)

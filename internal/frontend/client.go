// Package frontend synchronizes accepted application records to the deployed
// frontend's internal API. The origin and service token must match what the
// frontend deployment was provisioned with.
package frontend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lease-backend/internal/common/errors"
	"lease-backend/internal/common/httpclient"
	"lease-backend/internal/common/logger"
	"lease-backend/internal/common/metrics"
	"lease-backend/internal/models"
)

// InternalApplicationsPath is the frontend endpoint that persists
// application records. Not intended for public clients.
const InternalApplicationsPath = "/api/applications/internal"

type Client struct {
	origin       string
	serviceToken string
	httpClient   *httpclient.Client
	logger       logger.Logger
	maxRetries   int
	initialDelay time.Duration
}

type Option func(*Client)

// WithInitialDelay overrides the first backoff delay, mainly for tests.
func WithInitialDelay(d time.Duration) Option {
	return func(c *Client) {
		c.initialDelay = d
	}
}

func NewClient(origin, serviceToken string, timeout time.Duration, maxRetries int, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		origin:       strings.TrimRight(origin, "/"),
		serviceToken: serviceToken,
		httpClient:   httpclient.NewClient(timeout),
		logger:       log.WithFields(map[string]interface{}{"component": "frontend-sync"}),
		maxRetries:   maxRetries,
		initialDelay: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the full internal endpoint URL the client posts to.
func (c *Client) URL() string {
	return c.origin + InternalApplicationsPath
}

// SyncApplication delivers an accepted application record to the frontend.
// Connection failures and server errors are retried with exponential
// backoff; an auth rejection is returned immediately since retrying with
// the same token cannot succeed.
func (c *Client) SyncApplication(ctx context.Context, app *models.Application) error {
	body, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("marshal application: %w", err)
	}

	url := c.URL()
	delay := c.initialDelay

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		status, err := c.post(ctx, url, body)
		if err != nil {
			lastErr = err
			metrics.FrontendSyncAttempts.WithLabelValues("conn_failed").Inc()
			c.logger.Warn(fmt.Sprintf("Error saving application to database: Connection failed to %s", url), map[string]interface{}{
				"applicationId": app.ID,
				"attempt":       attempt + 1,
				"error":         err.Error(),
			})
			continue
		}

		switch {
		case status >= 200 && status < 300:
			metrics.FrontendSyncAttempts.WithLabelValues("ok").Inc()
			c.logger.Info("application saved to frontend", map[string]interface{}{
				"applicationId": app.ID,
				"url":           url,
			})
			return nil

		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			metrics.FrontendSyncAttempts.WithLabelValues("auth_failed").Inc()
			c.logger.Error("frontend rejected service token", map[string]interface{}{
				"applicationId": app.ID,
				"status":        status,
			})
			return errors.NewFrontendAuthFailedError(status)

		case status == http.StatusConflict:
			// Already persisted on the frontend side.
			metrics.FrontendSyncAttempts.WithLabelValues("duplicate").Inc()
			c.logger.Info("application already present on frontend", map[string]interface{}{
				"applicationId": app.ID,
			})
			return nil

		case status >= 500:
			lastErr = fmt.Errorf("frontend responded %d", status)
			metrics.FrontendSyncAttempts.WithLabelValues("server_error").Inc()
			c.logger.Warn("frontend returned server error", map[string]interface{}{
				"applicationId": app.ID,
				"status":        status,
				"attempt":       attempt + 1,
			})
			continue

		default:
			metrics.FrontendSyncAttempts.WithLabelValues("rejected").Inc()
			return errors.NewBusinessRuleError(
				"Frontend rejected the application record",
				fmt.Sprintf("status: %d, applicationId: %s", status, app.ID),
			)
		}
	}

	return errors.NewFrontendSyncFailedError(url, lastErr)
}

func (c *Client) post(ctx context.Context, url string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.serviceToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

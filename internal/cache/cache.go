// Package cache provides the Redis-backed caches used by the intake pipeline:
// idempotency markers for submissions and extraction results keyed by
// document digest.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	extractionKeyPrefix  = "lease:extraction:"
	idempotencyKeyPrefix = "application:submitted:"
)

type Cache struct {
	client *redis.Client
}

func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// GetExtraction returns the cached extraction JSON for a document digest,
// or an empty string on a miss.
func (c *Cache) GetExtraction(ctx context.Context, digest string) (string, error) {
	val, err := c.client.Get(ctx, extractionKeyPrefix+digest).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("extraction cache get: %w", err)
	}
	return val, nil
}

// PutExtraction stores extraction JSON for a document digest.
func (c *Cache) PutExtraction(ctx context.Context, digest, payload string, ttl time.Duration) error {
	if err := c.client.Set(ctx, extractionKeyPrefix+digest, payload, ttl).Err(); err != nil {
		return fmt.Errorf("extraction cache set: %w", err)
	}
	return nil
}

// MarkSubmitted records an applicant+listing submission marker. It returns
// false when the marker already existed, i.e. a repeat submission inside
// the TTL window.
func (c *Cache) MarkSubmitted(ctx context.Context, applicantID, listingID string, ttl time.Duration) (bool, error) {
	key := idempotencyKey(applicantID, listingID)
	ok, err := c.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency marker set: %w", err)
	}
	return ok, nil
}

// ClearSubmitted drops the idempotency marker, used when a submission fails
// after the marker was taken so the client can retry.
func (c *Cache) ClearSubmitted(ctx context.Context, applicantID, listingID string) error {
	return c.client.Del(ctx, idempotencyKey(applicantID, listingID)).Err()
}

func idempotencyKey(applicantID, listingID string) string {
	return idempotencyKeyPrefix + applicantID + ":" + listingID
}

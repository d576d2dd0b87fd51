package lease

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"time"

	"lease-backend/internal/cache"
	"lease-backend/internal/common/errors"
	"lease-backend/internal/common/logger"
	"lease-backend/internal/common/metrics"
	"lease-backend/internal/models"
)

// Service runs lease extraction with result caching keyed by document digest.
type Service struct {
	cache         *cache.Cache
	logger        logger.Logger
	previewLength int
	cacheTTL      time.Duration

	// readText is swappable in tests to avoid real PDF fixtures.
	readText func(path string) (string, error)
}

func NewService(c *cache.Cache, log logger.Logger, previewLength int, cacheTTL time.Duration) *Service {
	return &Service{
		cache:         c,
		logger:        log.WithFields(map[string]interface{}{"component": "lease-extractor"}),
		previewLength: previewLength,
		cacheTTL:      cacheTTL,
		readText:      ReadDocumentText,
	}
}

// Process extracts structured lease details from the PDF at path.
func (s *Service) Process(ctx context.Context, path string) (*models.LeaseDetails, error) {
	if _, err := os.Stat(path); err != nil {
		metrics.LeaseExtractions.WithLabelValues("not_found").Inc()
		return nil, errors.NewLeaseFileNotFoundError(path)
	}

	digest, err := fileDigest(path)
	if err == nil && s.cache != nil {
		if cached, ok := s.lookupCached(ctx, digest); ok {
			s.logger.Debug("extraction cache hit", map[string]interface{}{
				"filePath": path,
				"digest":   digest,
			})
			metrics.LeaseExtractions.WithLabelValues("cached").Inc()
			return cached, nil
		}
	}

	text, err := s.readText(path)
	if err != nil {
		metrics.LeaseExtractions.WithLabelValues("parse_failed").Inc()
		s.logger.Warn("lease document unreadable", map[string]interface{}{
			"filePath": path,
			"error":    err.Error(),
		})
		return nil, errors.NewLeaseParseFailedError(err)
	}

	details := ExtractFromText(text, s.previewLength)

	s.logger.Info("lease details extracted", map[string]interface{}{
		"filePath":   path,
		"confidence": details.Confidence,
		"rentFound":  details.RentAmount != models.NotFound,
	})
	metrics.LeaseExtractions.WithLabelValues("ok").Inc()

	if digest != "" && s.cache != nil {
		s.storeCached(ctx, digest, details)
	}

	return details, nil
}

func (s *Service) lookupCached(ctx context.Context, digest string) (*models.LeaseDetails, bool) {
	raw, err := s.cache.GetExtraction(ctx, digest)
	if err != nil || raw == "" {
		return nil, false
	}
	var details models.LeaseDetails
	if err := json.Unmarshal([]byte(raw), &details); err != nil {
		return nil, false
	}
	return &details, true
}

func (s *Service) storeCached(ctx context.Context, digest string, details *models.LeaseDetails) {
	raw, err := json.Marshal(details)
	if err != nil {
		return
	}
	if err := s.cache.PutExtraction(ctx, digest, string(raw), s.cacheTTL); err != nil {
		s.logger.Warn("extraction cache write failed", map[string]interface{}{
			"digest": digest,
			"error":  err.Error(),
		})
	}
}

func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

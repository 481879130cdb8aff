package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/voiceintake/internal/cache"
	"github.com/yoockh/voiceintake/internal/models"
)

// CachedSource memoises another source by transcript.
type CachedSource struct {
	inner Source
	cache cache.Cache
	ttl   time.Duration
	log   *logrus.Logger
}

func NewCachedSource(inner Source, c cache.Cache, ttl time.Duration, log *logrus.Logger) Source {
	if c == nil {
		return inner
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if log == nil {
		log = logrus.New()
	}
	return &CachedSource{inner: inner, cache: c, ttl: ttl, log: log}
}

func (s *CachedSource) Name() string { return s.inner.Name() }

func (s *CachedSource) key(transcript string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(transcript)))
	return "extract:" + s.inner.Name() + ":" + hex.EncodeToString(sum[:])
}

func (s *CachedSource) Extract(ctx context.Context, transcript string) ([]models.Candidate, error) {
	key := s.key(transcript)

	var cached []models.Candidate
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	cands, err := s.inner.Extract(ctx, transcript)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetJSON(ctx, key, cands, s.ttl); err != nil {
		s.log.WithError(err).WithField("source", s.inner.Name()).Debug("extraction cache write failed")
	}
	return cands, nil
}

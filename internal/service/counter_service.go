package service

import (
	"context"
	"errors"
	"time"

	"views-api/internal/domain"
	"views-api/internal/fingerprint"
	"views-api/internal/repository"
	apperrors "views-api/pkg/errors"
	"views-api/pkg/logger"
)

// CounterService ties the fingerprinter to the dedup store: it decides, once
// per (page, day, visitor), whether a request increments the counters.
type CounterService struct {
	store  repository.VisitStore
	fp     *fingerprint.Fingerprinter
	logger *logger.Logger
	now    func() time.Time
}

// NewCounterService creates a counter service on top of the given store
func NewCounterService(store repository.VisitStore, fp *fingerprint.Fingerprinter, log *logger.Logger) *CounterService {
	return &CounterService{
		store:  store,
		fp:     fp,
		logger: log,
		now:    time.Now,
	}
}

// Record handles a counting request: bot traffic and repeat visitors read the
// current counts without writing; a first-seen visitor creates the dedup
// record and bumps both counters. A missing salt aborts before any write.
func (s *CounterService) Record(ctx context.Context, req domain.VisitRequest) (*domain.PageCounts, error) {
	page := fingerprint.NormalizePage(req.Page)

	ts := req.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	day := fingerprint.DayBucket(ts)

	if fingerprint.IsBot(req.UserAgent) {
		s.logger.WithFields(map[string]interface{}{
			"page": page,
			"day":  day,
		}).Debug("Bot traffic, counting skipped")
		return s.counts(ctx, page, day)
	}

	visitorFP, err := s.fp.Fingerprint(req.IPAddress)
	if err != nil {
		if errors.Is(err, fingerprint.ErrMissingSalt) {
			return nil, apperrors.NewConfigurationError("Missing IP_SALT")
		}
		return nil, apperrors.NewInternalError("Failed to fingerprint visitor", err)
	}

	created, err := s.store.RecordIfAbsent(ctx, page, day, visitorFP)
	if err != nil {
		s.logger.WithError(err).Error("Failed to record visit")
		return nil, apperrors.NewStorageError("Failed to record visit", err)
	}

	if created {
		s.logger.WithFields(map[string]interface{}{
			"page":        page,
			"day":         day,
			"fingerprint": visitorFP[:8] + "…",
		}).Debug("New unique visitor recorded")
	}

	return s.counts(ctx, page, day)
}

// Counts returns the current counters for a page without recording anything.
// Safe for bots, crawlers and repeat polling.
func (s *CounterService) Counts(ctx context.Context, rawPage string) (*domain.PageCounts, error) {
	page := fingerprint.NormalizePage(rawPage)
	day := fingerprint.DayBucket(s.now())
	return s.counts(ctx, page, day)
}

func (s *CounterService) counts(ctx context.Context, page, day string) (*domain.PageCounts, error) {
	today, allTime, err := s.store.GetCounts(ctx, page, day)
	if err != nil {
		s.logger.WithError(err).Error("Failed to read counts")
		return nil, apperrors.NewStorageError("Failed to read counts", err)
	}

	return &domain.PageCounts{
		Page:          page,
		UniqueToday:   today,
		UniqueAllTime: allTime,
	}, nil
}

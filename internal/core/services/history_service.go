package services

import (
	"context"

	"queueflow/internal/core/domain"
)

// DefaultHistoryLimit is how many completed-service samples feed the
// estimator by default.
const DefaultHistoryLimit = 5

// HistoryService reads the append-only completed-service log. It performs no
// prediction itself; its output is estimator input only.
type HistoryService struct {
	historyRepo HistoryRepository
}

// NewHistoryService creates a new history service
func NewHistoryService(historyRepo HistoryRepository) *HistoryService {
	return &HistoryService{historyRepo: historyRepo}
}

// RecentDurations returns up to limit service durations for a queue,
// most recent first. An empty slice is a valid result for a fresh queue.
func (s *HistoryService) RecentDurations(ctx context.Context, queueID string, limit int) ([]float64, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	records, err := s.historyRepo.RecentByQueue(ctx, queueID, limit)
	if err != nil {
		return nil, err
	}

	durations := make([]float64, 0, len(records))
	for _, r := range records {
		durations = append(durations, r.Duration)
	}
	return durations, nil
}

// Recent returns the raw history records, most recent first.
func (s *HistoryService) Recent(ctx context.Context, queueID string, limit int) ([]domain.HistoryRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.historyRepo.RecentByQueue(ctx, queueID, limit)
}

// Page returns one page of history records newest-first plus the total count
// for pagination metadata.
func (s *HistoryService) Page(ctx context.Context, queueID string, offset, limit int) ([]domain.HistoryRecord, int64, error) {
	total, err := s.historyRepo.CountByQueue(ctx, queueID)
	if err != nil {
		return nil, 0, err
	}

	records, err := s.historyRepo.ListByQueue(ctx, queueID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"queueflow/internal/core/domain"
)

// FallbackMinutesPerPerson is the deterministic heuristic applied when the
// external predictor is unavailable or misbehaves.
const FallbackMinutesPerPerson = 5

// EstimatorService wraps the external predictor with the mandatory fallback.
// Callers never see an estimator failure: the UI must never block on one.
type EstimatorService struct {
	estimator Estimator

	mu       sync.Mutex
	lastKey  string
	lastEst  domain.Estimate
	hasCache bool
}

// NewEstimatorService creates a new estimator service
func NewEstimatorService(estimator Estimator) *EstimatorService {
	return &EstimatorService{estimator: estimator}
}

// Estimate predicts total wait time for a customer at the given queue depth.
// The last successful result is reused while inputs are unchanged, so polling
// clients do not trigger redundant predictor calls.
func (s *EstimatorService) Estimate(ctx context.Context, recentDurations []float64, positionDepth int) domain.Estimate {
	// A fresh queue has no service history, so there is nothing for the
	// predictor to reason from; the heuristic answers directly.
	if len(recentDurations) == 0 {
		return Fallback(positionDepth)
	}

	key := cacheKey(recentDurations, positionDepth)

	s.mu.Lock()
	if s.hasCache && s.lastKey == key {
		est := s.lastEst
		s.mu.Unlock()
		return est
	}
	s.mu.Unlock()

	est, err := s.estimator.Estimate(ctx, recentDurations, positionDepth)
	if err != nil {
		// Fallbacks are never cached: the next poll retries the predictor
		log.Printf("⚠️ Estimator failed, using fallback: %v", err)
		return Fallback(positionDepth)
	}

	s.mu.Lock()
	s.lastKey = key
	s.lastEst = est
	s.hasCache = true
	s.mu.Unlock()

	return est
}

// Fallback is the deterministic heuristic: five minutes per person ahead,
// zero confidence.
func Fallback(positionDepth int) domain.Estimate {
	return domain.Estimate{
		PredictedMinutes: float64(positionDepth * FallbackMinutesPerPerson),
		Confidence:       0,
	}
}

func cacheKey(durations []float64, depth int) string {
	var sb strings.Builder
	for _, d := range durations {
		fmt.Fprintf(&sb, "%.2f,", d)
	}
	fmt.Fprintf(&sb, "#%d", depth)
	return sb.String()
}

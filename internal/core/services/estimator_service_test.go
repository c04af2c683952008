package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"queueflow/internal/core/domain"
)

type stubEstimator struct {
	est   domain.Estimate
	err   error
	calls int
}

func (s *stubEstimator) Estimate(_ context.Context, _ []float64, _ int) (domain.Estimate, error) {
	s.calls++
	return s.est, s.err
}

func TestEstimate_PassesThroughPredictorResult(t *testing.T) {
	stub := &stubEstimator{est: domain.Estimate{PredictedMinutes: 12.5, Confidence: 80}}
	svc := NewEstimatorService(stub)

	got := svc.Estimate(context.Background(), []float64{4.5, 3.2}, 3)
	assert.Equal(t, 12.5, got.PredictedMinutes)
	assert.Equal(t, 80.0, got.Confidence)
}

func TestEstimate_FallsBackOnPredictorFailure(t *testing.T) {
	stub := &stubEstimator{err: domain.ErrEstimator}
	svc := NewEstimatorService(stub)

	got := svc.Estimate(context.Background(), []float64{4.5}, 3)
	assert.Equal(t, domain.Estimate{PredictedMinutes: 15, Confidence: 0}, got)
	assert.Equal(t, 1, stub.calls)
}

func TestEstimate_EmptyHistoryBypassesPredictor(t *testing.T) {
	// A fresh queue has no history; the contract is 5 minutes per person and
	// zero confidence, even when the predictor is healthy and would answer
	// something else.
	stub := &stubEstimator{est: domain.Estimate{PredictedMinutes: 99, Confidence: 42}}
	svc := NewEstimatorService(stub)

	got := svc.Estimate(context.Background(), []float64{}, 3)
	assert.Equal(t, domain.Estimate{PredictedMinutes: 15, Confidence: 0}, got)
	assert.Equal(t, 0, stub.calls, "predictor must not be consulted without history")

	got = svc.Estimate(context.Background(), nil, 2)
	assert.Equal(t, domain.Estimate{PredictedMinutes: 10, Confidence: 0}, got)
	assert.Equal(t, 0, stub.calls)
}

func TestEstimate_FallbackIsNotMemoized(t *testing.T) {
	stub := &stubEstimator{err: domain.ErrEstimator}
	svc := NewEstimatorService(stub)
	ctx := context.Background()

	svc.Estimate(ctx, []float64{4.5}, 2)
	svc.Estimate(ctx, []float64{4.5}, 2)
	assert.Equal(t, 2, stub.calls, "a failed prediction must not be cached")

	// Once the predictor recovers, identical inputs reach it again
	stub.err = nil
	stub.est = domain.Estimate{PredictedMinutes: 9, Confidence: 70}
	got := svc.Estimate(ctx, []float64{4.5}, 2)
	assert.Equal(t, 9.0, got.PredictedMinutes)
	assert.Equal(t, 3, stub.calls)

	svc.Estimate(ctx, []float64{4.5}, 2)
	assert.Equal(t, 3, stub.calls, "the successful result is cached as before")
}

func TestEstimate_SkipsRedundantCallsForUnchangedInputs(t *testing.T) {
	stub := &stubEstimator{est: domain.Estimate{PredictedMinutes: 9, Confidence: 70}}
	svc := NewEstimatorService(stub)
	ctx := context.Background()

	svc.Estimate(ctx, []float64{4.5}, 2)
	svc.Estimate(ctx, []float64{4.5}, 2)
	assert.Equal(t, 1, stub.calls, "identical inputs must reuse the last result")

	svc.Estimate(ctx, []float64{4.5}, 3)
	assert.Equal(t, 2, stub.calls, "changed depth must reach the predictor")

	svc.Estimate(ctx, []float64{4.5, 2.1}, 3)
	assert.Equal(t, 3, stub.calls, "changed history must reach the predictor")
}

func TestFallback(t *testing.T) {
	assert.Equal(t, domain.Estimate{PredictedMinutes: 0, Confidence: 0}, Fallback(0))
	assert.Equal(t, domain.Estimate{PredictedMinutes: 25, Confidence: 0}, Fallback(5))
}

package estimator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"queueflow/internal/core/domain"
)

func modelServer(t *testing.T, modelAnswer string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.Contains(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": modelAnswer}}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestEstimate_ParsesStrictContract(t *testing.T) {
	srv := modelServer(t, `{"predictedMinutes": 14.5, "confidence": 82}`)
	defer srv.Close()

	e := NewGeminiEstimator(Config{APIKey: "test", BaseURL: srv.URL})
	got, err := e.Estimate(context.Background(), []float64{4.5, 3.2}, 3)
	if err != nil {
		t.Fatalf("Estimate returned error: %v", err)
	}
	if got.PredictedMinutes != 14.5 || got.Confidence != 82 {
		t.Errorf("Estimate = %+v, want {14.5 82}", got)
	}
}

func TestEstimate_MalformedAnswerIsEstimatorError(t *testing.T) {
	cases := map[string]string{
		"prose":          "Around 15 minutes, I think.",
		"missing fields": `{"predictedMinutes": 14.5}`,
		"negative":       `{"predictedMinutes": -2, "confidence": 50}`,
	}
	for name, answer := range cases {
		t.Run(name, func(t *testing.T) {
			srv := modelServer(t, answer)
			defer srv.Close()

			e := NewGeminiEstimator(Config{APIKey: "test", BaseURL: srv.URL})
			_, err := e.Estimate(context.Background(), nil, 3)
			if !errors.Is(err, domain.ErrEstimator) {
				t.Errorf("want ErrEstimator, got %v", err)
			}
		})
	}
}

func TestEstimate_HTTPFailureIsEstimatorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewGeminiEstimator(Config{APIKey: "test", BaseURL: srv.URL})
	_, err := e.Estimate(context.Background(), nil, 2)
	if !errors.Is(err, domain.ErrEstimator) {
		t.Errorf("want ErrEstimator, got %v", err)
	}
}

func TestEstimate_UnreachablePredictorIsEstimatorError(t *testing.T) {
	e := NewGeminiEstimator(Config{APIKey: "test", BaseURL: "http://127.0.0.1:1"})
	_, err := e.Estimate(context.Background(), nil, 2)
	if !errors.Is(err, domain.ErrEstimator) {
		t.Errorf("want ErrEstimator, got %v", err)
	}
}

func TestBuildPrompt_IncludesSamplesAndDepth(t *testing.T) {
	prompt := buildPrompt([]float64{4.5, 3.25}, 7)
	for _, want := range []string{"4.50m", "3.25m", "7 people"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

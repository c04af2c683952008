// Package estimator holds the wait-time predictor adapters. The remote
// predictor is an opaque generative-AI endpoint; anything it does wrong is
// reported as domain.ErrEstimator and resolved by the caller's fallback,
// never surfaced to a user.
package estimator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"queueflow/internal/core/domain"
)

// Config holds the remote predictor configuration
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GeminiEstimator predicts wait times via a Gemini-style generateContent API
type GeminiEstimator struct {
	config Config
	client *http.Client
}

// NewGeminiEstimator creates a new remote estimator
func NewGeminiEstimator(config Config) *GeminiEstimator {
	if config.BaseURL == "" {
		config.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if config.Model == "" {
		config.Model = "gemini-2.0-flash"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	return &GeminiEstimator{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// generateContent request/response wire types (only the fields we touch)

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// prediction is the strict JSON contract the model must answer with
type prediction struct {
	PredictedMinutes *float64 `json:"predictedMinutes"`
	Confidence       *float64 `json:"confidence"`
}

// Estimate asks the model for a total-wait prediction from the recent
// service durations and the customer's queue depth.
func (e *GeminiEstimator) Estimate(ctx context.Context, recentDurations []float64, positionDepth int) (domain.Estimate, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(recentDurations, positionDepth)}}}},
	})
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("%w: marshal request: %v", domain.ErrEstimator, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", e.config.BaseURL, e.config.Model, e.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("%w: build request: %v", domain.ErrEstimator, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("%w: call predictor: %v", domain.ErrEstimator, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Estimate{}, fmt.Errorf("%w: predictor returned status %d", domain.ErrEstimator, resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Estimate{}, fmt.Errorf("%w: read response: %v", domain.ErrEstimator, err)
	}

	var generated generateResponse
	if err := json.Unmarshal(respBody, &generated); err != nil {
		return domain.Estimate{}, fmt.Errorf("%w: decode response: %v", domain.ErrEstimator, err)
	}
	if len(generated.Candidates) == 0 || len(generated.Candidates[0].Content.Parts) == 0 {
		return domain.Estimate{}, fmt.Errorf("%w: empty candidate", domain.ErrEstimator)
	}

	return parsePrediction(generated.Candidates[0].Content.Parts[0].Text)
}

// parsePrediction enforces the strict {predictedMinutes, confidence} contract.
// Extra prose, missing fields or negative values are all estimator errors,
// which the service layer resolves with the heuristic.
func parsePrediction(text string) (domain.Estimate, error) {
	var p prediction
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &p); err != nil {
		return domain.Estimate{}, fmt.Errorf("%w: malformed prediction: %v", domain.ErrEstimator, err)
	}
	if p.PredictedMinutes == nil || p.Confidence == nil {
		return domain.Estimate{}, fmt.Errorf("%w: prediction missing required fields", domain.ErrEstimator)
	}
	if *p.PredictedMinutes < 0 || *p.Confidence < 0 {
		return domain.Estimate{}, fmt.Errorf("%w: prediction out of range", domain.ErrEstimator)
	}
	return domain.Estimate{
		PredictedMinutes: *p.PredictedMinutes,
		Confidence:       *p.Confidence,
	}, nil
}

func buildPrompt(recentDurations []float64, positionDepth int) string {
	samples := make([]string, 0, len(recentDurations))
	for _, d := range recentDurations {
		samples = append(samples, fmt.Sprintf("%.2fm", d))
	}

	var sb strings.Builder
	sb.WriteString("Context: You are a queue management expert.\n")
	fmt.Fprintf(&sb, "Data: The last few customers took [%s] to serve.\n", strings.Join(samples, ", "))
	fmt.Fprintf(&sb, "Current Queue: There are %d people waiting.\n", positionDepth)
	sb.WriteString("Task: Predict total wait time for the last person.\n")
	sb.WriteString(`Constraint: Respond with ONLY a JSON object: {"predictedMinutes": number, "confidence": percentage}`)
	return sb.String()
}

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"planwise/internal/model"
)

// Backend wraps the upstream learning-backend REST API: the adaptive-plan
// document endpoint, per-activity elapsed time, and per-subchapter
// aggregator status.
type Backend struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

// NewBackend creates a backend client for the given base URL.
func NewBackend(baseURL string) *Backend {
	return &Backend{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
	}
}

// doRequest performs a GET with retry and backoff on 429/5xx responses.
func (c *Backend) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			log.Printf("[Backend] Retry %d/%d for GET %s in %v", attempt, c.maxRetries, path, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("backend returned %d: %s", resp.StatusCode, string(respBody))
			continue
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("backend returned %d: %s", resp.StatusCode, string(respBody))
		}

		return respBody, nil
	}

	return nil, fmt.Errorf("max retries exceeded for GET %s: %w", path, lastErr)
}

type planResponse struct {
	PlanDoc *model.PlanDocument `json:"planDoc"`
}

// GetAdaptivePlan fetches one plan document.
func (c *Backend) GetAdaptivePlan(ctx context.Context, planID string) (*model.PlanDocument, error) {
	q := url.Values{}
	q.Set("planId", planID)

	respBody, err := c.doRequest(ctx, "/api/adaptive-plan", q)
	if err != nil {
		return nil, err
	}

	var out planResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to parse plan response: %w", err)
	}
	if out.PlanDoc == nil {
		return nil, fmt.Errorf("plan %s not found", planID)
	}
	if out.PlanDoc.ID == "" {
		out.PlanDoc.ID = planID
	}
	return out.PlanDoc, nil
}

type activityTimeResponse struct {
	TotalTime int64 `json:"totalTime"`
}

// GetActivityTime fetches total elapsed seconds for one activity.
func (c *Backend) GetActivityTime(ctx context.Context, activityID, activityType string) (int64, error) {
	q := url.Values{}
	q.Set("activityId", activityID)
	q.Set("type", activityType)

	respBody, err := c.doRequest(ctx, "/api/getActivityTime", q)
	if err != nil {
		return 0, err
	}

	var out activityTimeResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return 0, fmt.Errorf("failed to parse activity time response: %w", err)
	}
	return out.TotalTime, nil
}

// GetSubchapterStatus fetches the aggregator blob for one subchapter.
func (c *Backend) GetSubchapterStatus(ctx context.Context, userID, planID, subChapterID string) (*model.AggregatorBlob, error) {
	q := url.Values{}
	q.Set("userId", userID)
	q.Set("planId", planID)
	q.Set("subchapterId", subChapterID)

	respBody, err := c.doRequest(ctx, "/subchapter-status", q)
	if err != nil {
		return nil, err
	}

	var blob model.AggregatorBlob
	if err := json.Unmarshal(respBody, &blob); err != nil {
		return nil, fmt.Errorf("failed to parse subchapter status: %w", err)
	}
	if blob.SubChapterID == "" {
		blob.SubChapterID = subChapterID
	}
	return &blob, nil
}

package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"studio-wizard-backend/internal/staging"
)

// RemoteQuality asks an external quality assessment service about each image.
type RemoteQuality struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	backoffs   []time.Duration
	maxRetries int
}

type AssessmentRequest struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

type AssessmentResponse struct {
	Acceptable bool    `json:"acceptable"`
	Score      float64 `json:"score"`
}

func NewRemoteQuality(baseURL, apiKey string) *RemoteQuality {
	return &RemoteQuality{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		backoffs:   []time.Duration{250 * time.Millisecond, 500 * time.Millisecond, time.Second},
		maxRetries: 3,
	}
}

// WithBackoffs replaces the wait between attempts.
func (c *RemoteQuality) WithBackoffs(backoffs ...time.Duration) *RemoteQuality {
	c.backoffs = backoffs
	return c
}

func (c *RemoteQuality) Assess(ctx context.Context, f staging.File) (bool, error) {
	var result *AssessmentResponse
	err := c.RetryWithBackoff(func() error {
		var err error
		result, err = c.assess(ctx, f)
		return err
	}, c.maxRetries)
	if err != nil {
		return false, err
	}
	return result.Acceptable, nil
}

func (c *RemoteQuality) assess(ctx context.Context, f staging.File) (*AssessmentResponse, error) {
	jsonData, err := json.Marshal(AssessmentRequest{
		Filename: f.Name,
		MimeType: f.MimeType,
		Size:     f.Size,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/assessments"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("assessment failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result AssessmentResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	return &result, nil
}

func (c *RemoteQuality) RetryWithBackoff(fn func() error, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if i < len(c.backoffs) && i < maxRetries-1 {
			time.Sleep(c.backoffs[i])
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

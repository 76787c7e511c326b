// Package bankr implements the async job client for the upstream reasoning
// and brokerage agent: submit a natural-language prompt, poll the returned
// job until it completes, hand back whatever text came out. The client does
// no content validation; any nonempty response is accepted and interpreting
// it is the parse package's problem.
package bankr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sentarb/internal/config"
	"sentarb/internal/logger"
	"sentarb/internal/pkg/circuit"
)

// Recorder receives one record per completed query for the transcript store.
// A nil recorder is valid and means no persistence.
type Recorder interface {
	RecordJob(kind, jobID, prompt, raw, errText string)
}

// PollProfile is one patience budget for the poll loop.
type PollProfile struct {
	Interval    time.Duration
	MaxAttempts int
}

type Client struct {
	baseURL  string
	apiKey   string
	httpc    *http.Client
	breaker  *circuit.Breaker
	recorder Recorder

	retryAttempts int
	retryDelay    time.Duration
	interactive   PollProfile
	patient       PollProfile

	// test seam; defaults to a context-aware sleep
	wait func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg config.APIConfig, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: time.Duration(cfg.SubmitTimeoutSeconds) * time.Second},
		breaker: circuit.NewBreaker("bankr-submit", cfg.RetryAttempts, 2*time.Minute),

		retryAttempts: cfg.RetryAttempts,
		retryDelay:    time.Duration(cfg.RetryDelaySeconds) * time.Second,
		interactive: PollProfile{
			Interval:    time.Duration(cfg.PollIntervalSeconds) * time.Second,
			MaxAttempts: cfg.MaxPollAttempts,
		},
		patient: PollProfile{
			Interval:    time.Duration(cfg.BatchPollIntervalSeconds) * time.Second,
			MaxAttempts: cfg.BatchMaxPollAttempts,
		},
		wait: sleepCtx,
	}
}

// SetRecorder installs the transcript recorder.
func (c *Client) SetRecorder(r Recorder) { c.recorder = r }

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Submit posts a prompt and returns the assigned job ID. It retries a bounded
// number of times with a fixed delay; exhausting the budget yields an error,
// never a panic. Transport faults and upstream error payloads are logged.
func (c *Client) Submit(ctx context.Context, kind, prompt string) (string, error) {
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			if err := c.wait(ctx, c.retryDelay); err != nil {
				return "", err
			}
		}
		if !c.breaker.Allow() {
			logger.Warnf("[%s] submit suppressed: breaker open", kind)
			continue
		}
		jobID, err := c.submitOnce(ctx, prompt)
		if err != nil {
			c.breaker.Failure()
			logger.Warnf("[%s] submit attempt %d/%d: %v", kind, attempt+1, c.retryAttempts, err)
			continue
		}
		c.breaker.Success()
		logger.Infof("[%s] submitted prompt, job=%s", kind, jobID)
		logger.LogJobSubmit(kind, jobID, prompt)
		return jobID, nil
	}
	return "", fmt.Errorf("submit failed after %d attempts", c.retryAttempts)
}

func (c *Client) submitOnce(ctx context.Context, prompt string) (string, error) {
	body, _ := json.Marshal(submitRequest{Prompt: prompt})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/agent/prompt", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	c.setHeaders(req)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var sr submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("status=%d: undecodable body", resp.StatusCode)
	}
	if !sr.Success || sr.JobID == "" {
		if sr.Error != "" {
			return "", fmt.Errorf("upstream error: %s", sr.Error)
		}
		return "", fmt.Errorf("status=%d: no job id", resp.StatusCode)
	}
	return sr.JobID, nil
}

// Poll requests job state on the profile's fixed interval until the job
// completes (full result returned), fails (nil immediately), or the attempt
// budget runs out (nil, timeout logged). Transport faults burn an attempt
// and never propagate.
func (c *Client) Poll(ctx context.Context, kind, jobID string, profile PollProfile) *JobResult {
	logger.Infof("[%s] polling job %s (max %d attempts, %s interval)",
		kind, jobID, profile.MaxAttempts, profile.Interval)
	for attempt := 0; attempt < profile.MaxAttempts; attempt++ {
		res, err := c.pollOnce(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warnf("[%s] poll error: %v", kind, err)
			if c.wait(ctx, profile.Interval) != nil {
				return nil
			}
			continue
		}
		switch res.Status {
		case StatusCompleted:
			logger.Infof("[%s] job %s completed after %d attempts", kind, jobID, attempt+1)
			return res
		case StatusFailed:
			logger.Errorf("[%s] job %s failed: %s", kind, jobID, res.Error)
			return nil
		default:
			if attempt > 0 && attempt%5 == 0 {
				elapsed := time.Duration(attempt) * profile.Interval
				logger.Infof("[%s] still waiting on job %s (%s elapsed)", kind, jobID, elapsed.Truncate(time.Second))
			}
			if c.wait(ctx, profile.Interval) != nil {
				return nil
			}
		}
	}
	logger.Errorf("[%s] job %s timed out after %d attempts (%s total)",
		kind, jobID, profile.MaxAttempts, time.Duration(profile.MaxAttempts)*profile.Interval)
	return nil
}

func (c *Client) pollOnce(ctx context.Context, jobID string) (*JobResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/agent/job/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var jr JobResult
	if err := json.NewDecoder(resp.Body).Decode(&jr); err != nil {
		return nil, fmt.Errorf("status=%d: undecodable body", resp.StatusCode)
	}
	return &jr, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// Query is the patient composite used for the three batched per-cycle
// prompts: one submission, long-interval polling, any nonempty response
// accepted. Returns "" when the job never produced one.
func (c *Client) Query(ctx context.Context, kind, prompt string) string {
	return c.query(ctx, kind, prompt, c.patient)
}

// QueryQuick is the interactive composite for low-latency lookups such as
// individual order placements and cancellations.
func (c *Client) QueryQuick(ctx context.Context, kind, prompt string) string {
	return c.query(ctx, kind, prompt, c.interactive)
}

func (c *Client) query(ctx context.Context, kind, prompt string, profile PollProfile) string {
	jobID, err := c.Submit(ctx, kind, prompt)
	if err != nil {
		c.record(kind, "", prompt, "", err.Error())
		return ""
	}
	res := c.Poll(ctx, kind, jobID, profile)
	if res == nil {
		c.record(kind, jobID, prompt, "", "job did not complete")
		return ""
	}
	logger.LogJobResult(kind, jobID, res.Response)
	c.record(kind, jobID, prompt, res.Response, "")
	return res.Response
}

func (c *Client) record(kind, jobID, prompt, raw, errText string) {
	if c.recorder != nil {
		c.recorder.RecordJob(kind, jobID, prompt, raw, errText)
	}
}

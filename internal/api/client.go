package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/travi-platform/travictl/internal/domain"
)

// changesPath is the base path for the change-management surface.
const changesPath = "/api/admin/changes"

// ApplyBatchSize is the fixed batch size posted with every apply, for
// incremental server-side execution.
const ApplyBatchSize = 20

// maxResponseBodyBytes limits decoded JSON payload size for fail-closed
// response handling.
const maxResponseBodyBytes int64 = 1 << 20

// defaultTimeout bounds each request when no custom HTTP client is supplied.
const defaultTimeout = 30 * time.Second

// per-action fallback messages, used when the failure body carries no error
// string.
const (
	fallbackApprove  = "Approval failed"
	fallbackApply    = "Execution Failed"
	fallbackDryRun   = "Dry run failed"
	fallbackRollback = "Rollback failed"
)

// Client calls the TRAVI admin REST API over HTTP+JSON.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// Option defines a functional option for client configuration.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, including any timeout
// it carries.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		if httpc != nil {
			c.httpc = httpc
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpc.Timeout = timeout
		}
	}
}

// NewClient constructs a client for the given API base URL. The token, when
// set, is sent as a bearer credential on every request.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	c := &Client{
		baseURL: baseURL,
		token:   strings.TrimSpace(token),
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Stats fetches the change-management feature flags and aggregate counters.
func (c *Client) Stats(ctx context.Context) (domain.ChangeStats, error) {
	var payload statsPayload
	if err := c.get(ctx, changesPath+"/stats", &payload); err != nil {
		return domain.ChangeStats{}, err
	}
	return payload.toDomain(), nil
}

// ListPlans fetches the full plan list along with the server-side total.
func (c *Client) ListPlans(ctx context.Context) ([]domain.ChangePlan, int, error) {
	var payload listPlansPayload
	if err := c.get(ctx, changesPath, &payload); err != nil {
		return nil, 0, err
	}
	plans := make([]domain.ChangePlan, 0, len(payload.Plans))
	for _, p := range payload.Plans {
		plans = append(plans, p.toDomain())
	}
	return plans, payload.Total, nil
}

// Approve posts an approval for the plan with optional reviewer notes.
func (c *Client) Approve(ctx context.Context, planID, notes string) (domain.ActionResult, error) {
	var payload actionPayload
	err := c.post(ctx, actionPath(planID, "approve"), approveRequest{Notes: notes}, &payload, fallbackApprove)
	if err != nil {
		return domain.ActionResult{}, err
	}
	return domain.ActionResult{ExecutionID: payload.ExecutionID}, nil
}

// Apply posts an execution request for the plan. The server executes in
// batches and returns an executionId for async tracking.
func (c *Client) Apply(ctx context.Context, planID string) (domain.ActionResult, error) {
	var payload actionPayload
	err := c.post(ctx, actionPath(planID, "apply"), applyRequest{BatchSize: ApplyBatchSize}, &payload, fallbackApply)
	if err != nil {
		return domain.ActionResult{}, err
	}
	return domain.ActionResult{ExecutionID: payload.ExecutionID}, nil
}

// DryRun posts a simulation request for the plan. Under the assumed contract
// the server does not transition plan status for a dry-run.
func (c *Client) DryRun(ctx context.Context, planID string) (domain.DryRunResult, error) {
	var payload dryRunPayload
	if err := c.post(ctx, actionPath(planID, "dry-run"), nil, &payload, fallbackDryRun); err != nil {
		return domain.DryRunResult{}, err
	}
	return domain.DryRunResult{Success: payload.Success, ChangesWouldApply: payload.ChangesWouldApply}, nil
}

// Rollback posts an asynchronous revert request for the plan with an optional
// operator reason.
func (c *Client) Rollback(ctx context.Context, planID, reason string) (domain.ActionResult, error) {
	var payload actionPayload
	err := c.post(ctx, actionPath(planID, "rollback"), rollbackRequest{Reason: reason, Async: true}, &payload, fallbackRollback)
	if err != nil {
		return domain.ActionResult{}, err
	}
	return domain.ActionResult{ExecutionID: payload.ExecutionID}, nil
}

// actionPath builds the mutating endpoint path for one plan action.
func actionPath(planID, action string) string {
	return changesPath + "/" + url.PathEscape(planID) + "/" + action
}

// get issues a GET request and decodes the 2xx JSON body into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out, "")
}

// post issues a POST request with an optional JSON body and decodes the 2xx
// response into out. A non-2xx response becomes an ActionError carrying the
// given fallback message.
func (c *Client) post(ctx context.Context, path string, body, out any, fallback string) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out, fallback)
}

// do executes one request. Any status outside 2xx is a failure; the error
// message is extracted from the body's error field when present.
func (c *Client) do(req *http.Request, out any, fallback string) error {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		actionErr := &ActionError{StatusCode: resp.StatusCode, Fallback: fallback}
		if actionErr.Fallback == "" {
			actionErr.Fallback = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		var failure errorPayload
		if json.Unmarshal(raw, &failure) == nil {
			actionErr.Message = strings.TrimSpace(failure.Error)
		}
		return actionErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Package fieldservice provides the HTTP client for the external
// field-service management API.
package fieldservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	proposalapp "github.com/tierquote/backend/internal/application/proposal"
	infraconfig "github.com/tierquote/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	// maxResponseSize limits the response body size to prevent memory exhaustion
	maxResponseSize = 4 * 1024 * 1024 // 4MB max response

	defaultTimeout = 20 * time.Second
)

// Sentinel errors for field-service failures
var (
	ErrUnavailable   = errors.New("field service unavailable")
	ErrRequestFailed = errors.New("field service request failed")
)

// Ensure Client implements FieldServiceClient
var _ proposalapp.FieldServiceClient = (*Client)(nil)

// Client talks to the field-service management API over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	companyID  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new field-service client from configuration
func NewClient(cfg *infraconfig.FieldServiceConfig, logger *zap.Logger) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("field service configuration is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("field service base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("field service API key is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		companyID:  cfg.CompanyID,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// approveResponse is the body returned by the option approval endpoint
type approveResponse struct {
	JobID string `json:"job_id"`
}

// ApproveOption approves an option by its external id. The external system
// may create a job as a side effect and return its identifier.
func (c *Client) ApproveOption(ctx context.Context, jobID, optionID string) (*string, error) {
	path := fmt.Sprintf("/jobs/%s/options/%s/approve", url.PathEscape(jobID), url.PathEscape(optionID))

	body, err := c.doJSON(ctx, http.MethodPost, path, nil)
	if err != nil {
		return nil, err
	}

	var resp approveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		// An approval that returned 2xx succeeded even if the body is
		// not parseable; there is just no created job to report.
		c.logger.Warn("unparseable approval response", zap.Error(err))
		return nil, nil
	}
	if resp.JobID == "" {
		return nil, nil
	}
	return &resp.JobID, nil
}

// DeclineOptions declines a set of option ids under a job.
func (c *Client) DeclineOptions(ctx context.Context, jobID string, optionIDs []string) error {
	if len(optionIDs) == 0 {
		return nil
	}
	path := fmt.Sprintf("/jobs/%s/options/decline", url.PathEscape(jobID))

	payload := map[string]any{"option_ids": optionIDs}
	_, err := c.doJSON(ctx, http.MethodPost, path, payload)
	return err
}

// UploadAttachment uploads a named binary attachment to an option.
func (c *Client) UploadAttachment(ctx context.Context, jobID, optionID, fileName string, content []byte) error {
	path := fmt.Sprintf("/jobs/%s/options/%s/attachments", url.PathEscape(jobID), url.PathEscape(optionID))

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return fmt.Errorf("fieldservice: failed to build upload form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("fieldservice: failed to write upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("fieldservice: failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("fieldservice: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	_, err = c.do(req)
	return err
}

// AddNote appends a free-text note to an option.
func (c *Client) AddNote(ctx context.Context, jobID, optionID, note string) error {
	path := fmt.Sprintf("/jobs/%s/options/%s/notes", url.PathEscape(jobID), url.PathEscape(optionID))

	payload := map[string]any{"note": note}
	_, err := c.doJSON(ctx, http.MethodPost, path, payload)
	return err
}

// doJSON performs a JSON request against the API
func (c *Client) doJSON(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("fieldservice: failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("fieldservice: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

// do executes the request with auth headers and reads the bounded response
func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.companyID != "" {
		req.Header.Set("X-Company-ID", c.companyID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("fieldservice: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("field service call failed",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: HTTP %d", ErrRequestFailed, resp.StatusCode)
	}

	return body, nil
}

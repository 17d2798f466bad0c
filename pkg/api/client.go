package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shipgen/shipctl/pkg/models"
)

// Client manages communication with the shipment conversion service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetAPIKey sets the bearer token used for authentication.
func (c *Client) SetAPIKey(apiKey string) {
	c.apiKey = apiKey
}

// BaseURL returns the configured service URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) addAuthHeader(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// UploadRequest describes one submission to the conversion service.
type UploadRequest struct {
	FilePath         string
	AvailabilityPath string // optional secondary spreadsheet
	Options          models.ProcessingOptions
}

// UploadResponse is the immediate answer of the upload endpoint.
type UploadResponse struct {
	JobID    string        `json:"job_id"`
	Status   models.Status `json:"status"`
	Message  string        `json:"message"`
	Filename string        `json:"filename"`
}

// UploadFile submits the primary spreadsheet, the optional availability
// spreadsheet and the processing flags as one multipart request.
func (c *Client) UploadFile(ctx context.Context, upload UploadRequest) (*UploadResponse, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeUploadBody(mw, upload)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload-file", pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.addAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach conversion service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError("upload", resp)
	}

	var result UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return &result, nil
}

func writeUploadBody(mw *multipart.Writer, upload UploadRequest) error {
	if err := writeFilePart(mw, "file", upload.FilePath); err != nil {
		return err
	}
	if upload.AvailabilityPath != "" {
		if err := writeFilePart(mw, "availability_file", upload.AvailabilityPath); err != nil {
			return err
		}
	}
	// The service parses these as form strings, not JSON booleans.
	if err := mw.WriteField("use_planta_as_origen", strconv.FormatBool(upload.Options.UsePlantaAsOrigen)); err != nil {
		return err
	}
	return mw.WriteField("skip_placas", strconv.FormatBool(upload.Options.SkipPlacas))
}

func writeFilePart(mw *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	part, err := mw.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to stream %s: %w", path, err)
	}
	return nil
}

// GetJob fetches the current server-side state of a job.
func (c *Client) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/job/%s", c.baseURL, url.PathEscape(jobID)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.addAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach conversion service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError("job status", resp)
	}

	var job models.Job
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, fmt.Errorf("failed to decode job: %w", err)
	}
	return &job, nil
}

// ListJobs fetches up to limit job summaries, most recent first.
func (c *Client) ListJobs(ctx context.Context, limit int) (*models.JobList, error) {
	endpoint := fmt.Sprintf("%s/api/jobs?limit=%d", c.baseURL, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.addAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach conversion service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError("job list", resp)
	}

	var list models.JobList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode job list: %w", err)
	}
	return &list, nil
}

// Download opens a binary stream for one result artifact. The caller
// must close the returned reader.
func (c *Client) Download(ctx context.Context, artifactPath string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/download/"+escapePath(artifactPath), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.addAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach conversion service: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, newStatusError("download", resp)
	}
	return resp.Body, nil
}

// DeleteJob removes the server-side record and artifacts of a job.
func (c *Client) DeleteJob(ctx context.Context, jobID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/api/job/%s", c.baseURL, url.PathEscape(jobID)), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.addAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach conversion service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return newStatusError("delete", resp)
	}
	return nil
}

// CleanupResult reports the outcome of a retention sweep.
type CleanupResult struct {
	Message     string `json:"message"`
	JobsCleaned int    `json:"jobs_cleaned"`
}

// Cleanup asks the server to delete jobs older than the given number of days.
func (c *Client) Cleanup(ctx context.Context, days int) (*CleanupResult, error) {
	endpoint := fmt.Sprintf("%s/api/cleanup?days=%d", c.baseURL, days)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.addAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach conversion service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError("cleanup", resp)
	}

	var result CleanupResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode cleanup result: %w", err)
	}
	return &result, nil
}

// HealthStatus is the liveness payload of the conversion service.
type HealthStatus struct {
	Status     string `json:"status"`
	ActiveJobs int    `json:"active_jobs"`
	TotalJobs  int    `json:"total_jobs"`
}

// Health probes the service liveness endpoint.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.addAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach conversion service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError("health", resp)
	}

	var health HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	return &health, nil
}

// escapePath URL-escapes every segment of a server-relative artifact
// path while keeping the separators intact.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

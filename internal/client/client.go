package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"thermostat_dashboard/internal/models"
)

const defaultRequestTimeout = 10 * time.Second

// Client is the HTTP API client for the thermostat dashboard backend.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New builds a client for the given base URL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultRequestTimeout},
	}
}

// apiError carries the server's {message, field} body alongside the status.
type apiError struct {
	Status  int
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *apiError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("api status %d: %s (%s)", e.Status, e.Message, e.Field)
	}
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotModified {
		return resp.StatusCode, nil
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := &apiError{Status: resp.StatusCode, Message: resp.Status}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return resp.StatusCode, apiErr
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}

// ListThermostats fetches all records.
func (c *Client) ListThermostats(ctx context.Context) ([]models.ThermostatRecord, error) {
	var list []models.ThermostatRecord
	if _, err := c.do(ctx, http.MethodGet, "/api/thermostats", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetThermostat fetches one record.
func (c *Client) GetThermostat(ctx context.Context, id int) (models.ThermostatRecord, error) {
	var rec models.ThermostatRecord
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/thermostats/%d", id), nil, &rec); err != nil {
		return models.ThermostatRecord{}, err
	}
	return rec, nil
}

// UpdateThermostat sends a partial update and returns the merged record.
func (c *Client) UpdateThermostat(ctx context.Context, id int, patch models.UpdateThermostat) (models.ThermostatRecord, error) {
	var rec models.ThermostatRecord
	if _, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/thermostats/%d", id), patch, &rec); err != nil {
		return models.ThermostatRecord{}, err
	}
	return rec, nil
}

// PollThermostat asks whether the record changed after since (epoch ms).
// modified=false means the server answered 304.
func (c *Client) PollThermostat(ctx context.Context, id int, since int64) (models.ThermostatRecord, bool, error) {
	var rec models.ThermostatRecord
	path := fmt.Sprintf("/api/thermostats/%d/poll?since=%d", id, since)
	status, err := c.do(ctx, http.MethodGet, path, nil, &rec)
	if err != nil {
		return models.ThermostatRecord{}, false, err
	}
	if status == http.StatusNotModified {
		return models.ThermostatRecord{}, false, nil
	}
	return rec, true, nil
}

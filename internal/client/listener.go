package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"thermostat_dashboard/internal/models"
)

// ListenThermostat consumes the server's event stream for one record, calling
// onUpdate for every "update" event. It blocks until the stream ends or ctx is
// canceled; "connected" and "ping" events are consumed silently.
func (c *Client) ListenThermostat(ctx context.Context, id int, onUpdate func(models.ThermostatRecord)) error {
	path := fmt.Sprintf("/api/thermostats/%d/listen", id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build listen request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	// The stream stays open indefinitely; bypass the client-wide timeout.
	httpc := &http.Client{Transport: c.httpc.Transport}
	resp, err := httpc.Do(req)
	if err != nil {
		return fmt.Errorf("open event stream: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &apiError{Status: resp.StatusCode, Message: resp.Status}
	}

	var event string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			event = ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if event != "update" {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			var rec models.ThermostatRecord
			if err := json.Unmarshal([]byte(data), &rec); err != nil {
				return fmt.Errorf("decode update event: %w", err)
			}
			onUpdate(rec)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read event stream: %w", err)
	}
	return nil
}

package client

import (
	"context"
	"sync"
	"time"

	"thermostat_dashboard/internal/logger"
	"thermostat_dashboard/internal/models"
)

const (
	// DefaultQuietWindow is how long the set point must stay unchanged before
	// the pending update is sent.
	DefaultQuietWindow = 400 * time.Millisecond

	defaultPollInterval = 2 * time.Second
	reconnectDelay      = 2 * time.Second
)

// Controller reconciles user-driven changes with authoritative server state
// for one thermostat: it applies changes locally right away, coalesces rapid
// set point input into one request, and rolls the cache back when that
// request fails.
type Controller struct {
	client   *Client
	cache    *Cache
	log      *logger.Logger
	recordID int
	quiet    time.Duration

	mu            sync.Mutex
	displayTarget int
	hasDisplay    bool
	adjusting     bool
	pending       *time.Timer
}

// NewController builds a controller for the given record. quiet <= 0 selects
// DefaultQuietWindow.
func NewController(client *Client, cache *Cache, log *logger.Logger, recordID int, quiet time.Duration) *Controller {
	if quiet <= 0 {
		quiet = DefaultQuietWindow
	}
	return &Controller{
		client:   client,
		cache:    cache,
		log:      log,
		recordID: recordID,
		quiet:    quiet,
	}
}

// DisplayTarget is the locally-displayed set point: the user's latest input
// when one is in flight, the cached server value otherwise.
func (c *Controller) DisplayTarget() int {
	c.mu.Lock()
	if c.hasDisplay {
		v := c.displayTarget
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	rec, ok := c.cache.Get(c.recordID)
	if !ok {
		return 0
	}
	return rec.TargetTemp
}

// BeginAdjust marks the start of a drag interaction; server state stops
// overwriting the local set point until EndAdjust.
func (c *Controller) BeginAdjust() {
	c.mu.Lock()
	c.adjusting = true
	c.mu.Unlock()
}

// EndAdjust resumes synchronization with server state.
func (c *Controller) EndAdjust() {
	c.mu.Lock()
	c.adjusting = false
	c.mu.Unlock()
}

// SetTargetTemp records the user's set point immediately and (re)arms the
// debounce timer. Only the value present when the quiet window elapses is
// sent; earlier values within the window are superseded.
func (c *Controller) SetTargetTemp(v int) {
	if v < models.MinTargetTemp {
		v = models.MinTargetTemp
	}
	if v > models.MaxTargetTemp {
		v = models.MaxTargetTemp
	}

	c.mu.Lock()
	c.displayTarget = v
	c.hasDisplay = true
	if c.pending != nil {
		c.pending.Stop()
	}
	val := v
	c.pending = time.AfterFunc(c.quiet, func() {
		c.mu.Lock()
		c.pending = nil
		c.mu.Unlock()
		c.submit(models.UpdateThermostat{TargetTemp: &val})
	})
	c.mu.Unlock()
}

// SetSystemMode sends a mode change right away (mode taps are discrete, no
// debounce) with the same optimistic apply/rollback handling.
func (c *Controller) SetSystemMode(mode string) {
	c.submit(models.UpdateThermostat{SystemMode: &mode})
}

// SetFanMode sends a fan mode change right away.
func (c *Controller) SetFanMode(mode string) {
	c.submit(models.UpdateThermostat{FanMode: &mode})
}

// submit performs one optimistic mutation round-trip: patch the cache, send
// the request, roll back on failure, and refresh from the server on settle
// either way.
func (c *Controller) submit(patch models.UpdateThermostat) {
	snapshot := c.cache.Patch(c.recordID, patch)

	ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
	defer cancel()

	if _, err := c.client.UpdateThermostat(ctx, c.recordID, patch); err != nil {
		c.cache.Restore(snapshot)
		if c.log != nil {
			c.log.Warnw("thermostat_update_failed", "err", err, "thermostat_id", c.recordID)
		}
	}
	c.refresh(ctx)
}

// refresh converges the cache on authoritative server state.
func (c *Controller) refresh(ctx context.Context) {
	list, err := c.client.ListThermostats(ctx)
	if err != nil {
		c.cache.MarkConnectionLost()
		if c.log != nil {
			c.log.Warnw("thermostat_refresh_failed", "err", err)
		}
		return
	}

	// Don't clobber the local set point while input is still settling.
	c.mu.Lock()
	if c.hasDisplay && (c.adjusting || c.pending != nil) {
		for i := range list {
			if list[i].ID == c.recordID {
				list[i].TargetTemp = c.displayTarget
			}
		}
	}
	c.mu.Unlock()

	c.cache.Replace(list)
}

// ApplyServerUpdate folds a poll or stream record into the cache. While the
// user is dragging or an update is pending, the local set point wins; once
// input settles the server value is adopted as the display value.
func (c *Controller) ApplyServerUpdate(rec models.ThermostatRecord) {
	if rec.ID == c.recordID {
		c.mu.Lock()
		if c.hasDisplay && (c.adjusting || c.pending != nil) {
			rec.TargetTemp = c.displayTarget
		} else {
			c.displayTarget = rec.TargetTemp
			c.hasDisplay = true
		}
		c.mu.Unlock()
	}
	c.cache.ApplyRecord(rec)
}

// RunPoller launches a background goroutine that re-polls at a fixed cadence,
// conditioned on the cached record's version. It returns immediately.
func (c *Controller) RunPoller(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.pollOnce(ctx)
			}
		}
	}()
}

func (c *Controller) pollOnce(ctx context.Context) {
	var since int64
	if rec, ok := c.cache.Get(c.recordID); ok {
		since = rec.Version()
	}
	rec, modified, err := c.client.PollThermostat(ctx, c.recordID, since)
	if err != nil {
		c.cache.MarkConnectionLost()
		if c.log != nil {
			c.log.Warnw("thermostat_poll_failed", "err", err)
		}
		return
	}
	if modified {
		c.ApplyServerUpdate(rec)
	}
}

// RunListener launches a background goroutine that consumes the server's
// event stream, reconnecting after transient failures. It returns immediately.
func (c *Controller) RunListener(ctx context.Context) {
	go func() {
		for {
			err := c.client.ListenThermostat(ctx, c.recordID, c.ApplyServerUpdate)
			if ctx.Err() != nil {
				return
			}
			c.cache.MarkConnectionLost()
			if c.log != nil {
				c.log.Warnw("thermostat_stream_lost", "err", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectDelay):
			}
		}
	}()
}

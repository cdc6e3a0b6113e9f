package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// pingInterval is the keep-alive cadence for held-open streams; intermediaries
// tend to cut idle connections well above 30s.
const pingInterval = 30 * time.Second

// @Summary      Stream changes
// @Description  Server-sent events: connected, update (full record), ping every 30s
// @Tags         thermostats
// @Produce      text/event-stream
// @Param        id   path  int  true  "Thermostat id"
// @Success      200  "event stream"
// @Failure      404  {object}  map[string]string
// @Router       /api/thermostats/{id}/listen [get]
func (h *Handler) listenThermostat(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": msgNotFound})
		return
	}
	if _, err := h.services.Get(c.Request.Context(), id); err != nil {
		h.respondServiceError(c, err, msgGetFailed, "thermostat_listen_failed")
		return
	}

	// Attach to the change feed before the first write so no update between
	// connect and subscribe is missed.
	sub := h.services.Subscribe(id)
	defer sub.Unsubscribe()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.SSEvent("connected", gin.H{"message": fmt.Sprintf("listening for thermostat %d changes", id)})
	c.Writer.Flush()

	if h.log != nil {
		h.log.Infow("stream_connected", "thermostat_id", id, "subscription", sub.ID)
	}

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			if h.log != nil {
				h.log.Infow("stream_closed", "thermostat_id", id, "subscription", sub.ID)
			}
			return
		case rec, open := <-sub.C:
			if !open {
				return
			}
			c.SSEvent("update", rec)
			c.Writer.Flush()
		case <-ping.C:
			c.SSEvent("ping", gin.H{"time": time.Now().UTC().Format(time.RFC3339)})
			c.Writer.Flush()
		}
	}
}

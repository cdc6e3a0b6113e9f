package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"thermostat_dashboard/internal/models"
	"thermostat_dashboard/internal/service"
)

const (
	msgNotFound    = "Thermostat not found"
	msgListFailed  = "failed to load thermostats"
	msgGetFailed   = "failed to load thermostat"
	msgWriteFailed = "failed to update thermostat"
)

// parseID reads the :id path parameter. A non-numeric id behaves like an
// unknown one.
func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, false
	}
	return id, true
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"message": userMsg})
}

// respondServiceError maps service-layer errors onto the HTTP taxonomy:
// validation → 400 with field, unknown id → 404, anything else → 500.
func (h *Handler) respondServiceError(c *gin.Context, err error, fallbackMsg, logKey string) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		body := gin.H{"message": vErr.Message}
		if vErr.Field != "" {
			body["field"] = vErr.Field
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": msgNotFound})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, fallbackMsg, logKey, err)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// @Summary      List thermostats
// @Description  Seeds one default thermostat when the store is empty
// @Tags         thermostats
// @Produce      json
// @Success      200  {array}   models.ThermostatRecord
// @Failure      500  {object}  map[string]string
// @Router       /api/thermostats [get]
func (h *Handler) listThermostats(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := h.services.List(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, msgListFailed, "thermostat_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Get thermostat
// @Tags         thermostats
// @Produce      json
// @Param        id   path      int  true  "Thermostat id"
// @Success      200  {object}  models.ThermostatRecord
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/thermostats/{id} [get]
func (h *Handler) getThermostat(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": msgNotFound})
		return
	}
	rec, err := h.services.Get(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err, msgGetFailed, "thermostat_get_failed")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// @Summary      Update thermostat
// @Description  Partial update: any subset of name/currentTemp/targetTemp/systemMode/fanMode/currentHumidity
// @Tags         thermostats
// @Accept       json
// @Produce      json
// @Param        id    path      int                      true  "Thermostat id"
// @Param        body  body      models.UpdateThermostat  true  "Fields to change"
// @Success      200   {object}  models.ThermostatRecord
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/thermostats/{id} [patch]
func (h *Handler) updateThermostat(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": msgNotFound})
		return
	}

	// Strict decode so id, lastUpdated, and misspelled fields are rejected
	// rather than silently dropped.
	var patch models.UpdateThermostat
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body: " + err.Error()})
		return
	}

	rec, err := h.services.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.respondServiceError(c, err, msgWriteFailed, "thermostat_update_failed")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// @Summary      Poll for changes
// @Description  Returns 304 when the record has not changed since the given epoch-ms timestamp
// @Tags         thermostats
// @Produce      json
// @Param        id     path   int    true   "Thermostat id"
// @Param        since  query  int64  false  "Last seen lastUpdated, epoch ms"
// @Success      200  {object}  models.ThermostatRecord
// @Success      304  "not modified"
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/thermostats/{id}/poll [get]
func (h *Handler) pollThermostat(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": msgNotFound})
		return
	}

	var since int64
	hasSince := false
	if raw := c.Query("since"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "must be an epoch-ms integer", "field": "since"})
			return
		}
		since = v
		hasSince = true
	}

	rec, modified, err := h.services.Poll(c.Request.Context(), id, since, hasSince)
	if err != nil {
		h.respondServiceError(c, err, msgGetFailed, "thermostat_poll_failed")
		return
	}
	if !modified {
		c.Status(http.StatusNotModified)
		return
	}
	c.JSON(http.StatusOK, rec)
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"thermostat_dashboard/internal/models"
	"thermostat_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

func newTestRouter(m *mockSync) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(&service.Service{Sync: m}, nil)
	return h.InitRoutes()
}

func TestListThermostats(t *testing.T) {
	m := &mockSync{list: []models.ThermostatRecord{sampleRecord(70)}}
	r := newTestRouter(m)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/thermostats", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var list []models.ThermostatRecord
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Living Room" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestGetThermostat_NotFound(t *testing.T) {
	m := &mockSync{getErr: service.ErrNotFound}
	r := newTestRouter(m)

	for _, path := range []string{"/api/thermostats/9", "/api/thermostats/bogus"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s: status = %d, want 404", path, w.Code)
		}
		var body map[string]string
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["message"] != msgNotFound {
			t.Fatalf("%s: body = %s", path, w.Body.String())
		}
	}
}

func TestUpdateThermostat_PatchesAndReturnsMergedRecord(t *testing.T) {
	m := &mockSync{updated: sampleRecord(74)}
	r := newTestRouter(m)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/thermostats/1", bytes.NewBufferString(`{"targetTemp":74}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	if m.updateCall != 1 || m.lastID != 1 {
		t.Fatalf("update calls = %d id = %d", m.updateCall, m.lastID)
	}
	if m.lastPatch.TargetTemp == nil || *m.lastPatch.TargetTemp != 74 {
		t.Fatalf("patch not forwarded: %+v", m.lastPatch)
	}
	if m.lastPatch.SystemMode != nil || m.lastPatch.Name != nil {
		t.Fatalf("unset fields leaked into patch: %+v", m.lastPatch)
	}

	var rec models.ThermostatRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.TargetTemp != 74 {
		t.Fatalf("response targetTemp = %d, want 74", rec.TargetTemp)
	}
}

func TestUpdateThermostat_ValidationErrorHas400WithField(t *testing.T) {
	m := &mockSync{updateErr: &service.ValidationError{Field: "targetTemp", Message: "must be between 50 and 90"}}
	r := newTestRouter(m)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/thermostats/1", bytes.NewBufferString(`{"targetTemp":95}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["field"] != "targetTemp" || body["message"] == "" {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestUpdateThermostat_RejectsMalformedAndUnknownFields(t *testing.T) {
	m := &mockSync{updated: sampleRecord(70)}
	r := newTestRouter(m)

	for _, body := range []string{`{`, `{"lastUpdated":"2024-06-01T00:00:00Z"}`, `{"id":2}`, `{"bogus":1}`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/api/thermostats/1", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400", body, w.Code)
		}
	}
	if m.updateCall != 0 {
		t.Fatalf("service reached despite invalid bodies (%d calls)", m.updateCall)
	}
}

func TestPollThermostat(t *testing.T) {
	rec := sampleRecord(70)

	t.Run("no_since_returns_record", func(t *testing.T) {
		m := &mockSync{pollRec: rec, pollModified: true}
		r := newTestRouter(m)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/thermostats/1/poll", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if m.lastHasSince {
			t.Fatal("hasSince = true for a request without since")
		}
	})

	t.Run("not_modified_is_304_empty", func(t *testing.T) {
		m := &mockSync{pollModified: false}
		r := newTestRouter(m)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/thermostats/1/poll?since=1717243200000", nil))
		if w.Code != http.StatusNotModified {
			t.Fatalf("status = %d, want 304", w.Code)
		}
		if w.Body.Len() != 0 {
			t.Fatalf("304 carried a body: %s", w.Body.String())
		}
		if !m.lastHasSince || m.lastSince != 1717243200000 {
			t.Fatalf("since not forwarded: %d/%v", m.lastSince, m.lastHasSince)
		}
	})

	t.Run("malformed_since_is_400", func(t *testing.T) {
		m := &mockSync{}
		r := newTestRouter(m)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/thermostats/1/poll?since=abc", nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		var body map[string]string
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["field"] != "since" {
			t.Fatalf("body = %s", w.Body.String())
		}
	})

	t.Run("unknown_id_is_404", func(t *testing.T) {
		m := &mockSync{pollErr: service.ErrNotFound}
		r := newTestRouter(m)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/thermostats/9/poll", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&mockSync{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"thermostat_dashboard/internal/models"
)

func TestListenThermostat_ParsesUpdateEventsOnly(t *testing.T) {
	rec := cachedRecord(74)
	raw, _ := json.Marshal(rec)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/thermostats/1/listen" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event:connected\ndata:{\"message\":\"listening for thermostat 1 changes\"}\n\n")
		fmt.Fprint(w, "event:ping\ndata:{\"time\":\"2024-06-01T12:00:00Z\"}\n\n")
		fmt.Fprintf(w, "event:update\ndata:%s\n\n", raw)
	}))
	defer srv.Close()

	var got []models.ThermostatRecord
	err := New(srv.URL).ListenThermostat(context.Background(), 1, func(rec models.ThermostatRecord) {
		got = append(got, rec)
	})
	if err != nil {
		t.Fatalf("ListenThermostat() error = %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("updates = %d, want 1 (connected/ping must be skipped)", len(got))
	}
	if got[0].TargetTemp != 74 || got[0].Name != "Living Room" {
		t.Fatalf("unexpected update: %+v", got[0])
	}
}

func TestListenThermostat_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Thermostat not found"}`))
	}))
	defer srv.Close()

	err := New(srv.URL).ListenThermostat(context.Background(), 9, func(models.ThermostatRecord) {})
	if err == nil {
		t.Fatal("expected error for 404 stream")
	}
}

func TestPollThermostat_304MeansNotModified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("since") == "1000" {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		_ = json.NewEncoder(w).Encode(cachedRecord(74))
	}))
	defer srv.Close()

	c := New(srv.URL)

	_, modified, err := c.PollThermostat(context.Background(), 1, 1000)
	if err != nil || modified {
		t.Fatalf("poll since=1000: modified=%v err=%v, want not modified", modified, err)
	}

	rec, modified, err := c.PollThermostat(context.Background(), 1, 999)
	if err != nil || !modified {
		t.Fatalf("poll since=999: modified=%v err=%v, want modified", modified, err)
	}
	if rec.TargetTemp != 74 {
		t.Fatalf("poll record = %+v", rec)
	}
}

func TestRunListener_FeedsServerUpdatesIntoCache(t *testing.T) {
	rec := cachedRecord(76)
	raw, _ := json.Marshal(rec)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "event:update\ndata:%s\n\n", raw)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		// Hold the stream open until the client goes away.
		<-r.Context().Done()
	}))
	defer srv.Close()

	cache := NewCache()
	cache.Replace([]models.ThermostatRecord{cachedRecord(70)})
	c := NewController(New(srv.URL), cache, nil, 1, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.RunListener(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got, _ := cache.Get(1); got.TargetTemp == 76 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	got, _ := cache.Get(1)
	t.Fatalf("cache targetTemp = %d, want streamed 76", got.TargetTemp)
}

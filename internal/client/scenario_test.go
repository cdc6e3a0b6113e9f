package client_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"thermostat_dashboard/internal/client"
	"thermostat_dashboard/internal/handlers"
	"thermostat_dashboard/internal/models"
	"thermostat_dashboard/internal/pubsub"
	"thermostat_dashboard/internal/repository"
	"thermostat_dashboard/internal/service"
)

// End-to-end set-point change against the real stack: seed, debounced PATCH,
// then timestamp-conditioned polls before and after the write.
func TestSetPointRoundTrip(t *testing.T) {
	repos := &repository.Repository{Records: repository.NewRecordMemory()}
	services := service.NewService(repos, pubsub.NewFeed())
	srv := httptest.NewServer(handlers.NewHandler(services, nil).InitRoutes())
	defer srv.Close()

	api := client.New(srv.URL)
	ctx := context.Background()

	// First list seeds the default record.
	list, err := api.ListThermostats(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].TargetTemp != 70 {
		t.Fatalf("unexpected seed: %+v", list)
	}
	rec := list[0]
	t0 := rec.Version()

	// Nothing changed yet: poll conditioned on t0 answers not modified.
	if _, modified, err := api.PollThermostat(ctx, rec.ID, t0); err != nil || modified {
		t.Fatalf("pre-write poll: modified=%v err=%v", modified, err)
	}

	cache := client.NewCache()
	cache.Replace(list)
	ctrl := client.NewController(api, cache, nil, rec.ID, 40*time.Millisecond)

	// User drags 70 → 74; one request after the quiet window.
	ctrl.SetTargetTemp(72)
	ctrl.SetTargetTemp(74)
	time.Sleep(300 * time.Millisecond)

	updated, err := api.GetThermostat(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get after settle: %v", err)
	}
	if updated.TargetTemp != 74 {
		t.Fatalf("server targetTemp = %d, want 74", updated.TargetTemp)
	}
	if updated.Version() <= t0 {
		t.Fatalf("lastUpdated did not advance: %d <= %d", updated.Version(), t0)
	}

	// The same t0-conditioned poll now yields the full updated record.
	polled, modified, err := api.PollThermostat(ctx, rec.ID, t0)
	if err != nil || !modified {
		t.Fatalf("post-write poll: modified=%v err=%v", modified, err)
	}
	if polled.TargetTemp != 74 {
		t.Fatalf("post-write poll record = %+v", polled)
	}

	// The settle refresh converged the cache on authoritative state.
	cached, ok := cache.Get(rec.ID)
	if !ok || cached.TargetTemp != 74 {
		t.Fatalf("cache did not converge: %+v (ok=%v)", cached, ok)
	}

	// The server refuses an out-of-range set point sent past the client clamp.
	bad := 49
	if _, err := api.UpdateThermostat(ctx, rec.ID, models.UpdateThermostat{TargetTemp: &bad}); err == nil {
		t.Fatal("expected validation error for targetTemp 49")
	}
}

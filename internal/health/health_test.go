package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fixed(status Status) CheckFunc {
	return func(context.Context) Result { return Result{Status: status} }
}

func TestRun_WorstOf(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"none", nil, Healthy},
		{"all healthy", []Status{Healthy, Healthy}, Healthy},
		{"one degraded", []Status{Healthy, Degraded}, Degraded},
		{"unhealthy wins", []Status{Degraded, Unhealthy, Healthy}, Unhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator(time.Second)
			for i, s := range tt.statuses {
				agg.Register(string(rune('a'+i)), fixed(s), Unhealthy)
			}
			if got := agg.Run(context.Background(), All).Status; got != tt.want {
				t.Errorf("Status = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRun_TagPredicate(t *testing.T) {
	agg := NewAggregator(time.Second)
	agg.Register("self", fixed(Healthy), Unhealthy, "live")
	agg.Register("store", Ping(func(context.Context) error { return errors.New("connection refused") }, Unhealthy), Unhealthy, "db", "ready")
	agg.Register("cache", Ping(func(context.Context) error { return errors.New("i/o timeout") }, Degraded), Degraded, "cache", "ready")

	live := agg.Run(context.Background(), HasTag("live"))
	if live.Status != Healthy || len(live.Entries) != 1 {
		t.Errorf("live = %v with %d entries, want Healthy with 1", live.Status, len(live.Entries))
	}

	ready := agg.Run(context.Background(), HasTag("ready"))
	if ready.Status != Unhealthy {
		t.Errorf("ready = %v, want Unhealthy", ready.Status)
	}
	if _, ok := ready.Entries["self"]; ok {
		t.Error("ready view includes the live-only check")
	}
	if got := ready.Entries["cache"]; got.Status != Degraded || got.Description != "i/o timeout" {
		t.Errorf("cache entry = %+v", got)
	}
	if got := ready.Entries["store"].Tags; len(got) != 2 || got[0] != "db" || got[1] != "ready" {
		t.Errorf("store tags = %v", got)
	}

	all := agg.Run(context.Background(), nil)
	if len(all.Entries) != 3 {
		t.Errorf("unfiltered entries = %d, want 3", len(all.Entries))
	}
}

func TestRun_TimeoutReportsFailureStatus(t *testing.T) {
	agg := NewAggregator(20 * time.Millisecond)
	release := make(chan struct{})
	defer close(release)
	agg.Register("broker", func(ctx context.Context) Result {
		<-release
		return Result{Status: Healthy}
	}, Degraded, "ready")

	start := time.Now()
	report := agg.Run(context.Background(), All)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Run took %v, want bounded by the check timeout", elapsed)
	}
	if report.Status != Degraded {
		t.Errorf("Status = %v, want Degraded", report.Status)
	}
}

func TestRun_ChecksRunConcurrently(t *testing.T) {
	agg := NewAggregator(time.Second)
	for _, name := range []string{"a", "b", "c", "d"} {
		agg.Register(name, func(ctx context.Context) Result {
			time.Sleep(100 * time.Millisecond)
			return Result{Status: Healthy}
		}, Unhealthy)
	}

	start := time.Now()
	agg.Run(context.Background(), All)
	if elapsed := time.Since(start); elapsed >= 350*time.Millisecond {
		t.Errorf("Run took %v, want checks to overlap", elapsed)
	}
}

func TestRun_PanickingCheck(t *testing.T) {
	agg := NewAggregator(time.Second)
	agg.Register("boom", func(context.Context) Result { panic("nil map") }, Unhealthy)

	report := agg.Run(context.Background(), All)
	if report.Status != Unhealthy {
		t.Errorf("Status = %v, want Unhealthy", report.Status)
	}
}

func TestStatusText(t *testing.T) {
	for status, want := range map[Status]string{Healthy: "Healthy", Degraded: "Degraded", Unhealthy: "Unhealthy"} {
		b, _ := status.MarshalText()
		if string(b) != want {
			t.Errorf("MarshalText(%d) = %s, want %s", status, b, want)
		}
	}
}

package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"taskgate/internal/model"
)

type memoryAuditStore struct {
	events []model.AuditEvent
	err    error
}

func (s *memoryAuditStore) Create(_ context.Context, event *model.AuditEvent) error {
	if s.err != nil {
		return s.err
	}
	event.ID = uint(len(s.events) + 1)
	s.events = append(s.events, *event)
	return nil
}

func newTestWorker(store AuditStore) *AuditPersistWorker {
	return NewAuditPersistWorker(nil, store, "account.audit", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandle(t *testing.T) {
	store := &memoryAuditStore{}
	w := newTestWorker(store)

	body := []byte(`{"id":99,"type":"account.registered","account_id":4,"username":"alice","trace_id":"abc","occurred_at":"2026-03-01T10:00:00Z"}`)
	if err := w.handle(context.Background(), body); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.events) != 1 {
		t.Fatalf("stored %d events, want 1", len(store.events))
	}
	got := store.events[0]
	if got.ID != 1 {
		t.Errorf("ID = %d, want store-assigned 1", got.ID)
	}
	if got.Type != model.AuditAccountRegistered || got.AccountID != 4 || got.TraceID != "abc" {
		t.Errorf("event = %+v", got)
	}
	if !got.OccurredAt.Equal(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("OccurredAt = %v", got.OccurredAt)
	}
}

func TestHandle_Malformed(t *testing.T) {
	w := newTestWorker(&memoryAuditStore{})

	for _, body := range []string{`not json`, `{"type":""}`, `{"type":"account.registered"}`} {
		if err := w.handle(context.Background(), []byte(body)); !errors.Is(err, errMalformedEvent) {
			t.Errorf("handle(%s) = %v, want errMalformedEvent", body, err)
		}
	}
}

func TestHandle_StoreFailure(t *testing.T) {
	storeErr := errors.New("db down")
	w := newTestWorker(&memoryAuditStore{err: storeErr})

	body := []byte(`{"type":"account.login_failed","username":"bob","occurred_at":"2026-03-01T10:00:00Z"}`)
	err := w.handle(context.Background(), body)
	if !errors.Is(err, storeErr) || errors.Is(err, errMalformedEvent) {
		t.Errorf("handle = %v, want store error", err)
	}
}

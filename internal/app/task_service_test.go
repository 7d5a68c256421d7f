package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestTaskService_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewTaskService(newFakeTaskRepo(), nil, discardLogger())

	tasks, err := svc.List(ctx)
	if err != nil || len(tasks) != 0 {
		t.Fatalf("List on empty store = %v, %v", tasks, err)
	}

	created, err := svc.Create(ctx, TaskInput{Title: "Write docs"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 || created.Title != "Write docs" || created.IsCompleted {
		t.Errorf("created = %+v", created)
	}

	if err := svc.Update(ctx, created.ID, TaskInput{Title: "Write more docs", IsCompleted: true}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Write more docs" || !got.IsCompleted {
		t.Errorf("after update = %+v", got)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, created.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("GetByID after delete = %v, want ErrTaskNotFound", err)
	}
}

func TestTaskService_NotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewTaskService(newFakeTaskRepo(), nil, discardLogger())

	if err := svc.Update(ctx, 99, TaskInput{Title: "x"}); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Update missing = %v, want ErrTaskNotFound", err)
	}
	if err := svc.Delete(ctx, 99); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Delete missing = %v, want ErrTaskNotFound", err)
	}
}

func TestTaskService_TitleValidation(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTaskRepo()
	svc := NewTaskService(repo, nil, discardLogger())

	tests := []struct {
		title   string
		wantErr bool
	}{
		{"a", false},
		{strings.Repeat("t", 200), false},
		{strings.Repeat("t", 201), true},
		{"", true},
		{"   ", true},
	}
	for _, tt := range tests {
		_, err := svc.Create(ctx, TaskInput{Title: tt.title})
		if tt.wantErr != errors.Is(err, ErrValidation) {
			t.Errorf("Create(len %d) = %v, wantErr %v", len(tt.title), err, tt.wantErr)
		}
	}
	if len(repo.tasks) != 2 {
		t.Errorf("stored %d tasks, want 2", len(repo.tasks))
	}

	existing, _ := svc.Create(ctx, TaskInput{Title: "keep me"})
	if err := svc.Update(ctx, existing.ID, TaskInput{Title: ""}); !errors.Is(err, ErrValidation) {
		t.Errorf("Update blank = %v, want ErrValidation", err)
	}
	got, _ := svc.GetByID(ctx, existing.ID)
	if got.Title != "keep me" {
		t.Errorf("title after rejected update = %q, want unchanged", got.Title)
	}
}

func TestTaskService_ListCache(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTaskRepo()
	cache := newFakeTaskCache()
	svc := NewTaskService(repo, cache, discardLogger())

	if _, err := svc.Create(ctx, TaskInput{Title: "one"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := cache.invalidations(); got != 1 {
		t.Errorf("invalidated = %d after create, want 1", got)
	}

	first, _ := svc.List(ctx)
	second, _ := svc.List(ctx)
	if repo.calls != 1 {
		t.Errorf("repository List calls = %d, want 1 (second read served from cache)", repo.calls)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Errorf("lists = %v / %v", first, second)
	}

	if err := svc.Update(ctx, first[0].ID, TaskInput{Title: "uno", IsCompleted: true}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	after, _ := svc.List(ctx)
	if repo.calls != 2 || after[0].Title != "uno" {
		t.Errorf("after update: calls %d, list %+v", repo.calls, after)
	}
}

func TestTaskService_LateRepopulateAfterWrite(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTaskRepo()
	cache := newFakeTaskCache()
	svc := NewTaskService(repo, cache, discardLogger())

	reached := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	cache.beforeSet = func() {
		once.Do(func() {
			close(reached)
			<-release
		})
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.List(ctx)
		done <- err
	}()

	// The reader has loaded the empty list and is about to store it.
	<-reached
	if _, err := svc.Create(ctx, TaskInput{Title: "buy milk"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("concurrent List: %v", err)
	}

	tasks, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "buy milk" {
		t.Errorf("List after create = %+v, want the created task", tasks)
	}
}

func TestTaskService_CacheFailureFallsBackToStore(t *testing.T) {
	repo := newFakeTaskRepo()
	cache := newFakeTaskCache()
	cache.failReads = true
	svc := NewTaskService(repo, cache, discardLogger())
	ctx := context.Background()
	_, _ = svc.Create(ctx, TaskInput{Title: "one"})

	tasks, err := svc.List(ctx)
	if err != nil || len(tasks) != 1 {
		t.Errorf("List with broken cache = %v, %v", tasks, err)
	}
}

func TestTaskService_StoreErrorPropagates(t *testing.T) {
	repo := newFakeTaskRepo()
	repo.err = errors.New("db down")
	svc := NewTaskService(repo, nil, discardLogger())

	if _, err := svc.List(context.Background()); err == nil {
		t.Error("List = nil error, want store failure")
	}
}

package app

import (
	"context"
	"log/slog"
	"strings"

	"taskgate/internal/model"
)

type TaskRepository interface {
	List(ctx context.Context) ([]model.Task, error)
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uint) (*model.Task, error)
	Update(ctx context.Context, id uint, title string, isCompleted bool) (*model.Task, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

// TaskCache holds the materialized task list per generation. Invalidate
// advances the generation, so a list stored under an older one is never read
// again. The database stays the source of truth; cache failures only cost a
// round trip.
type TaskCache interface {
	Generation(ctx context.Context) (int64, error)
	GetList(ctx context.Context, gen int64) ([]model.Task, bool, error)
	SetList(ctx context.Context, gen int64, tasks []model.Task) error
	Invalidate(ctx context.Context) error
}

type TaskInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	IsCompleted bool   `json:"isCompleted"`
}

type TaskService struct {
	taskRepo TaskRepository
	cache    TaskCache
	logger   *slog.Logger
}

func NewTaskService(taskRepo TaskRepository, cache TaskCache, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		taskRepo: taskRepo,
		cache:    cache,
		logger:   logger,
	}
}

// List serves the cached list for the current generation when present. The
// generation is read before the store so a write that lands in between makes
// the repopulated entry unreachable.
func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	if s.cache == nil {
		return s.taskRepo.List(ctx)
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "read task list generation failed", "error", err)
		return s.taskRepo.List(ctx)
	}
	cached, ok, err := s.cache.GetList(ctx, gen)
	if err != nil {
		s.logger.WarnContext(ctx, "read task list cache failed", "error", err)
	} else if ok {
		return cached, nil
	}

	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetList(ctx, gen, tasks); err != nil {
		s.logger.WarnContext(ctx, "write task list cache failed", "error", err)
	}
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, input TaskInput) (*model.Task, error) {
	if err := validateTask(input); err != nil {
		return nil, err
	}
	task := &model.Task{
		Title:       input.Title,
		IsCompleted: input.IsCompleted,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return task, nil
}

func (s *TaskService) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// Update replaces both mutable fields. Concurrent updates to one id are not
// serialized; the last write the store sees wins.
func (s *TaskService) Update(ctx context.Context, id uint, input TaskInput) error {
	if err := validateTask(input); err != nil {
		return err
	}
	task, err := s.taskRepo.Update(ctx, id, input.Title, input.IsCompleted)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrTaskNotFound
	}
	s.invalidate(ctx)
	return nil
}

func (s *TaskService) Delete(ctx context.Context, id uint) error {
	deleted, err := s.taskRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTaskNotFound
	}
	s.invalidate(ctx)
	return nil
}

func (s *TaskService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "invalidate task list cache failed", "error", err)
	}
}

func validateTask(input TaskInput) error {
	var extra []string
	if input.Title != "" && strings.TrimSpace(input.Title) == "" {
		extra = append(extra, "title must not be blank")
	}
	return checkStruct(input, extra...)
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskgate/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	tasks := make([]model.Task, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks failed: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task failed: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task failed: %w", err)
	}
	return &task, nil
}

// Update overwrites title and completion flag in one statement. It returns
// nil when the row does not exist.
func (r *TaskRepository) Update(ctx context.Context, id uint, title string, isCompleted bool) (*model.Task, error) {
	result := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(map[string]any{
		"title":        title,
		"is_completed": isCompleted,
	})
	if result.Error != nil {
		return nil, fmt.Errorf("update task failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// MySQL reports zero affected rows when the values did not change.
		existing, err := r.GetByID(ctx, id)
		if err != nil || existing == nil {
			return nil, err
		}
	}
	return &model.Task{ID: id, Title: title, IsCompleted: isCompleted}, nil
}

// Delete reports whether a row was removed.
func (r *TaskRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("delete task failed: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

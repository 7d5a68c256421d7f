package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"taskgate/internal/model"
)

const (
	taskListKeyPrefix = "tasks:list:"
	taskListGenKey    = "tasks:list:gen"
)

// TaskCache keeps the serialized task list in redis under tasks:list:<gen>.
// Writers bump tasks:list:gen; entries of older generations expire by TTL.
type TaskCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewTaskCache(client *redisv9.Client, ttl time.Duration) *TaskCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &TaskCache{
		client: client,
		ttl:    ttl,
	}
}

func taskListKey(gen int64) string {
	return taskListKeyPrefix + strconv.FormatInt(gen, 10)
}

// Generation returns the current list generation. A missing counter is
// generation zero.
func (c *TaskCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, taskListGenKey).Int64()
	if errors.Is(err, redisv9.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get task list generation failed: %w", err)
	}
	return gen, nil
}

func (c *TaskCache) GetList(ctx context.Context, gen int64) ([]model.Task, bool, error) {
	raw, err := c.client.Get(ctx, taskListKey(gen)).Bytes()
	if errors.Is(err, redisv9.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get task list failed: %w", err)
	}

	var tasks []model.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached task list failed: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, true, nil
}

func (c *TaskCache) SetList(ctx context.Context, gen int64, tasks []model.Task) error {
	payload, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("marshal task list cache failed: %w", err)
	}
	if err := c.client.Set(ctx, taskListKey(gen), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set task list failed: %w", err)
	}
	return nil
}

func (c *TaskCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, taskListGenKey).Err(); err != nil {
		return fmt.Errorf("redis bump task list generation failed: %w", err)
	}
	return nil
}

// Ping is registered as the "cache" health check.
func (c *TaskCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"taskgate/internal/model"
	"taskgate/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	nextID   uint
	accounts map[uint]*model.Account

	// raceOnCreate simulates another request winning the unique index.
	raceOnCreate bool
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uint]*model.Account)}
}

func (r *fakeAccountRepo) Create(_ context.Context, account *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.raceOnCreate {
		return repository.ErrDuplicateKey
	}
	for _, existing := range r.accounts {
		if model.NormalizeUsername(existing.Username) == model.NormalizeUsername(account.Username) {
			return repository.ErrDuplicateKey
		}
	}
	r.nextID++
	account.ID = r.nextID
	stored := *account
	r.accounts[account.ID] = &stored
	return nil
}

func (r *fakeAccountRepo) GetByUsername(_ context.Context, username string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if model.NormalizeUsername(account.Username) == model.NormalizeUsername(username) {
			copied := *account
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id uint) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) UpdateProfile(_ context.Context, id uint, fields map[string]any) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return false, nil
	}
	for column, value := range fields {
		v := value.(string)
		switch column {
		case "name":
			account.Name = &v
		case "time_zone":
			account.TimeZone = &v
		case "preferences":
			account.Preferences = &v
		}
	}
	return true, nil
}

type fakeTaskRepo struct {
	mu     sync.Mutex
	nextID uint
	tasks  map[uint]model.Task
	calls  int
	err    error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uint]model.Task)}
}

func (r *fakeTaskRepo) List(context.Context) ([]model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	tasks := make([]model.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (r *fakeTaskRepo) Create(_ context.Context, task *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	task.ID = r.nextID
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id uint) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	return &task, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, id uint, title string, isCompleted bool) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	task.Title = title
	task.IsCompleted = isCompleted
	r.tasks[id] = task
	return &task, nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return false, nil
	}
	delete(r.tasks, id)
	return true, nil
}

type fakeTaskCache struct {
	mu          sync.Mutex
	gen         int64
	lists       map[int64][]model.Task
	invalidated int
	failReads   bool

	// beforeSet, when set, runs at the start of every SetList without the
	// lock held.
	beforeSet func()
}

func newFakeTaskCache() *fakeTaskCache {
	return &fakeTaskCache{lists: make(map[int64][]model.Task)}
}

func (c *fakeTaskCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func (c *fakeTaskCache) GetList(_ context.Context, gen int64) ([]model.Task, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failReads {
		return nil, false, errors.New("cache down")
	}
	list, ok := c.lists[gen]
	return list, ok, nil
}

func (c *fakeTaskCache) SetList(_ context.Context, gen int64, tasks []model.Task) error {
	if c.beforeSet != nil {
		c.beforeSet()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[gen] = tasks
	return nil
}

func (c *fakeTaskCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.invalidated++
	return nil
}

func (c *fakeTaskCache) invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}

type recordingAudit struct {
	mu     sync.Mutex
	events []model.AuditEvent
	err    error
}

func (a *recordingAudit) Record(_ context.Context, event model.AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return a.err
}

func (a *recordingAudit) types() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Type)
	}
	return out
}

type stubIssuer struct {
	err error
}

func (i stubIssuer) Issue(userID uint, username string) (string, time.Time, error) {
	if i.err != nil {
		return "", time.Time{}, i.err
	}
	return "token-for-" + username, time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC), nil
}

func newTestAccountService(t interface{ Fatalf(string, ...any) }, repo AccountRepository) *AccountService {
	svc, err := NewAccountService(repo, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewAccountService: %v", err)
	}
	return svc
}

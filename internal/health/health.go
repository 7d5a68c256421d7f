// Package health runs named checks and folds their results into one status.
package health

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"
)

type Status int

const (
	Healthy Status = iota
	Degraded
	Unhealthy
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "Healthy"
	case Degraded:
		return "Degraded"
	default:
		return "Unhealthy"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is what a single check reports.
type Result struct {
	Status      Status
	Description string
}

type CheckFunc func(ctx context.Context) Result

// Ping adapts an error-returning ping. A failing ping reports failure.
func Ping(ping func(ctx context.Context) error, failure Status) CheckFunc {
	return func(ctx context.Context) Result {
		if err := ping(ctx); err != nil {
			return Result{Status: failure, Description: err.Error()}
		}
		return Result{Status: Healthy}
	}
}

// Predicate selects checks by their tags.
type Predicate func(tags []string) bool

func All(tags []string) bool { return true }

func HasTag(tag string) Predicate {
	return func(tags []string) bool {
		return slices.Contains(tags, tag)
	}
}

type Entry struct {
	Status      Status        `json:"status"`
	Description string        `json:"description,omitempty"`
	Duration    time.Duration `json:"-"`
	Tags        []string      `json:"tags"`
}

type Report struct {
	Status        Status
	TotalDuration time.Duration
	Entries       map[string]Entry
}

type registration struct {
	name    string
	tags    []string
	check   CheckFunc
	failure Status
}

// Aggregator holds the registered checks. Register is meant for startup;
// Run is safe for concurrent use afterwards.
type Aggregator struct {
	mu      sync.RWMutex
	checks  []registration
	timeout time.Duration
}

const DefaultTimeout = 2 * time.Second

func NewAggregator(timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Aggregator{timeout: timeout}
}

// Register adds a named check. failure is reported when the check times out
// or panics.
func (a *Aggregator) Register(name string, check CheckFunc, failure Status, tags ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checks = append(a.checks, registration{
		name:    name,
		tags:    tags,
		check:   check,
		failure: failure,
	})
}

// Run executes every check selected by match concurrently and reports the
// worst status among them. An empty selection is Healthy.
func (a *Aggregator) Run(ctx context.Context, match Predicate) Report {
	if match == nil {
		match = All
	}

	a.mu.RLock()
	selected := make([]registration, 0, len(a.checks))
	for _, reg := range a.checks {
		if match(reg.tags) {
			selected = append(selected, reg)
		}
	}
	a.mu.RUnlock()

	start := time.Now()
	entries := make([]Entry, len(selected))
	var wg sync.WaitGroup
	for i, reg := range selected {
		i, reg := i, reg
		wg.Add(1)
		go func() {
			defer wg.Done()
			entries[i] = a.runOne(ctx, reg)
		}()
	}
	wg.Wait()

	report := Report{
		Status:  Healthy,
		Entries: make(map[string]Entry, len(selected)),
	}
	for i, reg := range selected {
		entry := entries[i]
		report.Entries[reg.name] = entry
		if entry.Status > report.Status {
			report.Status = entry.Status
		}
	}
	report.TotalDuration = time.Since(start)
	return report
}

func (a *Aggregator) runOne(ctx context.Context, reg registration) Entry {
	checkCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	tags := append([]string(nil), reg.tags...)
	sort.Strings(tags)

	start := time.Now()
	done := make(chan Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Result{Status: reg.failure, Description: fmt.Sprintf("check panicked: %v", r)}
			}
		}()
		done <- reg.check(checkCtx)
	}()

	var result Result
	select {
	case result = <-done:
	case <-checkCtx.Done():
		result = Result{Status: reg.failure, Description: fmt.Sprintf("check did not complete: %v", checkCtx.Err())}
	}

	return Entry{
		Status:      result.Status,
		Description: result.Description,
		Duration:    time.Since(start),
		Tags:        tags,
	}
}

// Package batch fans a list of addresses out over a bounded pool of workers and collects the results as they
// complete. Completion order is not input order, callers that need input order re-associate on the email field.
package batch

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mailvet/mailvet/types"
	"github.com/mailvet/mailvet/validator"
)

const DefaultWorkers = 10

// ProgressFn is invoked once per completed address, under the collector lock, so successive calls are
// monotonically non-decreasing and the final call has completed == total.
type ProgressFn func(completed, total int)

type Option func(*Engine)

func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithProgress(fn ProgressFn) Option {
	return func(e *Engine) {
		e.onProgress = fn
	}
}

func NewEngine(check validator.CheckFn, options ...Option) *Engine {
	e := &Engine{
		check:   check,
		workers: DefaultWorkers,
	}

	for _, o := range options {
		o(e)
	}

	return e
}

type Engine struct {
	check      validator.CheckFn
	workers    int
	onProgress ProgressFn
}

// Run validates every address with the configured number of workers and returns one result per address, in
// completion order, plus a per-status summary. The template carries the check flags, its Email field is
// replaced per task. When ctx is canceled no further work is submitted, in-flight probes finish and their
// results are included.
func (e *Engine) Run(ctx context.Context, addresses []string, template validator.Request) ([]validator.Result, Summary) {
	if len(addresses) == 0 {
		return []validator.Result{}, Summary{}
	}

	start := time.Now()
	total := len(addresses)

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		completed int
	)

	results := make([]validator.Result, 0, total)
	collect := func(r validator.Result) {
		mu.Lock()
		results = append(results, r)
		completed++
		if e.onProgress != nil {
			e.onProgress(completed, total)
		}
		mu.Unlock()
	}

	tasks := make(chan string)
	wg.Add(e.workers)
	for i := e.workers; i > 0; i-- {
		go func() {
			defer wg.Done()
			for email := range tasks {
				collect(e.checkOne(ctx, email, template))
			}
		}()
	}

submit:
	for _, address := range addresses {
		select {
		case <-ctx.Done():
			break submit
		case tasks <- address:
		}
	}

	close(tasks)
	wg.Wait()

	summary := Summarize(results)
	summary.Duration = time.Since(start).Milliseconds()

	return results, summary
}

// checkOne shields the pool from a misbehaving CheckFn. A panicking check becomes an Invalid result, the task
// is never lost.
func (e *Engine) checkOne(ctx context.Context, email string, template validator.Request) (r validator.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			r = validator.Result{
				Email:  strings.TrimSpace(email),
				Status: types.StatusInvalid,
			}
		}
	}()

	template.Email = email
	return e.check(ctx, template)
}

type Summary struct {
	Valid    int   `json:"valid"`
	Doubtful int   `json:"doubtful"`
	Invalid  int   `json:"invalid"`
	Duration int64 `json:"run_duration_ms"`
}

func (s Summary) Total() int {
	return s.Valid + s.Doubtful + s.Invalid
}

// Summarize recomputes the per-status counts from the full result collection. The summary is derived data,
// the results remain the source of truth.
func Summarize(results []validator.Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case types.StatusValid:
			s.Valid++
		case types.StatusDoubtful:
			s.Doubtful++
		default:
			s.Invalid++
		}
	}

	return s
}

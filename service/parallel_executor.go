package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/tmpl-lang/tmplc/domain"
)

// ParallelExecutorImpl implements the ParallelExecutor interface
type ParallelExecutorImpl struct {
	maxConcurrency int // 0 means one worker per CPU
	timeout        time.Duration
}

// NewParallelExecutor creates an executor suited to per-file unit
// processing: concurrency bounded by the CPU count, generous timeout.
func NewParallelExecutor() domain.ParallelExecutor {
	return &ParallelExecutorImpl{
		timeout: 10 * time.Minute,
	}
}

// Execute runs the enabled tasks concurrently and returns the joined
// task errors, if any.
func (pe *ParallelExecutorImpl) Execute(ctx context.Context, tasks []domain.ExecutableTask) error {
	if len(tasks) == 0 {
		return nil
	}

	if pe.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pe.timeout)
		defer cancel()
	}

	sem := make(chan struct{}, pe.concurrency())

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for _, task := range tasks {
		if !task.IsEnabled() {
			continue
		}

		wg.Add(1)
		go func(t domain.ExecutableTask) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				fail(fmt.Errorf("task %s cancelled: %w", t.Name(), ctx.Err()))
				return
			}

			if _, err := t.Execute(ctx); err != nil {
				fail(fmt.Errorf("task %s failed: %w", t.Name(), err))
			}
		}(task)
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (pe *ParallelExecutorImpl) concurrency() int {
	if pe.maxConcurrency > 0 {
		return pe.maxConcurrency
	}
	return runtime.NumCPU()
}

// SimpleTask is a basic implementation of ExecutableTask
type SimpleTask struct {
	name    string
	enabled bool
	execute func(context.Context) (interface{}, error)
}

// NewSimpleTask creates a new simple task
func NewSimpleTask(name string, enabled bool, execute func(context.Context) (interface{}, error)) domain.ExecutableTask {
	return &SimpleTask{
		name:    name,
		enabled: enabled,
		execute: execute,
	}
}

// Name returns the name of the task
func (t *SimpleTask) Name() string {
	return t.name
}

// Execute runs the task and returns the result
func (t *SimpleTask) Execute(ctx context.Context) (interface{}, error) {
	if t.execute == nil {
		return nil, fmt.Errorf("task %s has no execute function", t.name)
	}
	return t.execute(ctx)
}

// IsEnabled returns whether the task should be executed
func (t *SimpleTask) IsEnabled() bool {
	return t.enabled
}

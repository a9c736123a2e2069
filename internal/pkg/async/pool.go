// Package async runs named tasks on a bounded worker pool and joins the
// results. Dashboard handlers use it to fan out their independent store
// reads and fail the whole request if any read fails.
package async

import (
	"context"
	"sync"
)

type Task struct {
	Name    string
	Execute func() (interface{}, error)
}

type Result struct {
	Name string
	Data interface{}
	Err  error
}

type Pool struct {
	workerCount int
	tasks       chan Task
	results     chan Result
}

func NewPool(workerCount int) *Pool {
	return &Pool{
		workerCount: workerCount,
		tasks:       make(chan Task),
		results:     make(chan Result),
	}
}

func (p *Pool) worker(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			data, err := task.Execute()
			// The collector may have bailed out on cancellation; never
			// block on a send nobody will receive.
			select {
			case p.results <- Result{
				Name: task.Name,
				Data: data,
				Err:  err,
			}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Execute runs all tasks and blocks until every result is in (or the
// context is cancelled). Results are keyed by task name.
func (p *Pool) Execute(ctx context.Context, tasks []Task) map[string]Result {
	var wg sync.WaitGroup
	results := make(map[string]Result)

	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go p.worker(ctx, &wg)
	}

	go func() {
		for _, task := range tasks {
			select {
			case p.tasks <- task:
			case <-ctx.Done():
				return
			}
		}
		close(p.tasks)
	}()

	for i := 0; i < len(tasks); i++ {
		select {
		case result := <-p.results:
			results[result.Name] = result
		case <-ctx.Done():
			return results
		}
	}

	wg.Wait()
	close(p.results)

	return results
}

// FirstError returns the first failed result, if any. Callers that need
// all-or-nothing semantics check this before touching any data.
func FirstError(results map[string]Result) *Result {
	for name, result := range results {
		if result.Err != nil {
			r := result
			r.Name = name
			return &r
		}
	}
	return nil
}

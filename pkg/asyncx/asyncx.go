// Package asyncx provides small concurrency helpers over raw goroutines.
package asyncx

import (
	"context"
	"sync"
)

// Result holds the outcome of a single settled async operation.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the result carries no error.
func (r Result[T]) OK() bool { return r.Err == nil }

// Map applies fn to every item in items concurrently and returns the
// transformed slice in the original order. Stops and returns on the first error.
func Map[T any, R any](ctx context.Context, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	wg.Add(len(items))

	for i, item := range items {
		i, item := i, item
		go func() {
			defer wg.Done()
			results[i], errs[i] = fn(ctx, item)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// MapSettled applies fn to every item with at most workers goroutines
// running at once. Unlike Map it never short-circuits: it always returns
// one Result per item, in the original order.
func MapSettled[T any, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	if workers < 1 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	results := make([]Result[R], len(items))
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	wg.Add(len(items))

	for i, item := range items {
		i, item := i, item
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			v, err := fn(ctx, item)
			results[i] = Result[R]{Value: v, Err: err}
		}()
	}
	wg.Wait()
	return results
}

package animator

import (
	"context"
	"sync"
)

// RunnerFactory builds the runner for one ensemble member.
type RunnerFactory[T any] func(idx int) (*Runner[T], error)

// Ensemble runs independent animator instances concurrently. Members share no
// mutable state; each owns its drivers, montages and graph.
type Ensemble[T any] struct {
	factory RunnerFactory[T]
	numRuns int
}

func NewEnsemble[T any](factory RunnerFactory[T], numRuns int) *Ensemble[T] {
	return &Ensemble[T]{factory: factory, numRuns: numRuns}
}

func (e *Ensemble[T]) Run(ctx context.Context, cfg RunConfig) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			r, err := e.factory(idx)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = r.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

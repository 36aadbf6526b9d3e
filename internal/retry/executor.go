package retry

import (
	"context"
	"time"

	"github.com/univinfo/univload/pkg/univload"
)

// Executor runs an operation until it succeeds, fails fatally, or the
// backoff strategy runs out of attempts.
type Executor struct {
	classifier univload.ErrorClassifier
	strategy   univload.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates an Executor. Panics if classifier or strategy is nil.
func NewExecutor(classifier univload.ErrorClassifier, strategy univload.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{classifier: classifier, strategy: strategy}
}

// WithOnRetry returns a copy of e that calls fn before every wait.
func (e *Executor) WithOnRetry(fn func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = fn
	return &clone
}

// Execute runs op and returns the error of the last attempt.
func (e *Executor) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	err := op(ctx)
	limit := e.strategy.MaxAttempts()
	for attempt := 0; err != nil && e.classifier.IsTransient(err) && (limit < 0 || attempt < limit); attempt++ {
		delay := e.strategy.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		err = op(ctx)
	}
	return err
}

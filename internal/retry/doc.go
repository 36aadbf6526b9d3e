// Package retry re-runs an operation that fails with a transient error,
// waiting an exponentially growing delay between attempts.
//
//	exec := retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), retry.NewExponentialBackoff(3))
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
//
// univload only retries while opening a connection; statements inside an
// import session are never replayed.
package retry

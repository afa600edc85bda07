package ledger

import (
	"context"
	"log/slog"
)

// Retrier re-runs an operation when it fails with an unexpected fault.
// Under REPEATABLE READ, contention on the same account can abort one
// of two conflicting transactions spuriously; those aborts succeed on
// immediate retry. Rejections are normal outcomes and return at once.
// The retry cap stays at one so a persistent fault cannot turn into a
// retry storm.
type Retrier struct {
	MaxRetries int
	Log        *slog.Logger
}

// Do executes fn, retrying on faults up to the configured cap (one when
// unset). The last error is returned when every attempt fails.
func (r Retrier) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	retries := r.MaxRetries
	if retries <= 0 {
		retries = 1
	}

	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		err = fn(ctx)
		if err == nil || IsRejection(err) {
			return err
		}
		if attempt < retries && r.Log != nil {
			r.Log.Warn("operation failed, retrying",
				"op", op,
				"attempt", attempt+1,
				"serialization_conflict", isSerializationFailure(err),
				"error", err)
		}
	}

	if r.Log != nil {
		r.Log.Error("operation failed after retry", "op", op, "error", err)
	}
	return err
}

package threadpool

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v5"

	rterrors "github.com/vnykmshr/flowrt/pkg/common/errors"
)

// RetryTask wraps a fallible operation in a Task that retries it with
// backoff until it succeeds, returns a backoff.Permanent error, ctx ends or
// the retry options give up. The returned channel receives the final error
// (nil on success) once the task has run.
//
// Errors reporting a closed resource or invalid configuration are never
// retried. A panic in op ends the retries with an error wrapping
// errors.ErrTaskPanicked rather than terminating the worker.
//
// Without options the operation is retried with backoff.NewExponentialBackOff
// and backoff's default elapsed-time limit.
func RetryTask(ctx context.Context, op func(context.Context) error, opts ...backoff.RetryOption) (*Task, <-chan error) {
	result := make(chan error, 1)
	task := NewNamedTask("retry", func() {
		_, err := backoff.Retry(ctx, func() (struct{}, error) {
			return struct{}{}, attempt(ctx, op)
		}, opts...)
		result <- err
	})
	return task, result
}

func attempt(ctx context.Context, op func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = backoff.Permanent(fmt.Errorf("%w: %v", rterrors.ErrTaskPanicked, r))
		}
	}()
	err = op(ctx)
	if rterrors.IsClosed(err) || rterrors.IsValidationError(err) {
		return backoff.Permanent(err)
	}
	return err
}

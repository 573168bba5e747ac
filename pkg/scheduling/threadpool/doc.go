/*
Package threadpool provides an elastic pool of reusable worker goroutines
consuming a FIFO task queue.

Unlike a fixed-size worker pool, a ThreadPool starts workers lazily, up to
MaxThreadCount, and lets them exit after ExpiryTimeout without work. A new
task is handed directly to the most recently idled worker when one exists,
otherwise a worker is spawned if the cap allows, otherwise the task waits
in the queue.

Basic usage:

	pool, err := threadpool.NewWithConfig(threadpool.Config{
		MaxThreadCount: 4,
		ExpiryTimeout:  10 * time.Second,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	for _, job := range jobs {
		job := job
		if _, err := pool.Submit(func() { process(job) }); err != nil {
			return err
		}
	}
	pool.WaitForDone(-1)

Tasks:

A Task is identified by its pointer. Adding a *Task that is already queued
does nothing, and Cancel removes a queued task by identity. A task that a
worker has picked up cannot be canceled.

Quiescence:

WaitForDone blocks until the queue is empty and no worker is active. When
that happens it joins and discards every worker, so the following batch
starts from a clean pool. A task must never call WaitForDone on the pool
executing it.

Failures:

A task that panics is recovered on its worker and logged once through the
configured zap logger with the pool name, worker id, panic value and stack.
The optional PanicHandler runs next, then that worker leaves the pool and
its goroutine exits. The pool keeps serving and starts replacement workers
on demand.

Retries:

RetryTask wraps an error-returning operation with exponential backoff from
github.com/cenkalti/backoff/v5:

	task, done := threadpool.RetryTask(ctx, fetch, backoff.WithMaxTries(5))
	_ = pool.AddTask(task)
	if err := <-done; err != nil {
		log.Printf("fetch failed: %v", err)
	}

Thread Safety:

All ThreadPool methods are safe for concurrent use, including from inside a
running task.
*/
package threadpool

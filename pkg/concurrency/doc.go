/*
Package concurrency groups the low-level synchronization building blocks used
by the scheduling packages.

  - semaphore: counting signal with blocking, timed and non-blocking waits
  - rwlock: reader-preferring read/write lock with try variants
  - thread: a goroutine wrapper with synchronous start, cooperative
    interruption and join

Thread is built on semaphore so that Start returns only once the new
goroutine is confirmed running. The thread pool and timer manager in
pkg/scheduling are built on thread.
*/
package concurrency

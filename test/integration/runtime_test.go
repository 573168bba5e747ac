package integration

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vnykmshr/flowrt"
	"github.com/vnykmshr/flowrt/internal/testutil"
	"github.com/vnykmshr/flowrt/pkg/concurrency/rwlock"
	"github.com/vnykmshr/flowrt/pkg/concurrency/semaphore"
	"github.com/vnykmshr/flowrt/pkg/config"
)

func loadRuntime(t *testing.T, yaml string) *flowrt.Runtime {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flowrt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	rt, err := flowrt.New(*cfg, flowrt.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	t.Cleanup(rt.Close)
	return rt
}

// TestTimersFeedPool drives pool tasks from repeating timer callbacks and
// checks that the pool cap holds while both run.
func TestTimersFeedPool(t *testing.T) {
	rt := loadRuntime(t, `
pool:
  max_thread_count: 2
  expiry_timeout: 50ms
timer:
  callback_threads: 1
metrics:
  enabled: true
`)
	pool := rt.Pool()

	var running, peak, done atomic.Int32
	job := func() {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		done.Add(1)
	}

	tm, err := rt.Timers().AddTimer(10*time.Millisecond, func() {
		for i := 0; i < 3; i++ {
			_, _ = pool.Submit(job)
		}
	}, true)
	require.NoError(t, err)

	testutil.Eventually(t, func() bool { return done.Load() >= 15 }, 2*time.Second, time.Millisecond)
	assert.True(t, tm.Cancel())
	require.True(t, pool.WaitForDone(2*time.Second))

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.GreaterOrEqual(t, pool.Stats().Executed, uint64(15))
}

// TestSharedStateUnderCallbacks exercises the lock primitives from timer
// callbacks and pool tasks at the same time.
func TestSharedStateUnderCallbacks(t *testing.T) {
	rt := loadRuntime(t, `
pool:
  max_thread_count: 4
`)
	lock := rwlock.New()
	ready := semaphore.New(0)
	var value, reads atomic.Int64

	for i := 0; i < 5; i++ {
		_, err := rt.Timers().AddTimer(time.Duration(i+1)*time.Millisecond, func() {
			lock.LockForWrite()
			value.Add(1)
			lock.Unlock()
			ready.Notify()
		}, false)
		require.NoError(t, err)
	}

	for i := 0; i < 20; i++ {
		_, err := rt.Pool().Submit(func() {
			lock.LockForRead()
			_ = value.Load()
			reads.Add(1)
			lock.Unlock()
		})
		require.NoError(t, err)
	}

	for i := 0; i < 5; i++ {
		require.True(t, ready.TimedWait(time.Second), "timer %d did not fire", i)
	}
	require.True(t, rt.Pool().WaitForDone(time.Second))

	assert.Equal(t, int64(5), value.Load())
	assert.Equal(t, int64(20), reads.Load())
	assert.False(t, lock.WriterHeld())
	assert.Zero(t, lock.Readers())
}

// TestMetricsEndpoint scrapes the runtime registry over HTTP.
func TestMetricsEndpoint(t *testing.T) {
	rt := loadRuntime(t, `
pool:
  name: scraped
metrics:
  enabled: true
`)
	_, err := rt.Pool().Submit(func() {})
	require.NoError(t, err)
	require.True(t, rt.Pool().WaitForDone(time.Second))

	srv := httptest.NewServer(promhttp.HandlerFor(rt.Gatherer(), promhttp.HandlerOpts{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `flowrt_threadpool_tasks_executed_total{pool_name="scraped"} 1`)
}

// TestRuntimeCloseStopsTimers checks that no callback runs after Close.
func TestRuntimeCloseStopsTimers(t *testing.T) {
	rt := loadRuntime(t, "{}\n")

	var fired atomic.Int32
	_, err := rt.Timers().AddTimer(time.Millisecond, func() { fired.Add(1) }, true)
	require.NoError(t, err)
	testutil.AssertEventually(t, func() bool { return fired.Load() > 0 })

	rt.Close()
	after := fired.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, fired.Load())
	assert.Zero(t, rt.Timers().Len())
}

package threadpool

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain enables goroutine leak detection for all tests in this package.
// Every test must leave the pool closed or reset so no worker survives.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

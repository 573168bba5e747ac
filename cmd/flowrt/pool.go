package main

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	rterrors "github.com/vnykmshr/flowrt/pkg/common/errors"
	"github.com/vnykmshr/flowrt/pkg/config"
)

func newPoolCmd(root *rootOptions) *cobra.Command {
	var (
		tasks   int
		threads int
		work    time.Duration
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Submit a batch of tasks and wait for the pool to drain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := root.runtime(func(c *config.Config) {
				if threads > 0 {
					c.Pool.MaxThreadCount = threads
				}
			})
			if err != nil {
				return err
			}
			defer rt.Close()

			pool := rt.Pool()
			var running, peak atomic.Int32
			start := time.Now()
			for i := 0; i < tasks; i++ {
				_, err := pool.Submit(func() {
					n := running.Add(1)
					for {
						old := peak.Load()
						if n <= old || peak.CompareAndSwap(old, n) {
							break
						}
					}
					time.Sleep(work)
					running.Add(-1)
				})
				if err != nil {
					return err
				}
			}

			stats := pool.Stats()
			if !pool.WaitForDone(timeout) {
				return fmt.Errorf("pool did not drain within %v: %w", timeout, rterrors.ErrTimeout)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pool:        %s\n", stats.Name)
			fmt.Fprintf(out, "max threads: %d\n", stats.MaxThreadCount)
			fmt.Fprintf(out, "tasks:       %d\n", pool.Stats().Executed)
			fmt.Fprintf(out, "peak active: %d\n", peak.Load())
			fmt.Fprintf(out, "elapsed:     %v\n", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	fs := cmd.Flags()
	fs.IntVarP(&tasks, "tasks", "n", 20, "number of tasks to submit")
	fs.IntVarP(&threads, "threads", "t", 0, "override pool.max_thread_count")
	fs.DurationVar(&work, "work", 10*time.Millisecond, "time each task sleeps")
	fs.DurationVar(&timeout, "timeout", -1, "give up waiting after this long (negative waits forever)")
	return cmd
}

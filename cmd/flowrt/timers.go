package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/vnykmshr/flowrt/pkg/common/validation"
)

func newTimersCmd(root *rootOptions) *cobra.Command {
	var (
		intervals []time.Duration
		cronExpr  string
		wait      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "timers",
		Short: "Arm one-shot timers and print the order they fire in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, d := range intervals {
				if err := validation.ValidateNonNegativeDuration("timers", "interval", d); err != nil {
					return err
				}
			}

			rt, err := root.runtime(nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			var (
				mu    sync.Mutex
				wg    sync.WaitGroup
				start = time.Now()
			)
			report := func(label string) {
				mu.Lock()
				defer mu.Unlock()
				fmt.Fprintf(out, "fired %-8s after %v\n", label, time.Since(start).Round(time.Millisecond))
			}

			for _, d := range intervals {
				d := d
				wg.Add(1)
				if _, err := rt.Timers().AddTimer(d, func() {
					defer wg.Done()
					report(d.String())
				}, false); err != nil {
					return err
				}
			}

			if cronExpr != "" {
				t, err := rt.Timers().AddCronTimer(cronExpr, func() { report("cron") })
				if err != nil {
					return err
				}
				defer t.Cancel()
			}

			wg.Wait()
			if cronExpr != "" {
				time.Sleep(wait)
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.DurationSliceVar(&intervals, "intervals", []time.Duration{100 * time.Millisecond, 50 * time.Millisecond, 75 * time.Millisecond},
		"comma-separated one-shot timer intervals")
	fs.StringVar(&cronExpr, "cron", "", "also arm a cron timer, e.g. \"*/1 * * * * *\"")
	fs.DurationVar(&wait, "wait", 3*time.Second, "how long to keep the cron timer running")
	return cmd
}

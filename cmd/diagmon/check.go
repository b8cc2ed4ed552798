package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"tinygo.org/x/drivers"

	"github.com/jangala-dev/tinygo-diagserial/monitor"
)

var (
	checkOpts = struct {
		duration time.Duration
		lines    int
	}{}

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Verify the counter firmware's output",
		Long:  "Read counter lines for --duration or until --lines lines, and fail on a gap or a malformed line.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := open(profile)
			if err != nil {
				return err
			}
			defer port.Close()
			monitor.Drain(port)

			ctx, cancel := context.WithTimeout(cmd.Context(), checkOpts.duration)
			defer cancel()
			c := monitor.NewCounterChecker(log)
			return check(ctx, cancel, c, port)
		},
	}
)

func init() {
	checkCmd.Flags().DurationVarP(&checkOpts.duration, "duration", "d", 10*time.Second, "how long to listen")
	checkCmd.Flags().IntVar(&checkOpts.lines, "lines", 0, "stop after this many good lines (0: run for --duration)")
}

// lineLimit stops the copy once enough lines have been checked.
type lineLimit struct {
	c      *monitor.CounterChecker
	limit  int
	cancel context.CancelFunc
}

func (l lineLimit) Write(p []byte) (int, error) {
	n, err := l.c.Write(p)
	if l.limit > 0 && l.c.Lines() >= l.limit {
		l.cancel()
	}
	return n, err
}

func check(ctx context.Context, cancel context.CancelFunc, c *monitor.CounterChecker, src drivers.UART) error {
	_, err := monitor.Copy(ctx, lineLimit{c: c, limit: checkOpts.lines, cancel: cancel}, src, false)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return err
	}
	log.WithFields(logrus.Fields{
		"lines":     c.Lines(),
		"gaps":      c.Gaps(),
		"malformed": c.Malformed(),
		"last":      fmt.Sprintf("%08X", c.Last()),
	}).Info("counter check")
	if !c.OK() {
		return errors.New("counter check failed")
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jangala-dev/tinygo-diagserial/diagserial"
	"github.com/jangala-dev/tinygo-diagserial/internal/config"
	"github.com/jangala-dev/tinygo-diagserial/monitor"
	"github.com/jangala-dev/tinygo-diagserial/sim"
)

var (
	runOpts = struct {
		termBaud uint32
		check    bool
		raw      bool
	}{}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the firmware loop for a number of iterations",
		Long:  "Configure USART1 once, call the selected producer --iterations times and stream the received line to stdout.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), profile)
		},
	}
)

func init() {
	runCmd.Flags().Uint32Var(&runOpts.termBaud, "term-baud", 0, "baud rate of the simulated terminal (default: the profile's)")
	runCmd.Flags().BoolVar(&runOpts.check, "check", false, "verify the counter sequence")
	runCmd.Flags().BoolVar(&runOpts.raw, "raw", false, "do not escape control bytes")
}

var errSimFaults = errors.New("simulation recorded faults")

func run(ctx context.Context, out io.Writer, p config.Profile) error {
	termBaud := runOpts.termBaud
	if termBaud == 0 {
		termBaud = p.DiagConfig().BaudRate
		if termBaud == 0 {
			termBaud = diagserial.DefaultBaudRate
		}
	}
	term := sim.NewTerminal(termBaud, 4096)
	bus := sim.NewBus(term)
	bus.Latency = p.Latency
	bus.Log = log
	bus.FlowControl = true
	if p.ClockHz != 0 {
		bus.ClockHz = p.ClockHz
	}
	uart := &diagserial.UART{Bus: bus}

	// The bus belongs to the firmware goroutine until it reports back.
	done := make(chan error, 1)
	go func() {
		err := diagserial.RunN(uart, p.DiagConfig(), p.Producer(), p.Iterations)
		if err == nil {
			err = uart.Flush()
		}
		term.Close()
		done <- err
	}()

	dst := out
	var checker *monitor.CounterChecker
	if runOpts.check && p.Variant == config.VariantCounter {
		checker = monitor.NewCounterChecker(log)
		dst = io.MultiWriter(out, checker)
	}
	n, err := monitor.Copy(ctx, dst, term, !runOpts.raw)
	if err != nil {
		// Release a firmware goroutine held by flow control before leaving.
		term.Close()
		<-done
		return err
	}
	if err := <-done; err != nil {
		return err
	}

	line := bus.Line()
	log.WithFields(logrus.Fields{
		"bytes":          n,
		"sr_reads":       bus.SRReads(),
		"idle_frames":    bus.IdleFrames(),
		"framing_errors": term.FramingErrors(),
		"overruns":       term.Overruns(),
		"stalls":         bus.Stalls(),
		"line":           fmt.Sprintf("%d %d bits stop=%d parity=%t", line.BaudRate, line.DataBits, line.StopCode, line.Parity),
	}).Info("simulation finished")

	if checker != nil {
		log.WithFields(logrus.Fields{
			"lines":     checker.Lines(),
			"gaps":      checker.Gaps(),
			"malformed": checker.Malformed(),
		}).Info("counter check")
		if !checker.OK() {
			return errors.New("counter check failed")
		}
	}
	if len(bus.Faults()) > 0 {
		return fmt.Errorf("%w: %d", errSimFaults, len(bus.Faults()))
	}
	if term.FramingErrors() > 0 {
		return fmt.Errorf("terminal at %d baud saw %d framing errors", termBaud, term.FramingErrors())
	}
	if term.Overruns() > 0 {
		return fmt.Errorf("terminal dropped %d bytes", term.Overruns())
	}
	return nil
}

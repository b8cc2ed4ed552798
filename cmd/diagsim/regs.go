package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jangala-dev/tinygo-diagserial/diagserial"
	"github.com/jangala-dev/tinygo-diagserial/internal/config"
	"github.com/jangala-dev/tinygo-diagserial/sim"
)

var regsCmd = &cobra.Command{
	Use:   "regs",
	Short: "Show the register writes of the bring-up sequence",
	Long:  "Run Configure against a freshly reset simulated chip and print every register store in order, then the final register values.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return regs(cmd.OutOrStdout(), profile)
	},
}

func regs(out io.Writer, p config.Profile) error {
	bus := sim.NewBus(nil)
	bus.Log = log
	if p.ClockHz != 0 {
		bus.ClockHz = p.ClockHz
	}
	uart := &diagserial.UART{Bus: bus}
	if err := uart.Configure(p.DiagConfig()); err != nil {
		return err
	}
	line := uart.Line()

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "line\t%s\tdivisor %#04x (mantissa %d, fraction %d/16), actual %d baud\n",
		line, line.Divisor, line.Mantissa(), line.Fraction(), line.ActualBaud())
	fmt.Fprintln(w)
	for i, a := range bus.Trace() {
		fmt.Fprintf(w, "%d\t%s\t%#08x\n", i+1, a.Reg, a.Value)
	}
	fmt.Fprintln(w)
	for _, r := range bus.Dump() {
		fmt.Fprintf(w, "%#08x\t%s\t%#08x\n", r.Addr, r.Name, r.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	for _, f := range bus.Faults() {
		fmt.Fprintln(out, "fault:", f)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/jangala-dev/tinygo-diagserial/monitor"
)

const readTimeout = 200 * time.Millisecond

var (
	watchOpts = struct {
		raw bool
	}{}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Stream the line to stdout",
		Long:  "Stream the line to stdout until interrupted. Control bytes are escaped when stdout is a terminal.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := open(profile)
			if err != nil {
				return err
			}
			defer port.Close()

			escape := !watchOpts.raw && terminal.IsTerminal(int(os.Stdout.Fd()))
			n, err := monitor.Copy(cmd.Context(), cmd.OutOrStdout(), port, escape)
			log.WithField("bytes", n).Debug("watch stopped")
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchOpts.raw, "raw", false, "never escape control bytes")
}

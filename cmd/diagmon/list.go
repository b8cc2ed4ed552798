package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jangala-dev/tinygo-diagserial/serialport"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidate serial devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := serialport.List()
		if err != nil {
			return err
		}
		for _, p := range ports {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

// diagmon attaches to the serial adapter wired to a board running the diagnostic
// firmware, streams what it prints and checks the counter variant's output.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jangala-dev/tinygo-diagserial/internal/config"
	"github.com/jangala-dev/tinygo-diagserial/serialport"
)

var (
	log = logrus.New()

	rootOpts = struct {
		profile string
		verbose bool
	}{}

	profile     config.Profile
	flagProfile = config.Default()

	rootCmd = &cobra.Command{
		Use:          "diagmon",
		Short:        "Monitor the USART1 diagnostic output of a board",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if rootOpts.verbose {
				log.SetLevel(logrus.DebugLevel)
			}
			p := config.Default()
			if rootOpts.profile != "" {
				var err error
				if p, err = config.Load(rootOpts.profile); err != nil {
					return err
				}
			}
			if err := p.Override(cmd.Flags(), flagProfile); err != nil {
				return err
			}
			profile = p
			return nil
		},
	}
)

func init() {
	log.Out = os.Stderr
	rootCmd.PersistentFlags().StringVar(&rootOpts.profile, "profile", "", "board profile (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&rootOpts.verbose, "verbose", "v", false, "debug logging")
	flagProfile.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(watchCmd, checkCmd, listCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

// open opens the profile's port with a read timeout so a cancelled context is noticed.
func open(p config.Profile) (*serialport.Port, error) {
	baud := p.DiagConfig().BaudRate
	if baud == 0 {
		baud = 9600
	}
	port, err := serialport.Open(serialport.Config{
		Name:        p.Port,
		Baud:        baud,
		Settings:    p.Settings,
		ReadTimeout: readTimeout,
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"port": p.Port, "baud": baud}).Debug("port open")
	return port, nil
}

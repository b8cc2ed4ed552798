// diagsim runs the diagnostic firmware against a simulated STM32F103 and prints what a
// terminal on the far end of USART1 would receive.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jangala-dev/tinygo-diagserial/internal/config"
)

var (
	log = logrus.New()

	rootOpts = struct {
		profile string
		verbose bool
	}{}

	// profile is the effective configuration, built before any subcommand runs.
	profile config.Profile
	// flagProfile receives flag values; only flags actually set are applied.
	flagProfile = config.Default()

	rootCmd = &cobra.Command{
		Use:          "diagsim",
		Short:        "Simulate the USART1 diagnostic firmware",
		Long:         "Run the diagnostic firmware's bring-up and transmit loop against a model of the STM32F103 registers.",
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
			log.WithFields(logrus.Fields{
				"variant": p.Variant,
				"baud":    p.Baud,
				"clock":   p.ClockHz,
			}).Debug("profile")
			return nil
		},
	}
)

func init() {
	log.Out = os.Stderr
	rootCmd.PersistentFlags().StringVar(&rootOpts.profile, "profile", "", "board profile (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&rootOpts.verbose, "verbose", "v", false, "debug logging")
	flagProfile.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(runCmd, regsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

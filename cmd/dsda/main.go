package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dsda",
		Short: "dsda",
		Long: `A CLI tool to optimize generalized disjunctive superstructures with
the discrete steepest descent algorithm.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.AddCommand(newRunCmd(), newReformulateCmd(), newEnumerateCmd(), newVersionCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

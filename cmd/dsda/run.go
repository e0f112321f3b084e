package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/processdesign/dsda/pkg/dsda"
	"github.com/processdesign/dsda/pkg/lib/signals"
)

func newRunCmd() *cobra.Command {
	o := &runOptions{}
	var trace bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Search a superstructure with discrete steepest descent",
		Long: `The dsda run command reformulates the superstructure into external
        variables, then moves from a feasible starting point to the best
        neighbor of the incumbent until none improves it.

        $ dsda run --model reactor --nt 5 --filters asymmetry
        `,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.load()
			if err != nil {
				return err
			}
			var extra []dsda.Option
			if trace {
				extra = append(extra, dsda.WithTracer(dsda.LoggingTracer{Writer: cmd.OutOrStdout()}))
			}
			d, err := o.driver(c, extra...)
			if err != nil {
				return err
			}
			o.serveMetrics()

			out := cmd.OutOrStdout()
			if err := d.Reformulation().WriteSummary(out); err != nil {
				return err
			}
			res, err := d.Run(signals.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			if err := res.WriteRoute(out); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nBest point %s with objective %.6g after %d evaluations\n", res.Best, res.Objective, res.Evaluations)
			if res.Stopped {
				fmt.Fprintln(out, "The iteration limit stopped the search before a local optimum was confirmed")
			}
			return nil
		},
	}
	o.bind(cmd.Flags())
	cmd.Flags().BoolVar(&trace, "trace", false, "print the fixed assignment and outcome of every evaluated point")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/processdesign/dsda/pkg/dsda"
	"github.com/processdesign/dsda/pkg/lib/signals"
)

func newEnumerateCmd() *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "enumerate",
		Short: "Solve every logically feasible point of a superstructure",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.load()
			if err != nil {
				return err
			}
			d, err := o.driver(c)
			if err != nil {
				return err
			}
			o.serveMetrics()

			evals, err := d.Enumerate(signals.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := dsda.WriteEnumeration(out, evals); err != nil {
				return err
			}
			var best *dsda.Evaluation
			for i := range evals {
				if evals[i].Outcome.OK() && (best == nil || evals[i].Outcome.Objective < best.Outcome.Objective) {
					best = &evals[i]
				}
			}
			if best == nil {
				fmt.Fprintln(out, "\nNo point is feasible")
				return nil
			}
			fmt.Fprintf(out, "\nBest point %s with objective %.6g\n", best.Point, best.Outcome.Objective)
			return nil
		},
	}
	o.bind(cmd.Flags())
	return cmd
}

package main

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/processdesign/dsda/pkg/models"
	"github.com/processdesign/dsda/pkg/reformulation"
)

func newReformulateCmd() *cobra.Command {
	var (
		model string
		nt    int
	)
	cmd := &cobra.Command{
		Use:   "reformulate",
		Short: "Print the external variables of a superstructure",
		RunE: func(cmd *cobra.Command, args []string) error {
			ss, err := models.Lookup(model, models.Params{NT: nt})
			if err != nil {
				return err
			}
			m, err := ss.Build()
			if err != nil {
				return err
			}
			if err := m.Err(); err != nil {
				return err
			}
			rm, err := reformulation.Scan(m, m.References(), reformulation.WithLogger(log.StandardLogger()))
			if err != nil {
				return errors.Wrapf(err, "reformulating %s", ss.Name())
			}
			return rm.WriteSummary(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&model, "model", "reactor", "superstructure to reformulate")
	cmd.Flags().IntVar(&nt, "nt", 0, "number of candidate units or trays, 0 for the model default")
	return cmd
}

package cmd

import (
	"encoding/json"

	"github.com/assessment-hisan/auction-backend/services"
	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Repair student and team references left inconsistent by an interrupted operation",
	Long: `Reconcile releases students whose team no longer exists, brings every
student's called flag in line with its team, and calls team leaders and
sub-leaders into their team. Running it on a consistent database changes
nothing. The report is printed as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		db, err := openDatabase(cfg, log, false)
		if err != nil {
			return err
		}

		report, err := services.NewReconciler(services.Deps{DB: db, Log: log}).Run(cmd.Context())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/formula"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/postgresql"
	payrollService "github.com/cmlabs-hris/payroll-engine/internal/service/payroll"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "payrollctl",
		Short:         "Operational tooling for the payroll engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRecomputeCommand(), newFormulaCommand())
	return root
}

func newRecomputeCommand() *cobra.Command {
	var periodID string

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Rebuild record and period aggregates of a payroll period from its components",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := payroll.ValidateID(periodID); err != nil {
				return fmt.Errorf("invalid --period-id: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := database.NewPostgreSQLDB(cmd.Context(), cfg.DatabaseURL(), database.PoolOptions{
				MaxConns: 2,
				MinConns: 1,
			})
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			reconciler := payrollService.NewReconciler(postgresql.NewTransactor(db), postgresql.NewPayrollRepository(db))
			result, err := reconciler.RepairPeriod(cmd.Context(), periodID)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&periodID, "period-id", "", "payroll period to recompute")
	_ = cmd.MarkFlagRequired("period-id")
	return cmd
}

func newFormulaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formula",
		Short: "Inspect payroll formulas",
	}

	var path string
	dump := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective formula as YAML (the built-in default when --path is empty)",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formula.Load(path)
			if err != nil {
				return err
			}
			out, err := formula.Marshal(f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	dump.Flags().StringVar(&path, "path", "", "formula YAML file")

	cmd.AddCommand(dump)
	return cmd
}

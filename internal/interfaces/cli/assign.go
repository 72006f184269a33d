package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/CaseBridge/internal/application/assignment"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

func newAssignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Run assignment operations against the engine",
	}
	cmd.AddCommand(newAssignRecommendCmd())
	cmd.AddCommand(newAssignAutoCmd())
	cmd.AddCommand(newAssignManualCmd())
	return cmd
}

func newAssignRecommendCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recommend <package-id>",
		Short: "Rank eligible organizations for a case package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			svcs, closer, err := connectServices(ctx, cliCtx)
			if err != nil {
				return err
			}
			defer closer()

			recs, err := svcs.assignment.GetRecommendations(ctx, common.ID(args[0]), limit)
			if err != nil {
				return err
			}
			return printResult(cliCtx, map[string]interface{}{
				"recommendations": recs,
				"count":           len(recs),
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum recommendations to return (0 = unlimited)")
	return cmd
}

func newAssignAutoCmd() *cobra.Command {
	var ruleID string
	cmd := &cobra.Command{
		Use:   "auto <package-id>",
		Short: "Commit the top recommendation for a case package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			svcs, closer, err := connectServices(ctx, cliCtx)
			if err != nil {
				return err
			}
			defer closer()

			var pinned *common.ID
			if ruleID != "" {
				id := common.ID(ruleID)
				pinned = &id
			}
			result, err := svcs.assignment.ExecuteAutoAssignment(ctx, common.ID(args[0]), pinned)
			if err != nil {
				return err
			}
			return printResult(cliCtx, result)
		},
	}
	cmd.Flags().StringVar(&ruleID, "rule", "", "pin execution to one rule id")
	return cmd
}

func newAssignManualCmd() *cobra.Command {
	var (
		orgID        string
		operatorID   string
		operatorName string
	)
	cmd := &cobra.Command{
		Use:   "manual <package-id>",
		Short: "Commit a case package to a named organization",
		Long:  "Bypasses eligibility and scoring; only the per-organization assignment cap\nis enforced when the rule carries one.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if orgID == "" {
				return fmt.Errorf("--org is required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			svcs, closer, err := connectServices(ctx, cliCtx)
			if err != nil {
				return err
			}
			defer closer()

			var operator *assignment.Operator
			if operatorID != "" {
				operator = &assignment.Operator{ID: operatorID, Name: operatorName}
			}
			result, err := svcs.assignment.ExecuteManualAssignment(ctx, common.ID(args[0]), common.ID(orgID), nil, operator)
			if err != nil {
				return err
			}
			return printResult(cliCtx, result)
		},
	}
	cmd.Flags().StringVar(&orgID, "org", "", "target disposal organization id")
	cmd.Flags().StringVar(&operatorID, "operator-id", "", "operator id recorded in the flow trail")
	cmd.Flags().StringVar(&operatorName, "operator-name", "", "operator display name")
	return cmd
}

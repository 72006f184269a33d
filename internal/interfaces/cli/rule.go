package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/turtacn/CaseBridge/internal/domain/rule"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

func newRuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rule",
		Short: "Inspect and dry-run assignment rules",
	}
	cmd.AddCommand(newRuleListCmd())
	cmd.AddCommand(newRuleShowCmd())
	cmd.AddCommand(newRuleTestCmd())
	return cmd
}

func newRuleListCmd() *cobra.Command {
	var enabledOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assignment rules by priority",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			rules, total, err := svcs.assignment.ListRules(ctx, rule.ListFilter{EnabledOnly: enabledOnly})
			if err != nil {
				return err
			}
			return printResult(cliCtx, map[string]interface{}{
				"rules": rules,
				"total": total,
			})
		},
	}
	cmd.Flags().BoolVar(&enabledOnly, "enabled-only", false, "list only enabled rules")
	return cmd
}

func newRuleShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <rule-id>",
		Short: "Show one assignment rule",
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

			r, err := svcs.assignment.GetRule(ctx, common.ID(args[0]))
			if err != nil {
				return err
			}
			return printResult(cliCtx, r)
		},
	}
}

func newRuleTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <rule-id> <package-id>",
		Short: "Dry-run a rule against a case package",
		Long:  "Evaluates eligibility and scoring for every candidate organization without\nmutating any rule counter or package state.",
		Args:  cobra.ExactArgs(2),
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

			result, err := svcs.assignment.TestRule(ctx, common.ID(args[0]), common.ID(args[1]))
			if err != nil {
				return err
			}
			return printResult(cliCtx, result)
		},
	}
}

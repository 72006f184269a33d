package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/CaseBridge/internal/domain/casepackage"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

func newPackageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "package",
		Aliases: []string{"pkg"},
		Short:   "Inspect case packages and their flow trail",
	}
	cmd.AddCommand(newPackageShowCmd())
	cmd.AddCommand(newPackageListCmd())
	cmd.AddCommand(newPackageFlowCmd())
	return cmd
}

func newPackageShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <package-id>",
		Short: "Show one case package",
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

			pkg, err := svcs.lifecycle.GetPackage(ctx, common.ID(args[0]))
			if err != nil {
				return err
			}
			return printResult(cliCtx, pkg)
		},
	}
}

func newPackageListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List case packages",
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

			filter := casepackage.ListFilter{}
			if status != "" {
				s := casepackage.Status(status)
				if !s.Valid() {
					return fmt.Errorf("unknown status %q", status)
				}
				filter.Status = &s
			}
			pkgs, total, err := svcs.lifecycle.ListPackages(ctx, filter)
			if err != nil {
				return err
			}
			return printResult(cliCtx, map[string]interface{}{
				"packages": pkgs,
				"total":    total,
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (DRAFT, PUBLISHED, ...)")
	return cmd
}

func newPackageFlowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flow <package-id>",
		Short: "Show a package's flow audit trail, newest first",
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

			records, total, err := svcs.lifecycle.FlowHistory(ctx, common.ID(args[0]), casepackage.FlowFilter{})
			if err != nil {
				return err
			}
			return printResult(cliCtx, map[string]interface{}{
				"records": records,
				"total":   total,
			})
		},
	}
}

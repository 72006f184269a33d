// Package cli implements the casebridge operations command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/CaseBridge/internal/application/assignment"
	"github.com/turtacn/CaseBridge/internal/application/lifecycle"
	"github.com/turtacn/CaseBridge/internal/config"
	"github.com/turtacn/CaseBridge/internal/infrastructure/database/postgres"
	"github.com/turtacn/CaseBridge/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Timeout      time.Duration
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	OutputFormat string
	Timeout      time.Duration
}

type cliContextKey struct{}

// NewRootCommand builds the root command with global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "casebridge",
		Short:   "CaseBridge CLI for case-package brokering operations",
		Long:    "CaseBridge brokers debt-collection case packages between source institutions\nand disposal organizations, with rule-based smart assignment and a full\nlifecycle audit trail.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initContext(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./casebridge.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "json", "output format (json, text)")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "global operation timeout")

	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newRuleCmd())
	cmd.AddCommand(newAssignCmd())
	cmd.AddCommand(newPackageCmd())

	return cmd
}

func initContext(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:  opts.LogLevel,
		Format: "console",
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		OutputFormat: opts.OutputFormat,
		Timeout:      opts.Timeout,
	}
	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

// loadConfig resolves the config source: an explicit path, then
// ./casebridge.yaml, then environment variables only.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat("casebridge.yaml"); err == nil {
		return config.Load("casebridge.yaml")
	}
	return config.LoadFromEnv()
}

// GetCLIContext extracts the CLIContext installed by the root command.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, fmt.Errorf("cli context is not initialized")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, fmt.Errorf("cli context is not initialized")
	}
	return cliCtx, nil
}

// services bundles the application services the subcommands run against.
type services struct {
	assignment assignment.Service
	lifecycle  lifecycle.Service
}

// connectServices dials the database and wires the application layer.
// The returned closer must be called when the command finishes.
func connectServices(ctx context.Context, cliCtx *CLIContext) (*services, func(), error) {
	pool, err := postgres.Connect(ctx, cliCtx.Config.Database, cliCtx.Logger)
	if err != nil {
		return nil, nil, err
	}

	ruleRepo := repositories.NewRuleRepository(pool, cliCtx.Logger)
	pkgRepo := repositories.NewPackageRepository(pool, cliCtx.Logger)
	flowRepo := repositories.NewFlowRepository(pool, cliCtx.Logger)
	profileRepo := repositories.NewProfileRepository(pool, cliCtx.Logger)
	statsRepo := repositories.NewStatisticsRepository(pool, cliCtx.Logger)

	svcs := &services{
		assignment: assignment.NewService(ruleRepo, pkgRepo, flowRepo, profileRepo, statsRepo,
			nil, nil, cliCtx.Logger, &assignment.Config{
				BatchConcurrency:           cliCtx.Config.Assignment.BatchConcurrency,
				DefaultRecommendationLimit: cliCtx.Config.Assignment.DefaultRecommendationLimit,
			}),
		lifecycle: lifecycle.NewService(pkgRepo, flowRepo, nil, cliCtx.Logger),
	}
	return svcs, pool.Close, nil
}

// printResult writes v to stdout in the selected output format.
func printResult(cliCtx *CLIContext, v interface{}) error {
	switch cliCtx.OutputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "text":
		_, err := fmt.Printf("%+v\n", v)
		return err
	default:
		return fmt.Errorf("unknown output format %q", cliCtx.OutputFormat)
	}
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

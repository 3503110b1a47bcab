package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartcommute/smartcommute/config"
	"github.com/smartcommute/smartcommute/core/advisor"
	"github.com/smartcommute/smartcommute/core/plan"
	"github.com/smartcommute/smartcommute/core/quantile"
	"github.com/smartcommute/smartcommute/pkg/export"
)

var (
	planFile   string
	planFormat string
	planOut    string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan departures for the next five commute days",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planFile, "plan", "", "week plan config file, YAML or JSON")
	planCmd.Flags().StringVar(&planFormat, "format", "json", "output format: json or csv")
	planCmd.Flags().StringVarP(&planOut, "out", "o", "", "output path (defaults to stdout)")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	f, err := os.Open(cfg.API.BundlePath)
	if err != nil {
		return fmt.Errorf("open bundle: %w", err)
	}
	m, err := quantile.ReadBundle(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("read bundle: %w", err)
	}
	opt, err := advisor.NewOptimizer(m, cfg.Advisor)
	if err != nil {
		return err
	}

	var pcfg plan.PlanConfig
	if planFile != "" {
		if pcfg, err = plan.LoadConfig(planFile); err != nil {
			return fmt.Errorf("load plan config: %w", err)
		}
	} else {
		pcfg.SetDefaults()
	}

	planner := plan.Planner{Config: pcfg, Optimizer: opt}
	entries, err := planner.GenerateWeek(time.Now())
	if err != nil {
		return err
	}

	write := func(f *os.File) error {
		switch planFormat {
		case "json":
			return export.WriteJSON(f, entries)
		case "csv":
			return export.WritePlanCSV(f, entries)
		default:
			return fmt.Errorf("unsupported format %q", planFormat)
		}
	}
	if planOut == "" {
		return write(os.Stdout)
	}
	return writeFile(planOut, write)
}

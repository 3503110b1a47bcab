package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smartcommute/smartcommute/config"
	coremetrics "github.com/smartcommute/smartcommute/core/metrics"
	"github.com/smartcommute/smartcommute/core/sim"
	"github.com/smartcommute/smartcommute/infra/logger"
	"github.com/smartcommute/smartcommute/pkg/export"
)

var (
	generateOut string
	generateBI  string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic commute corpus",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "data/commute_data.csv", "corpus CSV output path")
	generateCmd.Flags().StringVar(&generateBI, "bi", "", "also write a BI-enriched CSV to this path")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New("generate")
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return fmt.Errorf("metrics sinks: %w", err)
	}

	gen, err := sim.New(cfg.Simulation, logg, sink)
	if err != nil {
		return err
	}
	corpus, err := gen.Generate(ctx)
	if err != nil {
		return err
	}

	if err := writeFile(generateOut, func(f *os.File) error {
		return export.WriteCorpusCSV(f, corpus)
	}); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}
	logg.Infof("wrote %d records to %s", len(corpus), generateOut)

	if generateBI != "" {
		if err := writeFile(generateBI, func(f *os.File) error {
			return export.WriteBICSV(f, export.EnrichBI(corpus))
		}); err != nil {
			return fmt.Errorf("write bi export: %w", err)
		}
		logg.Infof("wrote BI export to %s", generateBI)
	}
	return nil
}

// writeFile creates path, its parent directory included, and hands the open
// file to fn. The file is closed in every case; fn errors win over close
// errors.
func writeFile(path string, fn func(*os.File) error) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

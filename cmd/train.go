package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smartcommute/smartcommute/config"
	coremetrics "github.com/smartcommute/smartcommute/core/metrics"
	"github.com/smartcommute/smartcommute/core/quantile"
	"github.com/smartcommute/smartcommute/infra/logger"
	"github.com/smartcommute/smartcommute/pkg/export"
)

var (
	trainData   string
	trainOut    string
	trainReport string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit quantile models from a corpus CSV",
	RunE:  runTrain,
}

func init() {
	trainCmd.Flags().StringVarP(&trainData, "data", "d", "data/commute_data.csv", "corpus CSV to train on")
	trainCmd.Flags().StringVarP(&trainOut, "out", "o", "", "bundle output path (defaults to api.bundle_path)")
	trainCmd.Flags().StringVar(&trainReport, "report", "", "also write the holdout fit report JSON to this path")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New("train")
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return fmt.Errorf("metrics sinks: %w", err)
	}

	f, err := os.Open(trainData)
	if err != nil {
		return fmt.Errorf("open corpus: %w", err)
	}
	corpus, err := export.ReadCorpusCSV(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("read corpus: %w", err)
	}

	m, report, err := quantile.Fit(corpus, cfg.Training, logg, sink)
	if err != nil {
		return err
	}

	out := trainOut
	if out == "" {
		out = cfg.API.BundlePath
	}
	if err := writeFile(out, func(f *os.File) error {
		_, err := m.WriteTo(f)
		return err
	}); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	logg.Infof("wrote bundle to %s (%d train / %d holdout records)", out, report.TrainRecords, report.TestRecords)

	if trainReport != "" {
		if err := writeFile(trainReport, func(f *os.File) error {
			return export.WriteJSON(f, report)
		}); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}

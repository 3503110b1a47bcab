package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smartcommute/smartcommute/app"
	"github.com/smartcommute/smartcommute/config"
	"github.com/smartcommute/smartcommute/infra/logger"
	"github.com/smartcommute/smartcommute/jobs/tomorrow"
	"github.com/smartcommute/smartcommute/pkg/export"
)

var tomorrowWeather string

var tomorrowCmd = &cobra.Command{
	Use:   "tomorrow",
	Short: "Advise departures for every configured target on the next commute day",
	RunE:  runTomorrow,
}

func init() {
	tomorrowCmd.Flags().StringVar(&tomorrowWeather, "weather", "", "forecast category override")
	rootCmd.AddCommand(tomorrowCmd)
}

func runTomorrow(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New("tomorrow")

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()

	job := tomorrow.Job{
		Advisor: svc,
		Config:  cfg.Advisor,
		Log:     logg,
		Weather: tomorrowWeather,
	}
	records, err := job.Run(ctx)
	if err != nil {
		return err
	}
	return export.WriteJSON(os.Stdout, records)
}

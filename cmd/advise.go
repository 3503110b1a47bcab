package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartcommute/smartcommute/app"
	"github.com/smartcommute/smartcommute/config"
	"github.com/smartcommute/smartcommute/core/advisor"
	"github.com/smartcommute/smartcommute/core/model"
	"github.com/smartcommute/smartcommute/infra/logger"
	"github.com/smartcommute/smartcommute/jobs/tomorrow"
	"github.com/smartcommute/smartcommute/pkg/export"
)

var (
	adviseWeekday     string
	adviseWeather     string
	adviseSeason      string
	adviseTarget      string
	adviseLevel       float64
	adviseScale       float64
	adviseWindowStart string
	adviseWindowEnd   string
)

var adviseCmd = &cobra.Command{
	Use:   "advise",
	Short: "Run one departure query against the loaded bundle",
	RunE:  runAdvise,
}

func init() {
	adviseCmd.Flags().StringVar(&adviseWeekday, "weekday", "", "commute weekday (defaults to the next working day)")
	adviseCmd.Flags().StringVar(&adviseWeather, "weather", "", "weather category (defaults to the configured forecast)")
	adviseCmd.Flags().StringVar(&adviseSeason, "season", "", "season (defaults to the season of the resolved day)")
	adviseCmd.Flags().StringVar(&adviseTarget, "target", "", "target arrival HH:MM (defaults to the first configured target)")
	adviseCmd.Flags().Float64Var(&adviseLevel, "confidence", 0, "confidence level in (0,1), 0 uses the configured default")
	adviseCmd.Flags().Float64Var(&adviseScale, "scale", 0, "distance scale for what-if route lengths, 0 uses the default")
	adviseCmd.Flags().StringVar(&adviseWindowStart, "window-start", "", "earliest candidate departure HH:MM")
	adviseCmd.Flags().StringVar(&adviseWindowEnd, "window-end", "", "latest candidate departure HH:MM")
	rootCmd.AddCommand(adviseCmd)
}

func runAdvise(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	q, err := adviseQuery(cfg, time.Now())
	if err != nil {
		return err
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("advise").Errorf("service close: %v", err)
		}
	}()

	rec, err := svc.Advise(ctx, "cli", q)
	if err != nil {
		return err
	}
	return export.WriteJSON(os.Stdout, rec)
}

// adviseQuery resolves the flags against the configured defaults. Weekday
// and season default to the next commute day so a bare `advise` answers
// tomorrow's question.
func adviseQuery(cfg *config.Config, now time.Time) (advisor.Query, error) {
	day := tomorrow.NextCommuteDay(now)

	weekday := day.Weekday()
	if adviseWeekday != "" {
		var err error
		weekday, err = model.ParseWeekday(adviseWeekday)
		if err != nil {
			return advisor.Query{}, err
		}
	}
	season := model.SeasonOf(day.Month())
	if adviseSeason != "" {
		season = model.Season(adviseSeason)
	}
	weather := cfg.Advisor.TomorrowWeather
	if adviseWeather != "" {
		weather = adviseWeather
	}
	target := adviseTarget
	if target == "" {
		if len(cfg.Advisor.Targets) == 0 {
			return advisor.Query{}, fmt.Errorf("no target arrival: set --target or advisor.targets")
		}
		target = cfg.Advisor.Targets[0]
	}
	arrival, err := model.ParseHHMM(target)
	if err != nil {
		return advisor.Query{}, fmt.Errorf("target: %w", err)
	}

	q := advisor.Query{
		Context: model.Context{
			Weekday: weekday,
			Weather: model.Weather(weather),
			Season:  season,
		},
		TargetArrival: arrival,
		Level:         adviseLevel,
		DistanceScale: adviseScale,
	}
	if adviseWindowStart != "" {
		if q.WindowStart, err = model.ParseHHMM(adviseWindowStart); err != nil {
			return advisor.Query{}, fmt.Errorf("window-start: %w", err)
		}
	}
	if adviseWindowEnd != "" {
		if q.WindowEnd, err = model.ParseHHMM(adviseWindowEnd); err != nil {
			return advisor.Query{}, fmt.Errorf("window-end: %w", err)
		}
	}
	return q, nil
}

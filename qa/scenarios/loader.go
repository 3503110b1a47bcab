package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/smartcommute/smartcommute/core/advisor"
	"github.com/smartcommute/smartcommute/core/model"
)

// SimDef selects the corpus the scenario trains on. Empty fields fall back
// to the generator defaults.
type SimDef struct {
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
	Seed      int64  `yaml:"seed"`
}

// Expect bounds the optimizer outcome for one query. Nil or empty fields
// are not checked.
type Expect struct {
	Feasible     *bool    `yaml:"feasible,omitempty"`
	NotBefore    string   `yaml:"not_before,omitempty"` // earliest acceptable departure
	NotAfter     string   `yaml:"not_after,omitempty"`  // latest acceptable departure
	MinBufferMin *float64 `yaml:"min_buffer_min,omitempty"`
}

// QueryDef is one advisor query in scenario form.
type QueryDef struct {
	Weekday string  `yaml:"weekday"`
	Weather string  `yaml:"weather"`
	Season  string  `yaml:"season"`
	Target  string  `yaml:"target"`
	Level   float64 `yaml:"level"`
	Scale   float64 `yaml:"scale,omitempty"`
	Expect  Expect  `yaml:"expect"`
}

// ToQuery converts the definition into an advisor query. Weather and season
// stay as written so unknown categories surface from the predictor.
func (q QueryDef) ToQuery() (advisor.Query, error) {
	weekday, err := model.ParseWeekday(q.Weekday)
	if err != nil {
		return advisor.Query{}, err
	}
	target, err := model.ParseHHMM(q.Target)
	if err != nil {
		return advisor.Query{}, fmt.Errorf("target: %w", err)
	}
	return advisor.Query{
		Context: model.Context{
			Weekday: weekday,
			Weather: model.Weather(q.Weather),
			Season:  model.Season(q.Season),
		},
		TargetArrival: target,
		Level:         q.Level,
		DistanceScale: q.Scale,
	}, nil
}

type Scenario struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Simulation  SimDef     `yaml:"simulation"`
	Queries     []QueryDef `yaml:"queries"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

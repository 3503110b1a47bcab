package scenarios

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/smartcommute/smartcommute/core/advisor"
	"github.com/smartcommute/smartcommute/core/model"
	"github.com/smartcommute/smartcommute/core/quantile"
	"github.com/smartcommute/smartcommute/core/sim"
	"github.com/smartcommute/smartcommute/infra/logger"
	"github.com/smartcommute/smartcommute/infra/metrics"
)

// RunScenario generates the scenario corpus, fits the quantile bundle and
// checks every query expectation against the optimizer.
func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	simCfg := sim.Config{
		Seed:      sc.Simulation.Seed,
		StartDate: sc.Simulation.StartDate,
		EndDate:   sc.Simulation.EndDate,
	}
	simCfg.SetDefaults()
	gen, err := sim.New(simCfg, logger.NopLogger{}, sink)
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}
	corpus, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var trainCfg quantile.Config
	trainCfg.SetDefaults()
	m, _, err := quantile.Fit(corpus, trainCfg, logger.NopLogger{}, sink)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	var optCfg advisor.Config
	optCfg.SetDefaults()
	opt, err := advisor.NewOptimizer(m, optCfg)
	if err != nil {
		t.Fatalf("optimizer: %v", err)
	}

	for _, qd := range sc.Queries {
		q, err := qd.ToQuery()
		if err != nil {
			t.Fatalf("query %s %s: %v", qd.Weekday, qd.Target, err)
		}
		res, err := opt.Optimize(q)
		if err != nil {
			t.Fatalf("optimize %s %s: %v", qd.Weekday, qd.Target, err)
		}
		checkExpect(t, qd, res)
	}
}

func checkExpect(t *testing.T, qd QueryDef, res advisor.Result) {
	name := qd.Weekday + " " + qd.Target
	exp := qd.Expect
	if exp.Feasible != nil && res.Feasible != *exp.Feasible {
		t.Errorf("%s: feasible = %v, want %v", name, res.Feasible, *exp.Feasible)
	}
	if exp.NotBefore != "" {
		earliest, err := model.ParseHHMM(exp.NotBefore)
		if err != nil {
			t.Fatalf("%s: not_before: %v", name, err)
		}
		if res.Departure < earliest {
			t.Errorf("%s: departure %s before %s", name, res.Departure, earliest)
		}
	}
	if exp.NotAfter != "" {
		latest, err := model.ParseHHMM(exp.NotAfter)
		if err != nil {
			t.Fatalf("%s: not_after: %v", name, err)
		}
		if res.Departure > latest {
			t.Errorf("%s: departure %s after %s", name, res.Departure, latest)
		}
	}
	if exp.MinBufferMin != nil && res.BufferMin < *exp.MinBufferMin {
		t.Errorf("%s: buffer %.1f below %.1f", name, res.BufferMin, *exp.MinBufferMin)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `simulation:
  seed: 7
  start_date: "2023-01-02"
  end_date: "2023-06-30"
training:
  levels: [0.5, 0.95]
  time_bin_minutes: 30
advisor:
  window_end: "09:30"
  default_level: 0.9
api:
  addr: ":9191"
  logs_token: "secret"
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  client_id: "commute"
  topic: "smartcommute/advice"
metrics:
  sinks:
    - type: "nop"
advice_log:
  backend: "sqlite"
  path: "advice.db"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"seed", cfg.Simulation.Seed, int64(7)},
		{"end_date", cfg.Simulation.EndDate, "2023-06-30"},
		{"base default", cfg.Simulation.BaseTravelMin, 54.0},
		{"levels", len(cfg.Training.Levels), 2},
		{"bin", cfg.Training.TimeBinMinutes, 30},
		{"window start default", cfg.Advisor.WindowStart, "05:00"},
		{"window end", cfg.Advisor.WindowEnd, "09:30"},
		{"level", cfg.Advisor.DefaultLevel, 0.9},
		{"api addr", cfg.API.Addr, ":9191"},
		{"logs token", cfg.API.LogsToken, "secret"},
		{"mqtt broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt topic", cfg.MQTT.Topic, "smartcommute/advice"},
		{"metrics sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"advice backend", cfg.AdviceLog.Backend, "sqlite"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: expected %v got %v", c.name, c.want, c.got)
		}
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `api:
  addr: ":8080"
`)
	t.Setenv("SC_API__ADDR", ":9999")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.API.Addr != ":9999" {
		t.Fatalf("expected env override :9999 got %s", cfg.API.Addr)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestAdviceLogValidate(t *testing.T) {
	var c AdviceLogConfig
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	bad := c
	bad.Backend = "postgres"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown backend")
	}
}

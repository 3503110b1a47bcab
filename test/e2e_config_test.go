//go:build !no_containers

package test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartcommute/smartcommute/config"
	"github.com/smartcommute/smartcommute/test/util"
)

// runConfigTest boots the built binary with a real config file against a
// containerized broker and checks that advice is served and audited. BROKER
// and WORKDIR placeholders in the config are replaced before loading.
func runConfigTest(t *testing.T, cfgFile string) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	broker, cleanup, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Fatalf("mosquitto: %v", err)
	}
	defer cleanup()

	dir := t.TempDir()
	_, m, _ := pipeline(t)
	if err := writeBundleFile(filepath.Join(dir, "bundle.json"), m); err != nil {
		t.Fatalf("write bundle: %v", err)
	}

	data, err := os.ReadFile(cfgFile)
	if err != nil {
		t.Fatalf("read cfg: %v", err)
	}
	text := strings.ReplaceAll(string(data), "BROKER", broker)
	text = strings.ReplaceAll(text, "WORKDIR", dir)
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatalf("write cfg: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load cfg: %v", err)
	}

	bin := filepath.Join(dir, "smartcommute")
	buildCmd := exec.Command("go", "build", "-o", bin, ".")
	buildCmd.Dir = ".."
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("build: %v\n%s", err, out)
	}
	if err := os.Chmod(bin, 0o755); err != nil {
		t.Fatalf("chmod bin: %v", err)
	}

	cmd := exec.Command(bin, "--config", path)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("start svc: %v", err)
	}
	defer func() { _ = cmd.Process.Kill(); _ = cmd.Wait() }()

	base := "http://" + cfg.API.Addr
	waitCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := util.WaitForServer(waitCtx, base); err != nil {
		t.Fatalf("server not ready: %v", err)
	}

	reqBody := `{"weekday":"Wednesday","weather":"Clear","season":"winter","target_arrival":"08:30"}`
	resp, err := http.Post(base+"/api/v1/advise", "application/json", strings.NewReader(reqBody))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status %d, body %s", resp.StatusCode, raw)
	}
	var out struct {
		QueryID string `json:"query_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.QueryID == "" {
		t.Fatal("query_id is empty")
	}

	// The audit store the config selected must hold the decision.
	if cfg.AdviceLog.Backend != "memory" {
		info, err := os.Stat(cfg.AdviceLog.Path)
		if err != nil {
			t.Fatalf("audit store %s: %v", cfg.AdviceLog.Path, err)
		}
		if info.Size() == 0 {
			t.Fatalf("audit store %s is empty", cfg.AdviceLog.Path)
		}
		if cfg.AdviceLog.Backend == "jsonl" {
			raw, err := os.ReadFile(cfg.AdviceLog.Path)
			if err != nil {
				t.Fatalf("read audit log: %v", err)
			}
			if !strings.Contains(string(raw), out.QueryID) {
				t.Errorf("audit log does not contain query %s", out.QueryID)
			}
		}
	}

	if cfg.API.LogsToken != "" {
		req, err := http.NewRequest(http.MethodGet, base+"/api/v1/advice/logs", nil)
		if err != nil {
			t.Fatalf("logs request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+cfg.API.LogsToken)
		logsResp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("get logs: %v", err)
		}
		defer func() { _ = logsResp.Body.Close() }()
		if logsResp.StatusCode != http.StatusOK {
			t.Fatalf("logs status %d", logsResp.StatusCode)
		}
		var records []map[string]any
		if err := json.NewDecoder(logsResp.Body).Decode(&records); err != nil {
			t.Fatalf("decode logs: %v", err)
		}
		if len(records) == 0 {
			t.Fatal("logs endpoint returned no records")
		}
	}

	if cfg.Metrics.PrometheusEnabled {
		metricsCtx, metricsCancel := context.WithTimeout(ctx, util.MetricTimeout)
		defer metricsCancel()
		metricsURL := "http://" + cfg.Metrics.PrometheusAddr + "/metrics"
		if err := util.WaitForMetric(metricsCtx, metricsURL, "advice_requests_total"); err != nil {
			t.Fatalf("prometheus metric: %v", err)
		}
	}
}

func TestServeConfig_JSONL(t *testing.T)  { runConfigTest(t, "configs/serve_jsonl.yaml") }
func TestServeConfig_SQLite(t *testing.T) { runConfigTest(t, "configs/serve_sqlite.yaml") }

package dashboard

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderMissingEnv(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "")
	t.Setenv("PROMETHEUS_DATASOURCE_UID", "")
	if err := Render(t.TempDir(), Data{Table: "wban_sweep_points"}); err == nil {
		t.Fatalf("expected error for missing env vars")
	}
}

func TestRenderSuccess(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "uid1")
	t.Setenv("PROMETHEUS_DATASOURCE_UID", "uid2")

	dir := t.TempDir()
	if err := Render(dir, Data{Table: "my_points"}); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "grafana-sweep-dashboard.json"))
	if err != nil {
		t.Fatalf("read dashboard: %v", err)
	}
	if !strings.Contains(string(b), "uid1") || !strings.Contains(string(b), "FROM my_points") {
		t.Fatalf("greptime uid or table not rendered")
	}
	if !json.Valid(b) {
		t.Fatalf("sweep dashboard is not valid JSON")
	}

	b, err = os.ReadFile(filepath.Join(dir, "grafana-metrics-dashboard.json"))
	if err != nil {
		t.Fatalf("read metrics dashboard: %v", err)
	}
	if !strings.Contains(string(b), "uid2") {
		t.Fatalf("prometheus uid not rendered")
	}
	if !json.Valid(b) {
		t.Fatalf("metrics dashboard is not valid JSON")
	}
}

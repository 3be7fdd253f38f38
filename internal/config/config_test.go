package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	marketengine "market-sim-go/internal/market-engine"
	"market-sim-go/internal/models"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	d := marketengine.DefaultParams()
	if cfg.Engine.Interval != d.Interval || cfg.Engine.Cadence != d.Cadence {
		t.Errorf("unexpected engine timing %s/%s", cfg.Engine.Interval, cfg.Engine.Cadence)
	}
	if cfg.Engine.GarchA != d.GarchA || cfg.Engine.GarchB != d.GarchB || cfg.Engine.DF != d.DF {
		t.Errorf("model constants not defaulted: %+v", cfg.Engine)
	}
	if len(cfg.Engine.StablecoinTokens) != len(d.StablecoinTokens) {
		t.Errorf("expected default stablecoin list, got %v", cfg.Engine.StablecoinTokens)
	}
	if cfg.Server.GRPCAddr != ":50051" {
		t.Errorf("expected :50051, got %q", cfg.Server.GRPCAddr)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log config %+v", cfg.Log)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  grpc_addr: "127.0.0.1:6000"
engine:
  interval: 250ms
  cadence: fixed_rate
  history_limit: 50
model:
  sigma0: 0.01
  common_rho: 0.2
stablecoins: [USDT, EURC]
instruments:
  - symbol: BTC
    price: 65000
  - symbol: usdt
    price: 1
    volume: 100
archive:
  sqlite_path: ticks.db
  snapshot_interval: 30s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.GRPCAddr != "127.0.0.1:6000" {
		t.Errorf("unexpected addr %q", cfg.Server.GRPCAddr)
	}
	if cfg.Engine.Interval != 250*time.Millisecond || cfg.Engine.Cadence != marketengine.CadenceFixedRate {
		t.Errorf("unexpected timing %s/%s", cfg.Engine.Interval, cfg.Engine.Cadence)
	}
	if cfg.Engine.HistoryLimit != 50 || cfg.Engine.Sigma0 != 0.01 || cfg.Engine.CommonRho != 0.2 {
		t.Errorf("overrides not applied: %+v", cfg.Engine)
	}
	if cfg.Engine.GarchB != marketengine.DefaultParams().GarchB {
		t.Errorf("untouched model keys must keep defaults, got garch_b=%v", cfg.Engine.GarchB)
	}
	if !cfg.Engine.IsStablecoin("EURC") || cfg.Engine.IsStablecoin("DAI") {
		t.Errorf("stablecoin list not replaced: %v", cfg.Engine.StablecoinTokens)
	}
	if len(cfg.Instruments) != 2 || cfg.Instruments[1].Volume != 100 {
		t.Errorf("unexpected instruments %+v", cfg.Instruments)
	}
	if want := (models.InstrumentSeed{Symbol: "BTC", Price: 65000}); len(cfg.Instruments) > 0 && cfg.Instruments[0] != want {
		t.Errorf("expected %+v, got %+v", want, cfg.Instruments[0])
	}
	if cfg.Archive.SQLitePath != "ticks.db" || cfg.Archive.SnapshotInterval != 30*time.Second {
		t.Errorf("unexpected archive config %+v", cfg.Archive)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("MARKET_ENGINE_INTERVAL", "2s")
	t.Setenv("MARKET_MODEL_JUMP_LAMBDA", "0.01")
	t.Setenv("MARKET_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Engine.Interval != 2*time.Second {
		t.Errorf("expected 2s, got %s", cfg.Engine.Interval)
	}
	if cfg.Engine.JumpLambda != 0.01 {
		t.Errorf("expected jump_lambda 0.01, got %v", cfg.Engine.JumpLambda)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug, got %q", cfg.Log.Level)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"non-stationary garch", "model:\n  garch_a: 0.5\n  garch_b: 0.6\n", "garch"},
		{"zero interval", "engine:\n  interval: 0s\n", "interval"},
		{"bad cadence", "engine:\n  cadence: sometimes\n", "cadence"},
		{"bad seed", "instruments:\n  - symbol: BTC\n    price: 0\n", "instruments[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

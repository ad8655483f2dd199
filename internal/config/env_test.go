package config

import (
	"testing"
	"time"
)

func TestProcessStructFields(t *testing.T) {
	var cfg struct {
		Name  string        `env:"TEST_CFG_NAME"`
		Count int           `env:"TEST_CFG_COUNT"`
		On    bool          `env:"TEST_CFG_ON"`
		Wait  time.Duration `env:"TEST_CFG_WAIT"`
		Inner struct {
			Size int64 `env:"TEST_CFG_SIZE"`
		}
		Untagged string
	}
	cfg.Untagged = "kept"

	t.Setenv("TEST_CFG_NAME", "svc")
	t.Setenv("TEST_CFG_COUNT", "3")
	t.Setenv("TEST_CFG_ON", "true")
	t.Setenv("TEST_CFG_WAIT", "2s")
	t.Setenv("TEST_CFG_SIZE", "4096")

	if err := processStructFields(&cfg); err != nil {
		t.Fatalf("processStructFields: %v", err)
	}
	if cfg.Name != "svc" || cfg.Count != 3 || !cfg.On || cfg.Wait != 2*time.Second || cfg.Inner.Size != 4096 || cfg.Untagged != "kept" {
		t.Errorf("unexpected result %+v", cfg)
	}

	t.Setenv("TEST_CFG_COUNT", "many")
	if err := processStructFields(&cfg); err == nil {
		t.Error("expected an error for a non-numeric integer")
	}
}

package db

import (
	"testing"
	"time"

	"github.com/yigit/studentadmin/internal/config"
)

func TestPoolConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Host = "db.internal"
	cfg.Database.Port = "5433"
	cfg.Database.User = "app"
	cfg.Database.Password = "pw"
	cfg.Database.DBName = "students"
	cfg.Database.MaxOpenConns = 12
	cfg.Database.MaxIdleConns = 3
	cfg.Database.ConnMaxLifetime = "not-a-duration"

	pc, err := PoolConfig(cfg)
	if err != nil {
		t.Fatalf("PoolConfig: %v", err)
	}
	if pc.MaxConns != 12 || pc.MinConns != 3 {
		t.Errorf("conns = %d/%d", pc.MaxConns, pc.MinConns)
	}
	if pc.MaxConnLifetime != time.Hour {
		t.Errorf("lifetime = %v, want fallback of 1h", pc.MaxConnLifetime)
	}
	if pc.ConnConfig.Host != "db.internal" || pc.ConnConfig.Port != 5433 || pc.ConnConfig.Database != "students" {
		t.Errorf("conn config = %+v", pc.ConnConfig.Config)
	}
}

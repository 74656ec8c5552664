package db

import (
	"strings"
	"testing"

	"Articulate/config"
)

func TestMySQLDSN(t *testing.T) {
	cfg := &config.Config{DBUser: "app", DBPassword: "p@ss", DBHost: "db", DBPort: "3307", DBName: "articulate"}
	dsn := MySQLDSN(cfg)
	for _, want := range []string{"app:p@ss@tcp(db:3307)/articulate", "parseTime=true", "charset=utf8mb4"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("dsn %q missing %q", dsn, want)
		}
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := &config.Config{DBUser: "app", DBPassword: "secret", DBHost: "pg", DBPort: "5432", DBName: "articulate", DBSSLMode: "require"}
	want := "host=pg user=app password=secret dbname=articulate port=5432 sslmode=require TimeZone=UTC"
	if got := PostgresDSN(cfg); got != want {
		t.Errorf("PostgresDSN = %q, want %q", got, want)
	}
}

func TestDialectorRejectsUnknownDriver(t *testing.T) {
	if _, err := dialector(&config.Config{DBDriver: "oracle"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestModelsCoverAllTables(t *testing.T) {
	if n := len(Models()); n != 6 {
		t.Errorf("Models() = %d tables, want 6", n)
	}
}

func TestConnectGormDBOnce(t *testing.T) {
	first := ConnectGormDB(&config.Config{DBDriver: "oracle"})
	if first == nil {
		t.Fatal("expected error for unsupported driver")
	}
	// 结果被缓存，换配置也不会重连
	if err := ConnectGormDB(&config.Config{DBDriver: "mysql"}); err != first {
		t.Errorf("second ConnectGormDB err = %v, want cached %v", err, first)
	}
	if DB() != nil {
		t.Error("DB() should stay nil after a failed connect")
	}

	tests := []struct {
		name string
		fn   func() error
	}{
		{"ping", Ping},
		{"migrate", AutoMigrateModels},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.fn(); err == nil {
				t.Errorf("%s without connection err = nil", tc.name)
			}
		})
	}
	if err := CloseGormDB(); err != nil {
		t.Errorf("CloseGormDB without connection = %v", err)
	}
}

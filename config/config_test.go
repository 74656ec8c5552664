package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"
)

func TestParseEmailList(t *testing.T) {
	got := ParseEmailList(" Me@Example.com, ,you@example.com,")
	want := []string{"me@example.com", "you@example.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseEmailList = %v, want %v", got, want)
	}
	if got := ParseEmailList(""); len(got) != 0 {
		t.Errorf("empty list = %v", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("S3_PRESIGN_TTL_SECONDS", "900")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("RATE_LIMIT_RPS", "not-a-number")
	t.Setenv("ALLOWED_EMAILS", "a@example.com,B@example.com")

	cfg := Load()
	if cfg.DBDriver != "postgres" || cfg.DBPort != "5432" {
		t.Errorf("driver/port = %s/%s", cfg.DBDriver, cfg.DBPort)
	}
	if cfg.S3PresignTTL != 15*time.Minute {
		t.Errorf("S3PresignTTL = %v", cfg.S3PresignTTL)
	}
	if cfg.JWTTTL != 2*time.Hour {
		t.Errorf("JWTTTL = %v", cfg.JWTTTL)
	}
	if cfg.RateLimitRPS != 10 {
		t.Errorf("RateLimitRPS = %v, want fallback 10", cfg.RateLimitRPS)
	}
	if len(cfg.AllowedEmails) != 2 || cfg.AllowedEmails[1] != "b@example.com" {
		t.Errorf("AllowedEmails = %v", cfg.AllowedEmails)
	}
	if cfg.ReferenceTimezone != "Europe/London" {
		t.Errorf("ReferenceTimezone = %q", cfg.ReferenceTimezone)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DBDriver:          "mysql",
			JWTSecret:         "secret",
			AllowedEmails:     []string{"me@example.com"},
			S3AccessKey:       "ak",
			S3SecretKey:       "sk",
			ReferenceTimezone: "Europe/London",
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"missing allowlist", func(c *Config) { c.AllowedEmails = nil }, "ALLOWED_EMAILS"},
		{"missing s3 keys", func(c *Config) { c.S3SecretKey = "" }, "S3_ACCESS_KEY/S3_SECRET_KEY"},
		{"bad driver", func(c *Config) { c.DBDriver = "oracle" }, "unsupported DB_DRIVER"},
		{"bad zone", func(c *Config) { c.ReferenceTimezone = "Mars/Olympus" }, "REFERENCE_TIMEZONE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestRedisAddr(t *testing.T) {
	c := &Config{RedisHost: "cache", RedisPort: "6380"}
	if got := c.RedisAddr(); got != "cache:6380" {
		t.Errorf("RedisAddr = %q", got)
	}
}

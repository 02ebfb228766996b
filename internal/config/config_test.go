package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/essenz")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Env != "development" {
		t.Fatalf("Env = %q, want development", cfg.Env)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("HTTPPort = %q, want 8080", cfg.HTTPPort)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Fatalf("JWTTTL = %v, want 24h", cfg.JWTTTL)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("SessionTTL = %v, want 24h", cfg.SessionTTL)
	}
	if cfg.VerificationCodeTTL != time.Hour {
		t.Fatalf("VerificationCodeTTL = %v, want 1h", cfg.VerificationCodeTTL)
	}
	if cfg.BcryptCost != 12 {
		t.Fatalf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.MailEnabled() {
		t.Fatal("MailEnabled should be false without RESEND_API_KEY")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("SESSION_TTL", "48h")
	t.Setenv("BCRYPT_COST", "14")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://essenz.app, https://admin.essenz.app")
	t.Setenv("RESEND_API_KEY", "re_test_key")
	t.Setenv("BOOTSTRAP_ADMIN_EMAIL", " Root@Essenz.App ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Env != "production" {
		t.Fatalf("Env = %q", cfg.Env)
	}
	if cfg.JWTTTL != 2*time.Hour || cfg.SessionTTL != 48*time.Hour {
		t.Fatalf("TTLs = %v / %v", cfg.JWTTTL, cfg.SessionTTL)
	}
	if cfg.BcryptCost != 14 {
		t.Fatalf("BcryptCost = %d", cfg.BcryptCost)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.essenz.app" {
		t.Fatalf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.MailEnabled() {
		t.Fatal("MailEnabled should be true with RESEND_API_KEY set")
	}
	if cfg.BootstrapAdminEmail != "root@essenz.app" {
		t.Fatalf("BootstrapAdminEmail = %q", cfg.BootstrapAdminEmail)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_TTL", "one-day")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed JWT_TTL")
	}
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("AUTH_RATE_LIMIT_PER_MIN", "0")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"JWT_SECRET", "BCRYPT_COST", "AUTH_RATE_LIMIT_PER_MIN"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing mention of %s", msg, want)
		}
	}
}

func TestValidate_RedisRequiredWhenEnabled(t *testing.T) {
	setRequired(t)
	t.Setenv("RATE_LIMIT_REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	// Empty REDIS_ADDR falls back to the default, so force it here.
	cfg.RedisAddr = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "REDIS_ADDR") {
		t.Fatalf("expected REDIS_ADDR validation error, got %v", err)
	}
}

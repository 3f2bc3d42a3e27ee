package config

import (
	"os"
	"testing"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "value")
	t.Setenv("TEST_INT", "123")
	t.Setenv("TEST_INT_BAD", "12a")
	t.Setenv("TEST_BOOL_TRUE", "yes")
	t.Setenv("TEST_BOOL_FALSE", "0")

	if v := getEnv("TEST_STR", ""); v != "value" {
		t.Fatalf("expected value, got %s", v)
	}
	if v := getEnvAsInt("TEST_INT", 0); v != 123 {
		t.Fatalf("expected 123, got %d", v)
	}
	if v := getEnvAsInt("TEST_INT_BAD", 7); v != 7 {
		t.Fatalf("expected fallback 7, got %d", v)
	}
	if !getEnvAsBool("TEST_BOOL_TRUE", false) {
		t.Fatalf("expected true")
	}
	if getEnvAsBool("TEST_BOOL_FALSE", true) {
		t.Fatalf("expected false")
	}
	if !getEnvAsBool("TEST_BOOL_MISSING", true) {
		t.Fatalf("expected default for missing bool")
	}
}

func TestLoadDefaults(t *testing.T) {
	// ensure no interfering env vars
	_ = os.Unsetenv("SERVER_PORT")
	_ = os.Unsetenv("CALC_DEFAULT_DECIMALS")
	_ = os.Unsetenv("CALC_DEFAULT_STRATEGY")
	cfg := Load()
	if cfg.Server.Port == "" {
		t.Fatalf("expected default server port set")
	}
	if cfg.Calculator.DefaultDecimals != 2 || cfg.Calculator.DefaultStrategy != "inc-tax" {
		t.Fatalf("unexpected calculator defaults: %+v", cfg.Calculator)
	}
	if cfg.Kafka.Topics.Requests == "" || cfg.Kafka.Topics.Quotes == "" {
		t.Fatalf("expected kafka topics set")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CALC_DEFAULT_STRATEGY", "without-tax")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("KAFKA_ENABLED", "false")

	cfg := Load()
	if cfg.Calculator.DefaultStrategy != "without-tax" {
		t.Fatalf("expected strategy override, got %s", cfg.Calculator.DefaultStrategy)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.Enabled {
		t.Fatalf("expected kafka disabled")
	}
}

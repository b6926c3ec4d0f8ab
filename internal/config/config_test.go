package config

import (
	"testing"
	"time"
)

// TestParseIntEnv проверяет разбор целочисленной переменной.
func TestParseIntEnv(t *testing.T) {
	t.Setenv("TEST_INT_ENV", "42")

	got, err := parseIntEnv("TEST_INT_ENV", 7)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}

	if _, err := parseIntEnv("TEST_INT_ENV_BAD", 7); err != nil {
		t.Fatalf("expected fallback for missing env, got %v", err)
	}

	t.Setenv("TEST_INT_ENV", "-1")
	if _, err := parseIntEnv("TEST_INT_ENV", 7); err == nil {
		t.Fatal("expected error for non-positive value")
	}
}

// TestParseDurationEnv проверяет разбор длительности.
func TestParseDurationEnv(t *testing.T) {
	t.Setenv("TEST_DURATION_ENV", "250ms")

	got, err := parseDurationEnv("TEST_DURATION_ENV", time.Second)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", got)
	}

	t.Setenv("TEST_DURATION_ENV", "soon")
	if _, err := parseDurationEnv("TEST_DURATION_ENV", time.Second); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

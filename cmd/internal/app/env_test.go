package app

import (
	"testing"
	"time"
)

func TestEnvString(t *testing.T) {
	t.Setenv("PLUME_TEST_STR", "  value  ")
	if got := EnvString("PLUME_TEST_STR", "def"); got != "value" {
		t.Fatalf("got %q", got)
	}
	if got := EnvString("PLUME_TEST_STR_MISSING", "def"); got != "def" {
		t.Fatalf("got %q", got)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("PLUME_TEST_BOOL", "true")
	if !EnvBool("PLUME_TEST_BOOL", false) {
		t.Fatal("want true")
	}
	t.Setenv("PLUME_TEST_BOOL", "not-a-bool")
	if EnvBool("PLUME_TEST_BOOL", false) {
		t.Fatal("invalid value should fall back to default")
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("PLUME_TEST_INT", "42")
	if got := EnvInt("PLUME_TEST_INT", 7); got != 42 {
		t.Fatalf("got %d", got)
	}
	t.Setenv("PLUME_TEST_INT", "-3")
	if got := EnvInt("PLUME_TEST_INT", 7); got != 7 {
		t.Fatalf("non-positive should fall back, got %d", got)
	}
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("PLUME_TEST_DUR", "90s")
	if got := EnvDuration("PLUME_TEST_DUR", time.Minute); got != 90*time.Second {
		t.Fatalf("got %v", got)
	}
	t.Setenv("PLUME_TEST_DUR", "banana")
	if got := EnvDuration("PLUME_TEST_DUR", time.Minute); got != time.Minute {
		t.Fatalf("invalid should fall back, got %v", got)
	}
}

func TestEnvSecret(t *testing.T) {
	if EnvSecret("PLUME_TEST_SECRET_MISSING") != nil {
		t.Fatal("missing secret should be nil")
	}
	t.Setenv("PLUME_TEST_SECRET", "s3cr3t")
	if got := string(EnvSecret("PLUME_TEST_SECRET")); got != "s3cr3t" {
		t.Fatalf("got %q", got)
	}
}

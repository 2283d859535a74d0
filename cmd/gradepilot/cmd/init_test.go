package cmd

import (
	"os"
	"strings"
	"testing"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getting cwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("changing dir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestInitWritesConfig(t *testing.T) {
	chdirTemp(t)

	if err := runInit(nil, nil); err != nil {
		t.Fatalf("runInit failed: %v", err)
	}

	data, err := os.ReadFile(".gradepilot.yaml")
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	if !strings.Contains(string(data), "gemini:") {
		t.Errorf("config missing gemini section:\n%s", data)
	}
}

func TestInitRefusesOverwrite(t *testing.T) {
	chdirTemp(t)

	if err := os.WriteFile(".gradepilot.yaml", []byte("log:\n  level: debug\n"), 0o600); err != nil {
		t.Fatalf("seeding config: %v", err)
	}

	initForce = false
	if err := runInit(nil, nil); err == nil {
		t.Fatal("expected error without --force")
	}

	initForce = true
	t.Cleanup(func() { initForce = false })
	if err := runInit(nil, nil); err != nil {
		t.Fatalf("runInit with force failed: %v", err)
	}
}

package main

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrisonrobin/arrange/pkg/config"
)

func TestRunSetCalendar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	var out bytes.Buffer
	if err := run([]string{"-config", path, "-set-calendar", "Errands"}, &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out.String(), "Default calendar set to: Errands") {
		t.Errorf("unexpected output %q", out.String())
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Calendar != "Errands" {
		t.Errorf("Expected saved calendar 'Errands', got %q", cfg.Calendar)
	}
}

func TestRunReturnsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := run([]string{"-config", path}, io.Discard); !errors.Is(err, errUsage) {
		t.Errorf("Expected errUsage without a command, got %v", err)
	}
	if err := run([]string{"-no-such-flag"}, io.Discard); err == nil {
		t.Error("Expected an error for an unknown flag")
	}
}

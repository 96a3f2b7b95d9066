package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeDefaults(t *testing.T) {
	var cfg Config
	cfg.Normalize()

	if cfg.Listen != "127.0.0.1:8080" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.Timezone != "America/Vancouver" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
	if cfg.SheetName != "View Courses for Student" {
		t.Errorf("SheetName = %q", cfg.SheetName)
	}
	if cfg.HeaderRow != 3 || cfg.FirstDataRow != 4 {
		t.Errorf("HeaderRow/FirstDataRow = %d/%d", cfg.HeaderRow, cfg.FirstDataRow)
	}
}

// FirstDataRow must stay below the header row.
func TestNormalizeDataRowAfterHeader(t *testing.T) {
	cfg := Config{HeaderRow: 5, FirstDataRow: 2}
	cfg.Normalize()
	if cfg.FirstDataRow != 6 {
		t.Errorf("FirstDataRow = %d, want 6", cfg.FirstDataRow)
	}
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Timezone != "America/Vancouver" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config perms = %o, want 600", perm)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	in := DefaultConfig()
	in.Timezone = "America/Toronto"
	in.CalendarName = "Fall Term"
	in.BasicAuth = &BasicAuthConfig{Username: "u", Password: "p"}

	if err := in.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if out.Timezone != "America/Toronto" {
		t.Errorf("Timezone = %q", out.Timezone)
	}
	if out.CalendarName != "Fall Term" {
		t.Errorf("CalendarName = %q", out.CalendarName)
	}
	if out.BasicAuth == nil || out.BasicAuth.Username != "u" {
		t.Errorf("BasicAuth = %+v", out.BasicAuth)
	}
}

func TestLoadRejectsEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

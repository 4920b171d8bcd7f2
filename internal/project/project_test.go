package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScaffoldWritesMainAndConfig(t *testing.T) {
	dir := t.TempDir()
	if err := Scaffold(dir, "demo"); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "main.zr")); err != nil {
		t.Fatalf("expected main.zr to exist: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Project.Name != "demo" {
		t.Fatalf("Project.Name = %q, want %q", cfg.Project.Name, "demo")
	}
	if cfg.Project.Entry != "main.zr" {
		t.Fatalf("Project.Entry = %q, want %q", cfg.Project.Entry, "main.zr")
	}
}

func TestScaffoldRefusesToOverwriteExistingMain(t *testing.T) {
	dir := t.TempDir()
	if err := Scaffold(dir, "demo"); err != nil {
		t.Fatal(err)
	}
	if err := Scaffold(dir, "demo"); err == nil {
		t.Fatal("expected a second Scaffold call to fail since main.zr already exists")
	}
}

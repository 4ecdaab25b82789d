package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValues(t *testing.T) {
	c := Default()
	if c.Hash.SizeMB != 64 {
		t.Errorf("Hash.SizeMB = %d, want 64", c.Hash.SizeMB)
	}
	if c.Search.Threads != 1 {
		t.Errorf("Search.Threads = %d, want 1", c.Search.Threads)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c != Default() {
		t.Errorf("Load(missing) = %+v, want Default()", c)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[hash]
size_mb = 256

[search]
threads = 4
safety_margin_ms = 100
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Hash.SizeMB != 256 {
		t.Errorf("Hash.SizeMB = %d, want 256", c.Hash.SizeMB)
	}
	if c.Search.Threads != 4 {
		t.Errorf("Search.Threads = %d, want 4", c.Search.Threads)
	}
	if c.SafetyMargin() != 100*time.Millisecond {
		t.Errorf("SafetyMargin() = %v, want 100ms", c.SafetyMargin())
	}
}

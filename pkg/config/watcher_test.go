package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestWatcher_ReloadsOnChange tests that rewriting the config file
// delivers a reloaded configuration.
func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ganymede.yaml")
	if err := os.WriteFile(path, []byte("evidence:\n  max_bundles: 100\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	watcher, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 1)
	go func() {
		_ = watcher.Watch(ctx, func(cfg *Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("evidence:\n  max_bundles: 7\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Evidence.MaxBundles != 7 {
			t.Errorf("MaxBundles = %d, want 7", cfg.Evidence.MaxBundles)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("No reload observed")
	}
}

// TestWatcher_KeepsPreviousConfigOnBadReload tests that an invalid
// rewrite is dropped instead of delivered.
func TestWatcher_KeepsPreviousConfigOnBadReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ganymede.yaml")
	if err := os.WriteFile(path, []byte("evidence:\n  max_bundles: 100\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	watcher, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 1)
	go func() {
		_ = watcher.Watch(ctx, func(cfg *Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	time.Sleep(100 * time.Millisecond)
	// max_bundles must be >= 1, so this reload fails validation.
	if err := os.WriteFile(path, []byte("evidence:\n  max_bundles: 0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	select {
	case cfg := <-reloaded:
		t.Fatalf("Invalid config was delivered: %+v", cfg)
	case <-time.After(500 * time.Millisecond):
	}
}

package config

import (
	"path/filepath"
	"testing"
)

func TestLoadOrCreateCreatesAndReloadsConfig(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("SECRETLINK_DATA_DIR", tempDir)

	firstCfg, firstPath, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("first LoadOrCreate failed: %v", err)
	}
	if firstCfg.UserID == "" {
		t.Fatalf("expected non-empty user ID")
	}
	if firstCfg.Bucket != DefaultBucket {
		t.Fatalf("expected default bucket %q, got %q", DefaultBucket, firstCfg.Bucket)
	}
	if firstCfg.ServerURL != "" {
		t.Fatalf("expected embedded-store default, got server %q", firstCfg.ServerURL)
	}

	expectedConfigPath := filepath.Join(tempDir, "config.json")
	if firstPath != expectedConfigPath {
		t.Fatalf("expected config path %q, got %q", expectedConfigPath, firstPath)
	}

	secondCfg, secondPath, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("second LoadOrCreate failed: %v", err)
	}

	if secondPath != firstPath {
		t.Fatalf("expected config path to be stable, got %q then %q", firstPath, secondPath)
	}
	if secondCfg.UserID != firstCfg.UserID {
		t.Fatalf("expected stable user ID, got %q then %q", firstCfg.UserID, secondCfg.UserID)
	}
}

func TestLoadOrCreateNormalizesPartialConfig(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("SECRETLINK_DATA_DIR", tempDir)

	cfgPath := filepath.Join(tempDir, "config.json")
	partial := &Config{ServerURL: "https://backend.example.test"}
	if err := Save(cfgPath, partial); err != nil {
		t.Fatalf("Save partial config failed: %v", err)
	}

	cfg, _, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if cfg.UserID == "" {
		t.Fatalf("expected a minted user ID")
	}
	if cfg.Bucket != DefaultBucket {
		t.Fatalf("expected bucket to normalize to %q, got %q", DefaultBucket, cfg.Bucket)
	}
	if cfg.ServerURL != "https://backend.example.test" {
		t.Fatalf("server URL should be retained, got %q", cfg.ServerURL)
	}

	reloaded, _, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.UserID != cfg.UserID {
		t.Fatalf("normalized user ID should persist, got %q then %q", cfg.UserID, reloaded.UserID)
	}
}

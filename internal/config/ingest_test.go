package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmptyIngestConfigDefaults(t *testing.T) {
	cfg := EmptyIngestConfig()

	if cfg.MaxRows != nil || cfg.MaxFileBytes != nil || cfg.ChunkSize != nil {
		t.Errorf("empty config should have all fields unset: %+v", cfg)
	}

	if cfg.GetMaxRows() != 2500 {
		t.Errorf("GetMaxRows() = %d, want 2500", cfg.GetMaxRows())
	}
	if cfg.GetMaxFileBytes() != 204500 {
		t.Errorf("GetMaxFileBytes() = %d, want 204500", cfg.GetMaxFileBytes())
	}
	if cfg.GetChunkSize() != 500 {
		t.Errorf("GetChunkSize() = %d, want 500", cfg.GetChunkSize())
	}
}

func TestLoadIngestConfig(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "ingest.json")
	content := `{"max_rows": 100, "chunk_size": 50}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadIngestConfig(path)
	if err != nil {
		t.Fatalf("LoadIngestConfig failed: %v", err)
	}

	if cfg.GetMaxRows() != 100 {
		t.Errorf("GetMaxRows() = %d, want 100", cfg.GetMaxRows())
	}
	if cfg.GetChunkSize() != 50 {
		t.Errorf("GetChunkSize() = %d, want 50", cfg.GetChunkSize())
	}
	// Unset field keeps the default.
	if cfg.GetMaxFileBytes() != 204500 {
		t.Errorf("GetMaxFileBytes() = %d, want 204500", cfg.GetMaxFileBytes())
	}
}

func TestLoadIngestConfigBadExtension(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "ingest.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadIngestConfig(path); err == nil {
		t.Fatal("expected error for non-json extension")
	}
}

func TestLoadIngestConfigInvalidValues(t *testing.T) {
	tmpDir := t.TempDir()

	cases := []struct {
		name    string
		content string
	}{
		{"negative max_rows", `{"max_rows": -1}`},
		{"zero max_file_bytes", `{"max_file_bytes": 0}`},
		{"oversized chunk_size", `{"chunk_size": 5000}`},
		{"bad json", `{`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, "bad.json")
			if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := LoadIngestConfig(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadIngestConfigMissingFile(t *testing.T) {
	if _, err := LoadIngestConfig("/nonexistent/ingest.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

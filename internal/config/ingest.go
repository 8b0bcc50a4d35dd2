// Package config loads optional JSON tuning for the ingestion pipeline.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// IngestConfig tunes the ETL pipeline. Fields omitted from the JSON file
// retain their defaults, so partial configs are safe.
type IngestConfig struct {
	// MaxRows is the data-row cutoff above which a trajectory file is
	// excluded.
	MaxRows *int `json:"max_rows,omitempty"`

	// MaxFileBytes approximates MaxRows from the file size so oversized
	// files are rejected without a full read.
	MaxFileBytes *int64 `json:"max_file_bytes,omitempty"`

	// ChunkSize is the number of records per bulk INSERT statement.
	ChunkSize *int `json:"chunk_size,omitempty"`
}

// EmptyIngestConfig returns an IngestConfig with all fields unset. The
// Get* methods provide fallback defaults for any unset field.
func EmptyIngestConfig() *IngestConfig {
	return &IngestConfig{}
}

// LoadIngestConfig loads an IngestConfig from a JSON file. The file must
// have a .json extension and stay under the max file size.
func LoadIngestConfig(path string) (*IngestConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyIngestConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *IngestConfig) Validate() error {
	if c.MaxRows != nil && *c.MaxRows <= 0 {
		return fmt.Errorf("max_rows must be positive, got %d", *c.MaxRows)
	}
	if c.MaxFileBytes != nil && *c.MaxFileBytes <= 0 {
		return fmt.Errorf("max_file_bytes must be positive, got %d", *c.MaxFileBytes)
	}
	if c.ChunkSize != nil && (*c.ChunkSize <= 0 || *c.ChunkSize > 1000) {
		return fmt.Errorf("chunk_size must be between 1 and 1000, got %d", *c.ChunkSize)
	}
	return nil
}

// GetMaxRows returns the max_rows value or the default.
func (c *IngestConfig) GetMaxRows() int {
	if c.MaxRows == nil {
		return 2500 // default
	}
	return *c.MaxRows
}

// GetMaxFileBytes returns the max_file_bytes value or the default.
func (c *IngestConfig) GetMaxFileBytes() int64 {
	if c.MaxFileBytes == nil {
		return 204500 // default
	}
	return *c.MaxFileBytes
}

// GetChunkSize returns the chunk_size value or the default.
func (c *IngestConfig) GetChunkSize() int {
	if c.ChunkSize == nil {
		return 500 // default
	}
	return *c.ChunkSize
}

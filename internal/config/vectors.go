package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvVectorsEnabled    = "COVENANT_VECTORS_ENABLED"
	EnvVectorsAPIKey     = "COVENANT_VECTORS_API_KEY"
	EnvVectorsModel      = "COVENANT_VECTORS_MODEL"
	EnvVectorsDimensions = "COVENANT_VECTORS_DIMENSIONS"
	EnvVectorsTopK       = "COVENANT_VECTORS_TOP_K"
)

// VectorsConfig holds embedding and similarity search settings.
// Indexing is disabled unless Enabled is set.
type VectorsConfig struct {
	Enabled    bool   `toml:"enabled"`
	APIKey     string `toml:"api_key"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
	TopK       int    `toml:"top_k"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *VectorsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites fields from overlay. Enabled always applies.
func (c *VectorsConfig) Merge(overlay *VectorsConfig) {
	c.Enabled = overlay.Enabled
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Dimensions != 0 {
		c.Dimensions = overlay.Dimensions
	}
	if overlay.TopK != 0 {
		c.TopK = overlay.TopK
	}
}

func (c *VectorsConfig) loadDefaults() {
	if c.Model == "" {
		c.Model = "gemini-embedding-001"
	}
	if c.Dimensions <= 0 {
		c.Dimensions = 384
	}
	if c.TopK <= 0 {
		c.TopK = 5
	}
}

func (c *VectorsConfig) loadEnv() {
	if v := os.Getenv(EnvVectorsEnabled); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Enabled = b
		}
	}
	if v := os.Getenv(EnvVectorsAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvVectorsModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvVectorsDimensions); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Dimensions = n
		}
	}
	if v := os.Getenv(EnvVectorsTopK); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TopK = n
		}
	}
}

func (c *VectorsConfig) validate() error {
	if c.Dimensions < 1 {
		return fmt.Errorf("dimensions must be positive")
	}
	if c.TopK < 1 {
		return fmt.Errorf("top_k must be positive")
	}
	if c.Enabled && c.APIKey == "" {
		return fmt.Errorf("api_key required when vectors are enabled")
	}
	return nil
}

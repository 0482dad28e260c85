package storage

import (
	"fmt"
	"os"
	"strconv"
)

// Supported storage providers.
const (
	ProviderAzure = "azure"
	ProviderMinio = "minio"
)

// Config holds blob storage connection parameters for either provider.
// Azure authenticates with ConnectionString when set, otherwise with
// DefaultAzureCredential against ServiceURL. MinIO uses Endpoint and static keys.
type Config struct {
	Provider         string `toml:"provider"`
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`
	Endpoint         string `toml:"endpoint"`
	AccessKey        string `toml:"access_key"`
	SecretKey        string `toml:"secret_key"`
	UseSSL           bool   `toml:"use_ssl"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider         string
	ContainerName    string
	ConnectionString string
	ServiceURL       string
	Endpoint         string
	AccessKey        string
	SecretKey        string
	UseSSL           string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.ServiceURL != "" {
		c.ServiceURL = overlay.ServiceURL
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.AccessKey != "" {
		c.AccessKey = overlay.AccessKey
	}
	if overlay.SecretKey != "" {
		c.SecretKey = overlay.SecretKey
	}
	if overlay.UseSSL {
		c.UseSSL = true
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAzure
	}
	if c.ContainerName == "" {
		c.ContainerName = "contracts"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, target *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*target = v
		}
	}

	set(env.Provider, &c.Provider)
	set(env.ContainerName, &c.ContainerName)
	set(env.ConnectionString, &c.ConnectionString)
	set(env.ServiceURL, &c.ServiceURL)
	set(env.Endpoint, &c.Endpoint)
	set(env.AccessKey, &c.AccessKey)
	set(env.SecretKey, &c.SecretKey)

	if env.UseSSL != "" {
		if v := os.Getenv(env.UseSSL); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.UseSSL = b
			}
		}
	}
}

func (c *Config) validate() error {
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}

	switch c.Provider {
	case ProviderAzure:
		if c.ConnectionString == "" && c.ServiceURL == "" {
			return fmt.Errorf("connection_string or service_url required")
		}
	case ProviderMinio:
		if c.Endpoint == "" {
			return fmt.Errorf("endpoint required")
		}
		if c.AccessKey == "" || c.SecretKey == "" {
			return fmt.Errorf("access_key and secret_key required")
		}
	default:
		return fmt.Errorf("unknown provider: %s", c.Provider)
	}

	return nil
}

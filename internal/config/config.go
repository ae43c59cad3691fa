// Package config handles loading and validation of client configuration.
// Supports development (env vars, optional .env file) and production
// (Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/joho/godotenv"
)

// defaultStoreName is the storefront this client ships for.
const defaultStoreName = "LEGO Mens Wear"

// Config holds all client configuration.
// Environment determines whether store settings load from env vars
// (development) or Secret Manager (production).
type Config struct {
	Environment string // "development" or "production"
	LogLevel    string // "debug", "info", "warn", "error"

	// StateDir is where tokens, the cached profile, and the cart
	// persist. Empty means the platform default config dir.
	StateDir string

	// Timeout bounds every backend request.
	Timeout time.Duration

	// BrowserTLS enables the browser-fingerprint transport.
	BrowserTLS bool

	// MCPPort, when non-empty, is the port the MCP listener binds.
	MCPPort string

	// GCP settings (required in production)
	GCPProject string
	StoreID    string

	// Store-specific settings (loaded from secrets in production)
	Store StoreConfig
}

// StoreConfig contains the storefront's settings. In production this
// is loaded from Secret Manager as JSON; in development from env vars
// or CONFIG_FILE.
type StoreConfig struct {
	BaseURL        string `json:"base_url"`
	StoreName      string `json:"store_name,omitempty"`
	WhatsAppNumber string `json:"whatsapp_number"`
	RefPrefix      string `json:"ref_prefix,omitempty"`
}

// Load reads configuration from file, environment, or Secret Manager.
// Priority: CONFIG_FILE (if set) then env vars / Secret Manager. In
// development a .env file in the working directory is folded into the
// environment first.
func Load(ctx context.Context) (*Config, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromFile(configPath)
	}

	// Missing .env is fine; it only exists in dev checkouts.
	_ = godotenv.Load()

	cfg := &Config{
		Environment: envOrDefault("ENVIRONMENT", "development"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		StateDir:    os.Getenv("STATE_DIR"),
		MCPPort:     os.Getenv("MCP_PORT"),
		GCPProject:  os.Getenv("GCP_PROJECT"),
		StoreID:     os.Getenv("STORE_ID"),
		BrowserTLS:  os.Getenv("BROWSER_TLS") == "true",
		Timeout:     30 * time.Second,
	}
	if raw := os.Getenv("REQUEST_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing REQUEST_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}

	var err error
	if cfg.Environment == "production" {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		if cfg.StoreID == "" {
			return nil, fmt.Errorf("STORE_ID required in production environment")
		}
		err = cfg.loadFromSecretManager(ctx)
	} else {
		err = cfg.loadFromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("loading store config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile reads all configuration from a JSON file. Used for
// local development to avoid juggling env vars.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fileConfig struct {
		Environment string      `json:"environment"`
		LogLevel    string      `json:"log_level"`
		StateDir    string      `json:"state_dir"`
		MCPPort     string      `json:"mcp_port"`
		Timeout     string      `json:"timeout"`
		BrowserTLS  bool        `json:"browser_tls"`
		Store       StoreConfig `json:"store"`
	}
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := &Config{
		Environment: withDefault(fileConfig.Environment, "development"),
		LogLevel:    withDefault(fileConfig.LogLevel, "info"),
		StateDir:    fileConfig.StateDir,
		MCPPort:     fileConfig.MCPPort,
		BrowserTLS:  fileConfig.BrowserTLS,
		Timeout:     30 * time.Second,
		Store:       fileConfig.Store,
	}
	if fileConfig.Timeout != "" {
		d, err := time.ParseDuration(fileConfig.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parsing timeout: %w", err)
		}
		cfg.Timeout = d
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromSecretManager fetches store config from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/{store_id}/versions/latest
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
		c.GCPProject, c.StoreID)

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", secretName, err)
	}

	if err := json.Unmarshal(result.Payload.Data, &c.Store); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}
	return nil
}

// loadFromEnv reads store config from individual environment
// variables. Used in development mode.
func (c *Config) loadFromEnv() error {
	c.Store = StoreConfig{
		BaseURL:        os.Getenv("STORE_BASE_URL"),
		StoreName:      os.Getenv("STORE_NAME"),
		WhatsAppNumber: os.Getenv("STORE_WHATSAPP"),
		RefPrefix:      os.Getenv("ORDER_REF_PREFIX"),
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Store.StoreName == "" {
		c.Store.StoreName = defaultStoreName
	}
	if c.Store.RefPrefix == "" {
		c.Store.RefPrefix = "LEG"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}

// validate checks that all required configuration fields are present.
func (c *Config) validate() error {
	if c.Store.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(c.Store.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url %q", c.Store.BaseURL)
	}
	if c.Store.WhatsAppNumber == "" {
		return fmt.Errorf("whatsapp_number is required")
	}
	return nil
}

// withDefault returns val if non-empty, otherwise defaultVal.
func withDefault(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

// envOrDefault returns the environment variable value or the default
// if not set.
func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

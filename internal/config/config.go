package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// OAuthConfig holds the credentials used to obtain a bearer token for the
// adrive:// remote. Obtaining and refreshing the token itself is outside
// this module's scope; this is just the persisted shape the CLI reads.
type OAuthConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RefreshToken string `toml:"refresh_token"`
}

// S3Config holds the credentials for an S3-backed drive.
type S3Config struct {
	Region          string `toml:"region"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
}

// AzureConfig holds the credentials for an Azure Blob-backed drive.
type AzureConfig struct {
	AccountName string `toml:"account_name"`
	AccountKey  string `toml:"account_key"`
}

// Config is the full persisted credential file.
type Config struct {
	OAuth OAuthConfig `toml:"oauth"`
	S3    S3Config    `toml:"s3"`
	Azure AzureConfig `toml:"azure"`
}

// Load reads and parses the config file at FilePath().
func Load() (*Config, error) {
	data, err := os.ReadFile(FilePath())
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", FilePath(), err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", FilePath(), err)
	}
	return &cfg, nil
}

// Save writes cfg to FilePath(), creating the config directory if needed.
func Save(cfg *Config) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	f, err := os.OpenFile(FilePath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", FilePath(), err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("config: encode %s: %w", FilePath(), err)
	}
	return nil
}

// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/valpere/OGScrapexter/internal/security"
)

// LoadFromFile loads configuration from a YAML file. A .env file next to the
// configuration is loaded first so that ${VAR} references can see it.
func LoadFromFile(filename string) (*Config, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration filename cannot be empty")
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", filename)
	}

	if err := LoadDotEnv(filepath.Join(filepath.Dir(filename), ".env")); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes
func LoadFromBytes(data []byte) (*Config, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("configuration data cannot be empty")
	}

	expandedData := expandEnvironmentVariables(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadFromReader loads configuration from an io.Reader
func LoadFromReader(reader io.Reader) (*Config, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader cannot be nil")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read from reader: %w", err)
	}

	return LoadFromBytes(data)
}

// SaveToFile saves configuration to a YAML file
func SaveToFile(config *Config, filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}
	if err := SaveToWriter(config, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SaveToWriter saves configuration to an io.Writer
func SaveToWriter(config *Config, writer io.Writer) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if writer == nil {
		return fmt.Errorf("writer cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return err
	}

	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}
	return encoder.Close()
}

// LoadDotEnv loads environment files that exist; missing files are skipped.
// Variables already present in the environment are not overridden.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// GenerateTemplate generates a template configuration for the specified type
func GenerateTemplate(templateType string) Config {
	switch strings.ToLower(templateType) {
	case "bulk":
		return generateBulkTemplate()
	case "server":
		return generateServerTemplate()
	default:
		return generateBasicTemplate()
	}
}

// expandEnvironmentVariables substitutes $VAR, ${VAR} and ${VAR:-default}
func expandEnvironmentVariables(content string) string {
	return os.Expand(content, func(name string) string {
		if key, fallback, ok := strings.Cut(name, ":-"); ok {
			if value, set := os.LookupEnv(key); set && value != "" {
				return value
			}
			return fallback
		}
		return os.Getenv(name)
	})
}

// applyDefaults applies default values to the configuration
func applyDefaults(config *Config) {
	if config.Client.Timeout == 0 {
		config.Client.Timeout = 10 * time.Second
	}
	if config.Client.RetryDelay == 0 {
		config.Client.RetryDelay = 500 * time.Millisecond
	}
	if config.Client.Burst == 0 {
		config.Client.Burst = 5
	}
	if config.Client.MaxBodyBytes == 0 {
		config.Client.MaxBodyBytes = 5 << 20
	}
	if config.Client.MaxRedirects == 0 {
		config.Client.MaxRedirects = 10
	}

	defaults := security.DefaultSecurityConfig()
	if len(config.Security.AllowedSchemes) == 0 {
		config.Security.AllowedSchemes = defaults.AllowedSchemes
	}
	if config.Security.MaxURLLength == 0 {
		config.Security.MaxURLLength = defaults.MaxURLLength
	}

	if config.Cache.Type == "" {
		config.Cache.Type = "memory"
	}
	if config.Cache.TTL == 0 {
		config.Cache.TTL = time.Hour
	}
	if config.Cache.MaxSize == 0 {
		config.Cache.MaxSize = 1000
	}

	if config.Bulk.Concurrency == 0 {
		config.Bulk.Concurrency = 5
	}
	if config.Bulk.ContinueOnError == nil {
		continueOnError := true
		config.Bulk.ContinueOnError = &continueOnError
	}

	if config.Server.Listen == "" {
		config.Server.Listen = ":8080"
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = 15 * time.Second
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = 2 * time.Minute
	}
	if config.Server.MaxBulkURLs == 0 {
		config.Server.MaxBulkURLs = 100
	}
	if config.Server.RateLimit > 0 && config.Server.Burst == 0 {
		config.Server.Burst = int(config.Server.RateLimit) + 1
	}

	if config.Metrics.Namespace == "" {
		config.Metrics.Namespace = "ogscrapexter"
	}
	if config.Metrics.MetricsPath == "" {
		config.Metrics.MetricsPath = "/metrics"
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "console"
	}

	if config.Output.Format == "" {
		config.Output.Format = "json"
	}
}

func generateBasicTemplate() Config {
	config := Config{}
	config.Extraction.SelectBestImage = true
	config.Extraction.Validate = true
	config.Security.BlockPrivateHosts = true
	config.Output.Pretty = true
	applyDefaults(&config)
	return config
}

func generateBulkTemplate() Config {
	config := generateBasicTemplate()
	config.Extraction.AllMedia = true
	config.Client.RateLimit = 2
	config.Client.Retries = 2
	config.Bulk.Concurrency = 10
	config.Bulk.RateRequests = 60
	config.Bulk.RateWindow = time.Minute
	config.Output.File = "results.json"
	return config
}

func generateServerTemplate() Config {
	config := generateBasicTemplate()
	config.Cache.Type = "redis"
	config.Cache.RedisURL = "${REDIS_URL:-redis://localhost:6379/0}"
	config.Client.Retries = 1
	config.Server.RateLimit = 20
	config.Server.Burst = 40
	config.Metrics.Enabled = true
	config.Logging.Format = "json"
	return config
}

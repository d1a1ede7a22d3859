// Package config loads CLI settings and stores Pure360 credentials.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pure360/pure360-cli/internal/api"
	"github.com/pure360/pure360-cli/internal/validation"
)

//go:embed defaults.yaml
var defaults []byte

const (
	envPrefix     = "PURE360"
	envConfigFile = "PURE360_CONFIG"
	envEnvFile    = "PURE360_ENV_FILE"

	configFileName = "config.yaml"
)

// Settings are the non-secret CLI settings.
type Settings struct {
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
	Output      string        `mapstructure:"output" json:"output"`
	LogFormat   string        `mapstructure:"log_format" json:"log_format"`
	Concurrency int           `mapstructure:"concurrency" json:"concurrency"`
	Endpoints   api.Endpoints `mapstructure:"endpoints" json:"endpoints"`

	// Source is the config file that was merged, if any.
	Source string `mapstructure:"-" json:"source,omitempty"`
}

// Load reads embedded defaults, merges the YAML file at path (or the
// PURE360_CONFIG file, or the user config file when present), and applies
// PURE360_* environment overrides.
func Load(path string) (Settings, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Settings{}, fmt.Errorf("failed to read default settings: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = firstNonBlankEnv(envConfigFile)
		explicit = path != ""
	}
	if !explicit {
		path = DefaultConfigPath()
	}
	source := ""
	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			if explicit || !isNotExist(err) {
				return Settings{}, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else {
			source = path
		}
	}

	// PURE360_BASE_URL, PURE360_ENDPOINTS_LIST, ...
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	s.Source = source
	return s, s.Validate()
}

// Validate checks the loaded values.
func (s Settings) Validate() error {
	if s.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", s.Timeout)
	}
	if s.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", s.Concurrency)
	}
	switch strings.ToLower(s.Output) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid output %q: must be text or json", s.Output)
	}
	for name, u := range endpointsByName(s.ResolvedEndpoints()) {
		if err := validation.ValidateEndpointURL(u); err != nil {
			return fmt.Errorf("endpoint %s: %w", name, err)
		}
	}
	return nil
}

// ResolvedEndpoints returns the configured endpoints, deriving every unset
// one from BaseURL.
func (s Settings) ResolvedEndpoints() api.Endpoints {
	base := s.BaseURL
	if strings.TrimSpace(base) == "" {
		base = api.DefaultBaseURL
	}
	return s.Endpoints.Merge(api.EndpointsFromBase(base))
}

// WithBaseURL returns s with base replacing the base URL and every
// per-script override.
func (s Settings) WithBaseURL(base string) Settings {
	s.BaseURL = base
	s.Endpoints = api.Endpoints{}
	return s
}

func endpointsByName(e api.Endpoints) map[string]string {
	return map[string]string{
		"list_upload_meta": e.ListUploadMeta,
		"list_upload_data": e.ListUploadData,
		"list":             e.List,
		"one_to_one":       e.OneToOne,
	}
}

// DefaultConfigPath returns the per-user config file location.
func DefaultConfigPath() string {
	dir, err := userConfigDir()
	if err != nil || strings.TrimSpace(dir) == "" {
		return ""
	}
	return filepath.Join(dir, serviceName, configFileName)
}

// LoadDotEnv loads PURE360_ENV_FILE, or ./.env when present. Variables that
// are already set are never overwritten.
func LoadDotEnv() error {
	path := firstNonBlankEnv(envEnvFile)
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound)
}

// Package settings manages persistent configuration for the ontbridge CLI.
package settings

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings holds persistent bridge configuration
type Settings struct {
	// DefaultAcsServerID is the ACS server used by directory resolution when
	// an ONT has no explicit registration.
	DefaultAcsServerID string `yaml:"default_acs_server,omitempty"`

	// RedisAddr is the record store address
	RedisAddr string `yaml:"redis_addr,omitempty"`

	// RedisDB is the record store database number
	RedisDB int `yaml:"redis_db,omitempty"`

	// RequestTimeoutSec bounds one NBI round trip
	RequestTimeoutSec int `yaml:"request_timeout_sec,omitempty"`

	// SearchTimeoutSec bounds the directory's remote-search fallback, which
	// runs inline on read paths and needs a tighter bound
	SearchTimeoutSec int `yaml:"search_timeout_sec,omitempty"`

	// AuditLogPath overrides the default audit log location
	AuditLogPath string `yaml:"audit_log,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ontbridge.yaml"
	}
	return filepath.Join(home, ".ontbridge", "settings.yaml")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty settings if file doesn't exist
			return s, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetRedisAddr returns the record store address (with fallback)
func (s *Settings) GetRedisAddr() string {
	if s.RedisAddr != "" {
		return s.RedisAddr
	}
	return "localhost:6379"
}

// RequestTimeout returns the NBI round-trip bound (with fallback)
func (s *Settings) RequestTimeout() time.Duration {
	if s.RequestTimeoutSec > 0 {
		return time.Duration(s.RequestTimeoutSec) * time.Second
	}
	return 15 * time.Second
}

// SearchTimeout returns the directory remote-search bound (with fallback)
func (s *Settings) SearchTimeout() time.Duration {
	if s.SearchTimeoutSec > 0 {
		return time.Duration(s.SearchTimeoutSec) * time.Second
	}
	return 5 * time.Second
}

// DefaultACS returns the configured default ACS server id, empty if unset
func (s *Settings) DefaultACS() string {
	return s.DefaultAcsServerID
}

// SetDefaultACS sets the default ACS server id
func (s *Settings) SetDefaultACS(id string) {
	s.DefaultAcsServerID = id
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/univinfo/univload/pkg/univload"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	Username           string `yaml:"username"`
	Password           string `yaml:"password,omitempty"`
	Database           string `yaml:"database"`
	ManagementDatabase string `yaml:"management_database,omitempty"`
	SSLMode            string `yaml:"sslmode"`
}

type ImportConfig struct {
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlite_path"`
	Sheet      string `yaml:"sheet"`
	BatchSize  int    `yaml:"batch_size"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	Import     ImportConfig     `yaml:"import"`
	Log        LogConfig        `yaml:"log"`
	Timeout    string           `yaml:"timeout"`
}

const ConfigFileName = "univload.yaml"

// Load reads univload.yaml from dir.
func Load(dir string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a project config from an explicit path.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, univload.ErrInvalidConfig)
	}
	return &cfg, nil
}

// TimeoutDuration parses Timeout. Zero means unset.
func (c *ProjectConfig) TimeoutDuration() (time.Duration, error) {
	if c == nil || c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout %q: %v: %w", c.Timeout, err, univload.ErrInvalidConfig)
	}
	return d, nil
}

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// DefaultConfigFile is read from the working directory when no --config is given.
const DefaultConfigFile = ".a11yscan.yml"

// Environment overrides.
const (
	EnvLogLevel     = "A11YSCAN_LOG_LEVEL"
	EnvAgent        = "A11YSCAN_AGENT"
	EnvAgentTimeout = "A11YSCAN_AGENT_TIMEOUT"
)

type Config struct {
	Logger Logger `yaml:"logger"`
	Scan   Scan   `yaml:"scan"`
	Rules  Rules  `yaml:"rules"`
	Agent  Agent  `yaml:"agent"`
	Output Output `yaml:"output"`
}

type Logger struct {
	Level           string `yaml:"level"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
	DisableTime     *bool  `yaml:"disable_time"`
}

type Scan struct {
	Extensions       []string `yaml:"extensions"`
	ExcludeDirs      []string `yaml:"exclude_dirs"`
	RespectGitignore *bool    `yaml:"respect_gitignore"`
	Jobs             int      `yaml:"jobs"`
	MaxFileSize      int64    `yaml:"max_file_size"` // bytes
}

type Rules struct {
	Only        []string `yaml:"only"`
	Disabled    []string `yaml:"disabled"`
	NavLinkSpan int      `yaml:"nav_link_span"`
}

type Agent struct {
	Command      string        `yaml:"command"`
	SearchPaths  []string      `yaml:"search_paths"`
	Args         []string      `yaml:"args"`
	VersionArgs  []string      `yaml:"version_args"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	Timeout      time.Duration `yaml:"timeout"`
	Batch        *bool         `yaml:"batch"`
	WorkDir      string        `yaml:"work_dir"`
}

type Output struct {
	Format string `yaml:"format"`
	FailOn string `yaml:"fail_on"`
}

// ValidateConfigPath checks that path points to a file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes the YAML file at configPath into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// NewConfig reads the configuration file and applies environment overrides.
// When explicit is false a missing file yields the default configuration.
func NewConfig(configPath string, explicit bool) (*Config, error) {
	cfg := &Config{}

	if err := LoadYAML(configPath, cfg); err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist) && !explicit:
		case errors.Is(err, io.EOF):
		default:
			return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
		}
	}

	if err := applyEnvironment(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvironment lets environment variables win over file values.
func applyEnvironment(cfg *Config) error {
	if agent := os.Getenv(EnvAgent); agent != "" {
		cfg.Agent.Command = agent
	}
	if raw := os.Getenv(EnvAgentTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAgentTimeout, err)
		}
		cfg.Agent.Timeout = d
	}
	return nil
}

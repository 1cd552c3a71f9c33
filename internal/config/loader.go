package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LoadedFiles []string        `yaml:"-"` // Track all files loaded for this config
	Include     []string        `yaml:"include"`
	Debug       bool            `yaml:"debug"`
	MaxNodes    int             `yaml:"maxNodes"`
	HotReload   bool            `yaml:"hotReload"`
	General     GeneralConfig   `yaml:"general"`
	Paths       PathsConfig     `yaml:"paths"`
	Loggers     []LoggerConfig  `yaml:"loggers"`
	Listeners   ListenersConfig `yaml:"listeners"`
	Features    FeaturesConfig  `yaml:"features"`
}

type GeneralConfig struct {
	BoardName       string `yaml:"boardName"`
	PrettyBoardName string `yaml:"prettyBoardName"`
	Description     string `yaml:"description"`
	SysopName       string `yaml:"sysopName"`
	Hostname        string `yaml:"hostname"`
	Website         string `yaml:"website"`
}

type PathsConfig struct {
	Data string `yaml:"data"`
	Art  string `yaml:"art"`
}

type LoggerConfig struct {
	Stdout     bool   `yaml:"stdout,omitempty"`
	File       string `yaml:"file,omitempty"`
	Level      string `yaml:"level"`
	Source     bool   `yaml:"source"`
	HideTime   bool   `yaml:"hideTime,omitempty"`
	TimeFormat string `yaml:"timeFormat,omitempty"`
}

type ListenersConfig struct {
	Telnet TelnetConfig `yaml:"telnet"`
}

type TelnetConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
	// NegotiateTimeoutMs bounds how long blocking option negotiation waits
	// for a client that never answers. Zero means the built-in default.
	NegotiateTimeoutMs int `yaml:"negotiateTimeoutMs,omitempty"`
}

type FeaturesConfig struct {
	AllowAnonymous   bool `yaml:"allowAnonymous"`
	MaxLoginAttempts int  `yaml:"maxLoginAttempts"`
	MaxMessageLength int  `yaml:"maxMessageLength"`
}

func Load(filename string) (*Config, error) {
	// Start with a base config
	cfg := &Config{
		LoadedFiles: []string{},
	}

	// Keep track of processed files to avoid infinite loops
	processed := make(map[string]bool)

	err := loadRecursive(filename, cfg, processed)
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.MaxNodes <= 0 {
		c.MaxNodes = 10
	}
	if c.Features.MaxLoginAttempts <= 0 {
		c.Features.MaxLoginAttempts = 3
	}
	if c.Features.MaxMessageLength <= 0 {
		c.Features.MaxMessageLength = 4000
	}
}

func loadRecursive(filename string, cfg *Config, processed map[string]bool) error {
	absPath, err := filepath.Abs(filename)
	if err != nil {
		return err
	}

	if processed[absPath] {
		return nil // Already processed
	}
	processed[absPath] = true
	cfg.LoadedFiles = append(cfg.LoadedFiles, absPath)

	data, err := os.ReadFile(absPath)
	if err != nil {
		return err
	}

	// Expand environment variables in the YAML content
	expandedData := []byte(os.ExpandEnv(string(data)))

	// Unmarshal into a temporary struct to load includes first
	var tempCfg struct {
		Include []string `yaml:"include"`
	}
	if err := yaml.Unmarshal(expandedData, &tempCfg); err != nil {
		return err
	}

	baseDir := filepath.Dir(absPath)
	for _, includePath := range tempCfg.Include {
		// Resolve relative paths relative to the current config file
		fullPath := includePath
		if !filepath.IsAbs(includePath) {
			fullPath = filepath.Join(baseDir, includePath)
		}

		if err := loadRecursive(fullPath, cfg, processed); err != nil {
			return fmt.Errorf("failed to load included config %s: %w", fullPath, err)
		}
	}

	// Now apply the current file's configuration over the accumulated config
	if err := yaml.Unmarshal(expandedData, cfg); err != nil {
		return err
	}

	return nil
}

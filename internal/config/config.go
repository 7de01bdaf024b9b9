package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API APIConfig `yaml:"api" envPrefix:"YOGA_API_"`
	Log LogConfig `yaml:"log" envPrefix:"YOGA_LOG_"`
	UI  UIConfig  `yaml:"ui" envPrefix:"YOGA_UI_"`
}

type APIConfig struct {
	URL     string        `yaml:"url" env:"URL"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

type LogConfig struct {
	// File receives log output; the terminal is owned by the UI.
	File  string `yaml:"file" env:"FILE"`
	Level string `yaml:"level" env:"LEVEL"`
}

type UIConfig struct {
	Animate       bool   `yaml:"animate" env:"ANIMATE"`
	MarkdownStyle string `yaml:"markdown_style" env:"MARKDOWN_STYLE"`
}

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			URL:     "http://127.0.0.1:8080",
			Timeout: 10 * time.Second,
		},
		Log: LogConfig{
			File:  "yoga-tui.log",
			Level: "info",
		},
		UI: UIConfig{
			Animate:       true,
			MarkdownStyle: "dark",
		},
	}
}

// Load applies, in order: defaults, the YAML file at path (skipped when path
// is empty), then YOGA_* environment variables.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.API.URL == "" {
		errs = append(errs, errors.New("api.url must be set"))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("api.timeout must be positive"))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config contains runtime options for the downloader.
type Config struct {
	OutputDir   string
	Workers     int
	Retries     int
	HTTPTimeout time.Duration
	BaseURL     string
	ClientID    string

	// Reference is the positional album argument, empty when omitted.
	Reference string
}

type fileConfig struct {
	Output      string `yaml:"output"`
	Workers     int    `yaml:"workers"`
	Retries     int    `yaml:"retries"`
	HTTPTimeout string `yaml:"http_timeout"`
	BaseURL     string `yaml:"base_url"`
	ClientID    string `yaml:"client_id"`
}

// Parse builds the runtime configuration. Layering, lowest to highest:
// flag defaults, an optional YAML config file, IMGRAB_* environment
// variables, then flags given explicitly on the command line.
func Parse() (Config, error) {
	outputDir := flag.String("output", ".", "parent directory for album directories")
	workers := flag.Int("workers", 2, "number of concurrent file downloads")
	retries := flag.Int("retries", 3, "attempts per file before recording a failure")
	httpTimeout := flag.Duration("http-timeout", 2*time.Minute, "HTTP request timeout")
	baseURL := flag.String("base-url", "", "API base URL (default: public Imgur API)")
	clientID := flag.String("client-id", "", "API client id (default: built-in public id)")
	configPath := flag.String("config", "", "YAML config file path (default: $IMGRAB_CONFIG)")

	flag.Parse()

	cfg := Config{
		OutputDir:   *outputDir,
		Workers:     *workers,
		Retries:     *retries,
		HTTPTimeout: *httpTimeout,
		BaseURL:     *baseURL,
		ClientID:    *clientID,
		Reference:   flag.Arg(0),
	}

	path := *configPath
	if path == "" {
		path = os.Getenv("IMGRAB_CONFIG")
	}
	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	// Explicit command-line flags win over file and env values.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			cfg.OutputDir = *outputDir
		case "workers":
			cfg.Workers = *workers
		case "retries":
			cfg.Retries = *retries
		case "http-timeout":
			cfg.HTTPTimeout = *httpTimeout
		case "base-url":
			cfg.BaseURL = *baseURL
		case "client-id":
			cfg.ClientID = *clientID
		}
	})

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Retries < 1 {
		cfg.Retries = 1
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Output != "" {
		cfg.OutputDir = fc.Output
	}
	if fc.Workers > 0 {
		cfg.Workers = fc.Workers
	}
	if fc.Retries > 0 {
		cfg.Retries = fc.Retries
	}
	if fc.HTTPTimeout != "" {
		d, err := time.ParseDuration(fc.HTTPTimeout)
		if err != nil {
			return fmt.Errorf("parse http_timeout in %s: %w", path, err)
		}
		cfg.HTTPTimeout = d
	}
	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if fc.ClientID != "" {
		cfg.ClientID = fc.ClientID
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("IMGRAB_OUTPUT"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("IMGRAB_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("IMGRAB_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
}

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/onesecmail/client-go/internal/telemetry"
)

// envPrefix prefixes every environment variable read by the CLI.
const envPrefix = "ONESECMAIL"

// cliConfig holds the CLI settings. Each layer overrides the previous one:
// config file, environment, flags.
type cliConfig struct {
	BaseURL    string        `toml:"base_url" envconfig:"BASE_URL"`
	MailboxURL string        `toml:"mailbox_url" envconfig:"MAILBOX_URL"`
	Timeout    time.Duration `toml:"timeout" envconfig:"TIMEOUT"`
	Retries    *int          `toml:"retries" envconfig:"RETRIES"`

	Telemetry telemetryConfig `toml:"telemetry" envconfig:"OTEL"`
}

type telemetryConfig struct {
	MetricsURL string `toml:"metrics_url" envconfig:"METRICS_URL"`
	LogsURL    string `toml:"logs_url" envconfig:"LOGS_URL"`
}

func (c telemetryConfig) otel() telemetry.Config {
	return telemetry.Config{MetricsURL: c.MetricsURL, LogsURL: c.LogsURL}
}

// defaultConfigPath returns $HOME/.config/onesecmail/config.toml, or ""
// when the home directory is unknown.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "onesecmail", "config.toml")
}

// loadConfig resolves the CLI settings. An explicit --config file must
// exist; the default one is optional.
func loadConfig() (*cliConfig, error) {
	cfg := &cliConfig{}

	path, explicit := configFlag, configFlag != ""
	if !explicit {
		path = defaultConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := parseConfig(data, cfg); err != nil {
				return nil, fmt.Errorf("config %q: %w", path, err)
			}
		case explicit || !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("loading config %q: %w", path, err)
		}
	}

	// A missing .env is fine; variables may come from the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	applyFlags(cfg)
	return cfg, nil
}

// parseConfig decodes TOML data over cfg.
func parseConfig(data []byte, cfg *cliConfig) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("parsing config: unknown key %q", undecoded[0].String())
	}
	return nil
}

func applyFlags(cfg *cliConfig) {
	if baseURLFlag != "" {
		cfg.BaseURL = baseURLFlag
	}
	if mailboxURLFlag != "" {
		cfg.MailboxURL = mailboxURLFlag
	}
	if timeoutFlag != 0 {
		cfg.Timeout = timeoutFlag
	}
	if retriesFlag >= 0 {
		r := retriesFlag
		cfg.Retries = &r
	}
}

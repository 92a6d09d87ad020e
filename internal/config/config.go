// Package config handles loading and validation of daemon
// configuration from a yaml file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Monitor MonitorConfig `yaml:"monitor"`
	Auth    AuthConfig    `yaml:"auth"`
	Alerts  AlertsConfig  `yaml:"alerts"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port" validate:"gt=0,lte=65535"`
	ReadTimeoutMS  int    `yaml:"read_timeout_ms"`
	WriteTimeoutMS int    `yaml:"write_timeout_ms"`
}

type MonitorConfig struct {
	TickIntervalMS     int `yaml:"tick_interval_ms" validate:"gt=0"`
	HandshakeTimeoutMS int `yaml:"handshake_timeout_ms" validate:"gt=0"`
	DiskTempWarnC      int `yaml:"disk_temp_warn_c" validate:"gt=0"`
	DiskTempDeltaC     int `yaml:"disk_temp_delta_c" validate:"gte=0"`
}

type AuthConfig struct {
	Mode                 string   `yaml:"mode" validate:"oneof=session jwt"`
	SessionDirs          []string `yaml:"session_dirs"`
	SessionMaxAgeMinutes int      `yaml:"session_max_age_minutes"`
	JWTSecret            string   `yaml:"jwt_secret"`
}

type AlertsConfig struct {
	Email    EmailConfig     `yaml:"email"`
	Pushover PushoverConfig  `yaml:"pushover"`
	Ntfy     NtfyConfig      `yaml:"ntfy"`
	Webhook  WebhookConfig   `yaml:"webhook"`
	Events   map[string]bool `yaml:"events"`
}

type EmailConfig struct {
	Enabled    bool     `yaml:"enabled"`
	SMTPServer string   `yaml:"smtp_server"`
	SMTPPort   int      `yaml:"smtp_port"`
	Username   string   `yaml:"smtp_user"`
	Password   string   `yaml:"smtp_password"`
	From       string   `yaml:"from_addr"`
	To         []string `yaml:"to_addrs"`
}

type PushoverConfig struct {
	Enabled  bool   `yaml:"enabled"`
	UserKey  string `yaml:"user_key"`
	APIToken string `yaml:"api_token"`
	Endpoint string `yaml:"endpoint"`
}

type NtfyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Server  string `yaml:"server"`
	Topic   string `yaml:"topic"`
}

type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Method  string `yaml:"method" validate:"omitempty,oneof=POST GET"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is present:
// monitoring on, every alert channel off, all known event types
// eligible for alerting.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8081,
			ReadTimeoutMS:  10000,
			WriteTimeoutMS: 10000,
		},
		Monitor: MonitorConfig{
			TickIntervalMS:     2000,
			HandshakeTimeoutMS: 5000,
			DiskTempWarnC:      50,
			DiskTempDeltaC:     5,
		},
		Auth: AuthConfig{
			Mode:                 "session",
			SessionDirs:          []string{"/var/lib/php/sessions", "/tmp", "/var/tmp"},
			SessionMaxAgeMinutes: 60,
		},
		Alerts: AlertsConfig{
			Pushover: PushoverConfig{Endpoint: "https://api.pushover.net/1/messages.json"},
			Ntfy:     NtfyConfig{Server: "https://ntfy.sh", Topic: "hostmond"},
			Webhook:  WebhookConfig{Method: "POST"},
			Events: map[string]bool{
				"disk_added":         true,
				"disk_removed":       true,
				"disk_temp_warning":  true,
				"disk_smart_failure": true,
				"pool_degraded":      true,
				"resilver_started":   true,
				"resilver_completed": true,
			},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads configuration from file and applies environment variable
// overrides. A missing file is not an error: the daemon runs on
// defaults with all channels disabled.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate ensures all required configuration values are set
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Auth.Mode {
	case "jwt":
		if len(c.Auth.JWTSecret) < 32 {
			return fmt.Errorf("auth.jwt_secret must be at least 32 characters in jwt mode")
		}
	case "session":
		if len(c.Auth.SessionDirs) == 0 {
			return fmt.Errorf("auth.session_dirs must not be empty in session mode")
		}
	}

	if c.Alerts.Email.Enabled {
		if c.Alerts.Email.SMTPServer == "" || len(c.Alerts.Email.To) == 0 {
			return fmt.Errorf("alerts.email requires smtp_server and to_addrs when enabled")
		}
	}
	if c.Alerts.Pushover.Enabled {
		if c.Alerts.Pushover.UserKey == "" || c.Alerts.Pushover.APIToken == "" {
			return fmt.Errorf("alerts.pushover requires user_key and api_token when enabled")
		}
	}
	if c.Alerts.Webhook.Enabled && c.Alerts.Webhook.URL == "" {
		return fmt.Errorf("alerts.webhook requires url when enabled")
	}

	return nil
}

// applyEnvOverrides checks for environment variables with HOSTMOND_ prefix
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HOSTMOND_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("HOSTMOND_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("HOSTMOND_AUTH_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("HOSTMOND_SMTP_PASSWORD"); v != "" {
		cfg.Alerts.Email.Password = v
	}
	if v := os.Getenv("HOSTMOND_PUSHOVER_TOKEN"); v != "" {
		cfg.Alerts.Pushover.APIToken = v
	}
}

// GetReadTimeout returns the read timeout as a duration
func (s *ServerConfig) GetReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutMS) * time.Millisecond
}

// GetWriteTimeout returns the write timeout as a duration
func (s *ServerConfig) GetWriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutMS) * time.Millisecond
}

// GetTickInterval returns the sampling period as a duration
func (m *MonitorConfig) GetTickInterval() time.Duration {
	return time.Duration(m.TickIntervalMS) * time.Millisecond
}

// GetHandshakeTimeout returns the handshake wait as a duration
func (m *MonitorConfig) GetHandshakeTimeout() time.Duration {
	return time.Duration(m.HandshakeTimeoutMS) * time.Millisecond
}

// GetSessionMaxAge returns the session freshness window as a duration
func (a *AuthConfig) GetSessionMaxAge() time.Duration {
	return time.Duration(a.SessionMaxAgeMinutes) * time.Minute
}

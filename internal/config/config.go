package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig
	ThreatIntel ThreatIntelConfig
}

type AppConfig struct {
	Env       string
	Port      int
	Host      string
	RateLimit int // requests per minute per client IP, 0 disables
}

type ThreatIntelConfig struct {
	VirusTotalKey string
	AbuseIPDBKey  string
	GreyNoiseKey  string
	URLhausKey    string // abuse.ch Auth-Key
	Timeout       time.Duration
}

// Load reads the configuration once from the environment and an optional
// config.yaml. The returned Config is passed explicitly to its consumers.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	v.AddConfigPath("/etc/ctidash")

	// Environment variables
	v.AutomaticEnv()

	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	setDefaults(v)

	// Try to read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	config := &Config{
		App: AppConfig{
			Env:       v.GetString("APP_ENV"),
			Port:      v.GetInt("APP_PORT"),
			Host:      v.GetString("APP_HOST"),
			RateLimit: v.GetInt("APP_RATE_LIMIT"),
		},
		ThreatIntel: ThreatIntelConfig{
			VirusTotalKey: v.GetString("VIRUSTOTAL_API_KEY"),
			AbuseIPDBKey:  v.GetString("ABUSEIPDB_API_KEY"),
			GreyNoiseKey:  v.GetString("GREYNOISE_API_KEY"),
			URLhausKey:    v.GetString("URLHAUS_API_KEY"),
			Timeout:       v.GetDuration("THREAT_INTEL_TIMEOUT"),
		},
	}

	if config.ThreatIntel.Timeout <= 0 {
		return nil, fmt.Errorf("THREAT_INTEL_TIMEOUT must be positive, got %s", config.ThreatIntel.Timeout)
	}
	if config.App.Port <= 0 || config.App.Port > 65535 {
		return nil, fmt.Errorf("APP_PORT out of range: %d", config.App.Port)
	}

	return config, nil
}

func bindEnvVars(v *viper.Viper) error {
	bindings := [][]string{
		// App
		{"APP_ENV"},
		{"APP_PORT"},
		{"APP_HOST"},
		{"APP_RATE_LIMIT"},

		// Threat Intel providers, legacy names second
		{"VIRUSTOTAL_API_KEY", "VIRUSTOTAL_API_KEY", "VT_API_KEY"},
		{"ABUSEIPDB_API_KEY"},
		{"GREYNOISE_API_KEY"},
		{"URLHAUS_API_KEY", "URLHAUS_API_KEY", "ABUSECH_API_KEY"},
		{"THREAT_INTEL_TIMEOUT"},
	}

	for _, b := range bindings {
		if err := v.BindEnv(b...); err != nil {
			return fmt.Errorf("bind %s: %w", b[0], err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", 8000)
	v.SetDefault("APP_HOST", "0.0.0.0")
	v.SetDefault("APP_RATE_LIMIT", 100)

	// Threat Intel defaults
	v.SetDefault("THREAT_INTEL_TIMEOUT", 10*time.Second)
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func SetupLogger(cfg *Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if cfg.IsDevelopment() {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// Package config resolves service settings from defaults, an optional YAML
// file, a .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting.
type Config struct {
	Port            int           `yaml:"port"`
	DatastoreURI    string        `yaml:"datastore_uri"`
	LogLevel        string        `yaml:"log_level"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	TLS             TLS           `yaml:"tls"`
	OTel            OTel          `yaml:"otel"`
	AMQP            AMQP          `yaml:"amqp"`
}

// TLS enables HTTPS when both files are set.
type TLS struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// Enabled reports whether both cert and key are configured.
func (t TLS) Enabled() bool { return t.CertFile != "" && t.KeyFile != "" }

// OTel configures trace export.
type OTel struct {
	Host        string  `yaml:"host"`
	Probability float64 `yaml:"probability"`
}

// AMQP configures order event publishing. An empty URL disables it.
type AMQP struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:            5000,
		DatastoreURI:    "mongodb://localhost:27017/restaurant",
		LogLevel:        "info",
		ShutdownTimeout: 10 * time.Second,
		OTel:            OTel{Probability: 1.0},
		AMQP:            AMQP{Exchange: "orders"},
	}
}

// Load builds a Config. path names an optional YAML file; a missing file is
// not an error when path is empty.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DatastoreURI == "" {
		return errors.New("datastore uri is required")
	}
	if c.OTel.Probability < 0 || c.OTel.Probability > 1 {
		return fmt.Errorf("invalid trace sample ratio %v", c.OTel.Probability)
	}
	return nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Port = p
	}
	if v := firstEnv("DATASTORE_URI", "MONGODB_URI"); v != "" {
		cfg.DatastoreURI = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	if v := os.Getenv("TLS_CERT_FILE"); v != "" {
		cfg.TLS.CertFile = v
	}
	if v := os.Getenv("TLS_KEY_FILE"); v != "" {
		cfg.TLS.KeyFile = v
	}
	if v := os.Getenv("OTEL_HOST"); v != "" {
		cfg.OTel.Host = v
	}
	if v := os.Getenv("OTEL_SAMPLE_RATIO"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("OTEL_SAMPLE_RATIO: %w", err)
		}
		cfg.OTel.Probability = f
	}
	if v := os.Getenv("AMQP_URL"); v != "" {
		cfg.AMQP.URL = v
	}
	if v := os.Getenv("AMQP_EXCHANGE"); v != "" {
		cfg.AMQP.Exchange = v
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

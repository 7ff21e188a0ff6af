// Package config loads service configuration from an optional YAML file with
// environment variable overrides. A .env file is honored when present.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the server process.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Chain   ChainConfig   `yaml:"chain"`
	Monitor MonitorConfig `yaml:"monitor"`
	Seed    SeedConfig    `yaml:"seed"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
	TipRatePerSec   int           `yaml:"tip_rate_per_sec" env:"SERVER_TIP_RATE_PER_SEC"`
	TipRateBurst    int           `yaml:"tip_rate_burst" env:"SERVER_TIP_RATE_BURST"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
	Output string `yaml:"output" env:"LOG_OUTPUT"`
}

// ChainConfig describes the target network the wallet gateway binds to.
// Defaults match the Sepolia test network.
type ChainConfig struct {
	RPCURL         string        `yaml:"rpc_url" env:"CHAIN_RPC_URL"`
	ChainID        string        `yaml:"chain_id" env:"CHAIN_ID"`
	ChainName      string        `yaml:"chain_name" env:"CHAIN_NAME"`
	CurrencyName   string        `yaml:"currency_name" env:"CHAIN_CURRENCY_NAME"`
	CurrencySymbol string        `yaml:"currency_symbol" env:"CHAIN_CURRENCY_SYMBOL"`
	Decimals       int           `yaml:"decimals" env:"CHAIN_DECIMALS"`
	BlockExplorer  string        `yaml:"block_explorer" env:"CHAIN_BLOCK_EXPLORER"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"CHAIN_REQUEST_TIMEOUT"`
}

// MonitorConfig controls the tip confirmation monitor.
type MonitorConfig struct {
	InitialDelay time.Duration `yaml:"initial_delay" env:"MONITOR_INITIAL_DELAY"`
	PollInterval time.Duration `yaml:"poll_interval" env:"MONITOR_POLL_INTERVAL"`
	MaxAttempts  int           `yaml:"max_attempts" env:"MONITOR_MAX_ATTEMPTS"`
}

// SeedConfig toggles demo seed data.
type SeedConfig struct {
	Enabled bool `yaml:"enabled" env:"SEED_ENABLED"`
}

// Default returns the configuration used when no file or env overrides exist.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			AllowedOrigins:  []string{"*"},
			TipRatePerSec:   5,
			TipRateBurst:    10,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Chain: ChainConfig{
			RPCURL:         "https://rpc.sepolia.org",
			ChainID:        "0xaa36a7",
			ChainName:      "Sepolia test network",
			CurrencyName:   "SepoliaETH",
			CurrencySymbol: "ETH",
			Decimals:       18,
			BlockExplorer:  "https://sepolia.etherscan.io/",
			RequestTimeout: 30 * time.Second,
		},
		Monitor: MonitorConfig{
			InitialDelay: 5 * time.Second,
			PollInterval: 10 * time.Second,
			MaxAttempts:  30,
		},
		Seed: SeedConfig{Enabled: true},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// non-empty and present), then environment overrides. A .env file in the
// working directory is loaded first so overrides may live there.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// envdecode errors only on malformed values; absent vars keep defaults.
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("server port %d out of range", cfg.Server.Port)
	}
	if cfg.Monitor.MaxAttempts <= 0 {
		return nil, fmt.Errorf("monitor max_attempts must be positive")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	for _, section := range []interface{}{
		&cfg.Server, &cfg.Logging, &cfg.Chain, &cfg.Monitor, &cfg.Seed,
	} {
		if err := envdecode.Decode(section); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
			return fmt.Errorf("decode environment: %w", err)
		}
	}
	return nil
}

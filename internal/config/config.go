package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
)

// MysqlConfig database connection settings
type MysqlConfig struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Host         string `json:"host"`
	Port         string `json:"port"`
	DBName       string `json:"dbname"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

type Tls struct {
	CertPath string `json:"cert_path"`
	KeyPath  string `json:"key_path"`
}

// Enabled reports whether both certificate and key are configured.
func (t Tls) Enabled() bool {
	return t.CertPath != "" && t.KeyPath != ""
}

const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

type Config struct {
	Mysql      MysqlConfig `json:"mysql"`
	Tls        Tls         `json:"tls"`
	Loglevel   string      `json:"log_level"`
	ServerPort int         `json:"server_port"`
	Storage    string      `json:"storage"`
	CORSOrigin string      `json:"cors_origin"`
	Dashboard  bool        `json:"dashboard"`
	Metrics    bool        `json:"metrics"`
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		Mysql: MysqlConfig{
			Username:     "root",
			Host:         "localhost",
			Port:         "3306",
			DBName:       "feedback",
			MaxOpenConns: 10,
		},
		Loglevel:   "info",
		ServerPort: 4000,
		Storage:    StorageMySQL,
		CORSOrigin: "*",
		Dashboard:  true,
		Metrics:    true,
	}
}

// LoadConfig builds the configuration: defaults, then the JSON file at path
// (skipped when it does not exist), then a .env file, then the environment.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		configData, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("config file not found, using defaults", "path", path)
		case err != nil:
			return nil, fmt.Errorf("error load config %s: %w", path, err)
		default:
			if err := json.Unmarshal(configData, cfg); err != nil {
				return nil, fmt.Errorf("error parse config %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("error load .env", "error", err)
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s env variable %q: %w", key, v, err)
		}
		*dst = n
		return nil
	}

	str("DB_HOST", &cfg.Mysql.Host)
	str("DB_PORT", &cfg.Mysql.Port)
	str("DB_USER", &cfg.Mysql.Username)
	str("DB_PASSWORD", &cfg.Mysql.Password)
	str("DB_NAME", &cfg.Mysql.DBName)
	str("LOG_LEVEL", &cfg.Loglevel)
	str("STORAGE", &cfg.Storage)
	str("CORS_ORIGIN", &cfg.CORSOrigin)
	str("TLS_CERT_PATH", &cfg.Tls.CertPath)
	str("TLS_KEY_PATH", &cfg.Tls.KeyPath)
	if err := num("PORT", &cfg.ServerPort); err != nil {
		return err
	}
	if err := num("DB_POOL_SIZE", &cfg.Mysql.MaxOpenConns); err != nil {
		return err
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid server port %d", c.ServerPort)
	}
	switch c.Storage {
	case StorageMySQL:
		if c.Mysql.DBName == "" {
			return errors.New("database name required")
		}
		if _, err := strconv.Atoi(c.Mysql.Port); err != nil {
			return fmt.Errorf("invalid database port %q", c.Mysql.Port)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q (want %s or %s)", c.Storage, StorageMySQL, StorageMemory)
	}
	return nil
}

// Package config описывает конфигурацию сервера и ее загрузку:
// значения окружения по умолчанию, затем YAML файл, затем переменные окружения.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Имена окружений
const (
	EnvStaging    = "staging"
	EnvProduction = "production"
)

// Драйверы хранилища
const (
	DriverMemory = "memory"
	DriverBoltDB = "boltdb"
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

// Config is the root server configuration.
type Config struct {
	Env      string         `koanf:"env"`
	HTTP     HTTPConfig     `koanf:"http"`
	HTTPS    HTTPSConfig    `koanf:"https"`
	Security SecurityConfig `koanf:"security"`
	Storage  StorageConfig  `koanf:"storage"`
	Log      LogConfig      `koanf:"log"`
}

// HTTPConfig configures the plain HTTP listener.
type HTTPConfig struct {
	Addr         string `koanf:"addr"`
	MaxBodyBytes int64  `koanf:"max_body_bytes"`
}

// HTTPSConfig configures the TLS listener. It is started only when both
// certificate and key files are set.
type HTTPSConfig struct {
	Addr     string `koanf:"addr"`
	CertFile string `koanf:"cert_file"`
	KeyFile  string `koanf:"key_file"`
}

// Enabled reports whether the TLS listener should be started.
func (c HTTPSConfig) Enabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// SecurityConfig configures password hashing and tokens.
type SecurityConfig struct {
	HashingSecret string        `koanf:"hashing_secret"`
	TokenTTL      time.Duration `koanf:"token_ttl"`
	RequireToken  bool          `koanf:"require_token"`
}

// StorageConfig selects and tunes the persistence backend.
type StorageConfig struct {
	Driver        string        `koanf:"driver"`
	Path          string        `koanf:"path"`
	Timeout       time.Duration `koanf:"timeout"`
	PurgeInterval time.Duration `koanf:"purge_interval"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Defaults возвращает значения по умолчанию для окружения env.
// Неизвестное окружение считается staging.
func Defaults(env string) map[string]any {
	env = NormalizeEnv(env)

	defaults := map[string]any{
		"env":                     env,
		"http.addr":               ":3000",
		"http.max_body_bytes":     int64(1 << 20),
		"https.addr":              ":3001",
		"security.hashing_secret": "thisIsASecret",
		"security.token_ttl":      time.Hour,
		"security.require_token":  true,
		"storage.driver":          DriverBoltDB,
		"storage.path":            "phoneauth.db",
		"storage.timeout":         5 * time.Second,
		"storage.purge_interval":  time.Duration(0),
		"log.level":               "debug",
		"log.format":              "text",
	}

	if env == EnvProduction {
		defaults["http.addr"] = ":5000"
		defaults["https.addr"] = ":5001"
		defaults["security.hashing_secret"] = "thisIsAlsoASecret"
		defaults["storage.purge_interval"] = 10 * time.Minute
		defaults["log.level"] = "info"
		defaults["log.format"] = "json"
	}

	return defaults
}

// NormalizeEnv приводит имя окружения к одному из известных
func NormalizeEnv(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case EnvProduction:
		return EnvProduction
	default:
		return EnvStaging
	}
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr cannot be empty"))
	}
	if c.HTTPS.Enabled() && c.HTTPS.Addr == "" {
		errs = append(errs, errors.New("https.addr cannot be empty when TLS is configured"))
	}
	if (c.HTTPS.CertFile == "") != (c.HTTPS.KeyFile == "") {
		errs = append(errs, errors.New("https.cert_file and https.key_file must be set together"))
	}
	if c.Security.HashingSecret == "" {
		errs = append(errs, errors.New("security.hashing_secret cannot be empty"))
	}
	if c.Security.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("security.token_ttl must be positive, got %s", c.Security.TokenTTL))
	}
	if c.Storage.Timeout < 0 {
		errs = append(errs, fmt.Errorf("storage.timeout cannot be negative, got %s", c.Storage.Timeout))
	}
	if c.Storage.PurgeInterval < 0 {
		errs = append(errs, fmt.Errorf("storage.purge_interval cannot be negative, got %s", c.Storage.PurgeInterval))
	}

	switch c.Storage.Driver {
	case DriverMemory, DriverBadger:
		// пустой path для badger означает in-memory режим
	case DriverBoltDB, DriverSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, fmt.Errorf("storage.path is required for driver %q", c.Storage.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}

	return errors.Join(errs...)
}

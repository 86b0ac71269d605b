package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix префикс переменных окружения.
// Секции разделяются "__": PHONEAUTH_SECURITY__HASHING_SECRET -> security.hashing_secret
const DefaultEnvPrefix = "PHONEAUTH_"

// Loader загружает Config из нескольких источников
type Loader struct {
	envPrefix string
	filePath  string
}

// Option настраивает Loader
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the YAML configuration file path.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// NewLoader creates a configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load читает конфигурацию. Порядок (последующие перекрывают предыдущие):
//  1. значения по умолчанию для окружения
//  2. YAML файл
//  3. переменные окружения
//
// Окружение берется из ключа env, заданного файлом или переменной <prefix>ENV.
func (l *Loader) Load() (*Config, error) {
	overrides := koanf.New(".")

	if l.filePath != "" {
		if err := overrides.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", l.filePath, err)
		}
	}

	if err := overrides.Load(env.Provider(l.envPrefix, ".", l.envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	k := koanf.New(".")
	defaults := Defaults(overrides.String("env"))
	if err := k.Load(mapProvider(maps.Unflatten(defaults, ".")), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if err := k.Merge(overrides); err != nil {
		return nil, fmt.Errorf("merge config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Env = NormalizeEnv(cfg.Env)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// envKey PHONEAUTH_STORAGE__PURGE_INTERVAL -> storage.purge_interval
func (l *Loader) envKey(s string) string {
	s = strings.TrimPrefix(s, l.envPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}

// Load is a shortcut for NewLoader(opts...).Load().
func Load(opts ...Option) (*Config, error) {
	return NewLoader(opts...).Load()
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// DefaultPrefix is the environment variable prefix used by the tools in
// this module, e.g. CSQ_REDIS_ADDR.
const DefaultPrefix = "CSQ_"

// Config is the runtime configuration for programs that persist saved
// queries.
type Config struct {
	Redis RedisConfig `mapstructure:"redis"`
	Store StoreConfig `mapstructure:"store"`
	Log   LogConfig   `mapstructure:"log"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type StoreConfig struct {
	Key string `mapstructure:"key"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads ./.env (optional) and then the environment.
func Load(prefix string) (*Config, error) { return LoadFrom(prefix, ".env") }

// LoadFrom loads configuration from envFile (if it exists) and from
// environment variables carrying prefix. Environment variables win.
// PREFIX_REDIS_ADDR maps to redis.addr.
func LoadFrom(prefix, envFile string) (*Config, error) {
	v := viper.New()
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("store.key", "csq:saved")
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.format", "json")

	prefixUpper := strings.ToUpper(prefix)

	// 1. .env file, same key mapping as the environment
	if envFile != "" {
		fileV := viper.New()
		fileV.SetConfigFile(envFile)
		fileV.SetConfigType("env")
		if err := fileV.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config: read %s: %w", envFile, err)
			}
		} else {
			for _, k := range fileV.AllKeys() {
				if prop, ok := propKey(prefixUpper, strings.ToUpper(k)); ok {
					v.Set(prop, fileV.Get(k))
				}
			}
		}
	}

	// 2. environment variables
	for _, envStr := range os.Environ() {
		key, value, _ := strings.Cut(envStr, "=")
		if prop, ok := propKey(prefixUpper, key); ok {
			v.Set(prop, value)
		}
	}

	// 3. unmarshal into struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	return &cfg, nil
}

// propKey maps CSQ_REDIS_ADDR -> redis.addr.
func propKey(prefixUpper, key string) (string, bool) {
	if prefixUpper == "" || !strings.HasPrefix(key, prefixUpper) {
		return "", false
	}
	prop := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(key, prefixUpper), "_", "."))
	prop = strings.TrimPrefix(prop, ".")
	return prop, prop != ""
}

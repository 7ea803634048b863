// Package config loads the product service settings from defaults, an
// optional YAML file, an optional .env file and the process environment,
// in increasing order of priority.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const (
	DefaultConfigFile = "config.yaml"
	DefaultEnvFile    = ".env"

	envPrefix = "PRODUCT_"
	portEnv   = "PORT"
)

type Config struct {
	HTTPServer struct {
		Host    string `koanf:"host"`
		Port    int    `koanf:"port"`
		Timeout struct {
			Read       time.Duration `koanf:"read"`
			Write      time.Duration `koanf:"write"`
			Idle       time.Duration `koanf:"idle"`
			ReadHeader time.Duration `koanf:"readheader"`
			Shutdown   time.Duration `koanf:"shutdown"`
		} `koanf:"timeout"`
	} `koanf:"server"`

	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`

	Metrics struct {
		Enabled bool   `koanf:"enabled"`
		Token   string `koanf:"token"`
	} `koanf:"metrics"`
}

// Addr is the listen address; an empty host binds every interface.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPServer.Host, c.HTTPServer.Port)
}

func (c Config) String() string {
	token := "<not configured>"
	if c.Metrics.Token != "" {
		token = "****"
	}
	return fmt.Sprintf("server.addr=%s, server.timeout.read=%v, server.timeout.write=%v, server.timeout.idle=%v, server.timeout.readheader=%v, server.timeout.shutdown=%v, log.level=%s, metrics.enabled=%t, metrics.token=%s",
		c.Addr(),
		c.HTTPServer.Timeout.Read,
		c.HTTPServer.Timeout.Write,
		c.HTTPServer.Timeout.Idle,
		c.HTTPServer.Timeout.ReadHeader,
		c.HTTPServer.Timeout.Shutdown,
		c.Log.Level,
		c.Metrics.Enabled,
		token)
}

func defaults() map[string]any {
	return map[string]any{
		"server.host":               "",
		"server.port":               8000,
		"server.timeout.read":       10 * time.Second,
		"server.timeout.write":      10 * time.Second,
		"server.timeout.idle":       60 * time.Second,
		"server.timeout.readheader": 5 * time.Second,
		"server.timeout.shutdown":   10 * time.Second,
		"log.level":                 "info",
		"metrics.enabled":           false,
		"metrics.token":             "",
	}
}

type Options struct {
	ConfigFile string
	EnvFile    string
}

// Load reads the configuration from the default file locations.
func Load() (*Config, error) {
	return LoadWith(Options{ConfigFile: DefaultConfigFile, EnvFile: DefaultEnvFile})
}

func LoadWith(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if opts.ConfigFile != "" {
		if err := k.Load(file.Provider(opts.ConfigFile), yaml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("WARN: error loading YAML config %q: %v", opts.ConfigFile, err)
		}
	}

	if opts.EnvFile != "" {
		if envFileMap, err := godotenv.Read(opts.EnvFile); err == nil {
			envMap := make(map[string]any, len(envFileMap))
			for key, value := range envFileMap {
				if kk, v := envValue(key, value); kk != "" {
					envMap[kk] = v
				}
			}
			if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
				log.Printf("WARN: error loading .env config: %v", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			log.Printf("WARN: error reading .env file: %v", err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		log.Printf("WARN: error loading env vars: %v", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	if c.HTTPServer.Port <= 0 || c.HTTPServer.Port > 65535 {
		return fmt.Errorf("invalid HTTP server port: %d", c.HTTPServer.Port)
	}
	t := c.HTTPServer.Timeout
	for name, d := range map[string]time.Duration{
		"read":       t.Read,
		"write":      t.Write,
		"idle":       t.Idle,
		"readheader": t.ReadHeader,
		"shutdown":   t.Shutdown,
	} {
		if d <= 0 {
			return fmt.Errorf("invalid HTTP server %s timeout: %v", name, d)
		}
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	if c.Metrics.Enabled && c.Metrics.Token == "" {
		return errors.New("metrics.token is required when metrics are enabled")
	}
	return nil
}

// envValue skips empty variables so that PORT= behaves like an unset PORT.
func envValue(key, value string) (string, any) {
	if value == "" {
		return "", nil
	}
	return keyTransformer(key), value
}

// keyTransformer maps PORT to server.port and PRODUCT_A_B to a.b.
// Anything else is dropped so unrelated environment does not leak in.
func keyTransformer(key string) string {
	if key == portEnv {
		return "server.port"
	}
	if !strings.HasPrefix(key, envPrefix) {
		return ""
	}
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return strings.ReplaceAll(key, "_", ".")
}

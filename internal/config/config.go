// Package config loads the client configuration from defaults, an optional
// YAML file, .env files and NEURALSYNC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix     = "NEURALSYNC"
	appDirName    = "neuralsync"
	configName    = "config.yaml"
	DefaultURL    = "ws://localhost:8000/ws"
	defaultLevel  = "info"
	defaultMockOn = "127.0.0.1:8000"
)

// Config is the full client configuration.
type Config struct {
	Bridge BridgeConfig `yaml:"bridge" mapstructure:"bridge"`
	Export ExportConfig `yaml:"export" mapstructure:"export"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Mock   MockConfig   `yaml:"mock" mapstructure:"mock"`
}

// BridgeConfig locates the bridge and tunes the connection. A negative
// PingInterval disables keepalive pings.
type BridgeConfig struct {
	URL            string        `yaml:"url" mapstructure:"url"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay" mapstructure:"reconnect_delay"`
	PingInterval   time.Duration `yaml:"ping_interval" mapstructure:"ping_interval"`
	PongTimeout    time.Duration `yaml:"pong_timeout" mapstructure:"pong_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// ExportConfig controls where session CSVs go.
type ExportConfig struct {
	// Dir is where session CSVs are written. Empty means the XDG state dir.
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// LogConfig sets the log file and minimum level.
type LogConfig struct {
	File  string `yaml:"file" mapstructure:"file"`
	Level string `yaml:"level" mapstructure:"level"`
}

// MockConfig drives the mock-bridge command.
type MockConfig struct {
	Addr     string        `yaml:"addr" mapstructure:"addr"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	Seed     int64         `yaml:"seed" mapstructure:"seed"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Bridge: BridgeConfig{
			URL:            DefaultURL,
			ReconnectDelay: 3 * time.Second,
			PingInterval:   30 * time.Second,
			PongTimeout:    60 * time.Second,
			WriteTimeout:   10 * time.Second,
		},
		Log: LogConfig{
			File:  filepath.Join(os.TempDir(), "neuralsync.log"),
			Level: defaultLevel,
		},
		Mock: MockConfig{
			Addr:     defaultMockOn,
			Interval: time.Second,
			Seed:     1,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/neuralsync/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirName, configName), nil
}

// Load builds the configuration. An explicit path must exist; with an empty
// path the default location is used when present.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("bridge.url", cfg.Bridge.URL)
	v.SetDefault("bridge.reconnect_delay", cfg.Bridge.ReconnectDelay)
	v.SetDefault("bridge.ping_interval", cfg.Bridge.PingInterval)
	v.SetDefault("bridge.pong_timeout", cfg.Bridge.PongTimeout)
	v.SetDefault("bridge.write_timeout", cfg.Bridge.WriteTimeout)
	v.SetDefault("export.dir", cfg.Export.Dir)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("mock.addr", cfg.Mock.Addr)
	v.SetDefault("mock.interval", cfg.Mock.Interval)
	v.SetDefault("mock.seed", cfg.Mock.Seed)

	if path == "" {
		if p, err := DefaultPath(); err == nil {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values the client cannot run without.
func (c Config) Validate() error {
	u, err := url.Parse(c.Bridge.URL)
	if err != nil {
		return fmt.Errorf("bridge.url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("bridge.url: scheme must be ws or wss, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("bridge.url: missing host")
	}
	if c.Bridge.ReconnectDelay <= 0 {
		return fmt.Errorf("bridge.reconnect_delay must be positive")
	}
	if c.Bridge.PingInterval > 0 && c.Bridge.PongTimeout <= c.Bridge.PingInterval {
		return fmt.Errorf("bridge.pong_timeout (%s) must exceed bridge.ping_interval (%s)",
			c.Bridge.PongTimeout, c.Bridge.PingInterval)
	}
	if c.Mock.Interval <= 0 {
		return fmt.Errorf("mock.interval must be positive")
	}
	return nil
}

// YAML renders the configuration as a config file.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// LoadDotEnv loads .env.local and .env from dir (the working directory
// when empty). Variables already set in the environment win. It returns
// the files that were loaded.
func LoadDotEnv(dir string) ([]string, error) {
	var loaded []string
	for _, name := range []string{".env.local", ".env"} {
		p := filepath.Join(dir, name)
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("loading %s: %w", p, err)
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}

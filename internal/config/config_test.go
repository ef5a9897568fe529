package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// isolate points the default config location at an empty temp dir.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Bridge.URL != DefaultURL {
		t.Errorf("Bridge.URL = %q, want %q", cfg.Bridge.URL, DefaultURL)
	}
	if cfg.Bridge.ReconnectDelay != 3*time.Second {
		t.Errorf("ReconnectDelay = %v, want 3s", cfg.Bridge.ReconnectDelay)
	}
	if cfg.Mock.Interval != time.Second {
		t.Errorf("Mock.Interval = %v", cfg.Mock.Interval)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	isolate(t)
	p := writeFile(t, t.TempDir(), "neuralsync.yaml", `
bridge:
  url: ws://10.0.0.5:9000/ws
  reconnect_delay: 500ms
export:
  dir: /srv/eeg
mock:
  seed: 7
`)

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Bridge.URL != "ws://10.0.0.5:9000/ws" {
		t.Errorf("Bridge.URL = %q", cfg.Bridge.URL)
	}
	if cfg.Bridge.ReconnectDelay != 500*time.Millisecond {
		t.Errorf("ReconnectDelay = %v", cfg.Bridge.ReconnectDelay)
	}
	if cfg.Export.Dir != "/srv/eeg" {
		t.Errorf("Export.Dir = %q", cfg.Export.Dir)
	}
	if cfg.Mock.Seed != 7 {
		t.Errorf("Mock.Seed = %d", cfg.Mock.Seed)
	}
	// Untouched keys keep their defaults.
	if cfg.Bridge.PingInterval != 30*time.Second {
		t.Errorf("PingInterval = %v, want default", cfg.Bridge.PingInterval)
	}
}

func TestLoadDefaultPathPickedUp(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, appDirName), 0o700); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, appDirName), configName, "log:\n  level: debug\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("NEURALSYNC_BRIDGE_URL", "wss://bridge.local/ws")
	t.Setenv("NEURALSYNC_BRIDGE_RECONNECT_DELAY", "10s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Bridge.URL != "wss://bridge.local/ws" {
		t.Errorf("Bridge.URL = %q", cfg.Bridge.URL)
	}
	if cfg.Bridge.ReconnectDelay != 10*time.Second {
		t.Errorf("ReconnectDelay = %v", cfg.Bridge.ReconnectDelay)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"http scheme", func(c *Config) { c.Bridge.URL = "http://localhost:8000/ws" }, "scheme"},
		{"no host", func(c *Config) { c.Bridge.URL = "ws:///ws" }, "host"},
		{"zero delay", func(c *Config) { c.Bridge.ReconnectDelay = 0 }, "reconnect_delay"},
		{"zero mock interval", func(c *Config) { c.Mock.Interval = 0 }, "mock.interval"},
		{"pong equals ping", func(c *Config) {
			c.Bridge.PingInterval = 30 * time.Second
			c.Bridge.PongTimeout = 30 * time.Second
		}, "pong_timeout"},
		{"pong below ping", func(c *Config) {
			c.Bridge.PingInterval = 30 * time.Second
			c.Bridge.PongTimeout = 10 * time.Second
		}, "pong_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.errSub)
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}

	// Without pings there is no pong to wait for.
	noPing := Default()
	noPing.Bridge.PingInterval = -1
	noPing.Bridge.PongTimeout = time.Second
	if err := noPing.Validate(); err != nil {
		t.Errorf("pings disabled: Validate() = %v", err)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	isolate(t)
	data, err := Default().YAML()
	if err != nil {
		t.Fatalf("YAML() error: %v", err)
	}
	if !strings.Contains(string(data), "reconnect_delay: 3s") {
		t.Errorf("durations should render as strings:\n%s", data)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("rendered config is not YAML: %v", err)
	}
	p := writeFile(t, t.TempDir(), "rendered.yaml", string(data))
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load(rendered) error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("rendered config does not load back to the defaults:\n%+v", cfg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "NEURALSYNC_LOG_LEVEL=trace\nNEURALSYNC_TEST_PRESET=from-file\n")
	t.Setenv("NEURALSYNC_TEST_PRESET", "from-env")
	t.Setenv("NEURALSYNC_LOG_LEVEL", "")
	os.Unsetenv("NEURALSYNC_LOG_LEVEL")

	loaded, err := LoadDotEnv(dir)
	if err != nil {
		t.Fatalf("LoadDotEnv() error: %v", err)
	}
	if len(loaded) != 1 || filepath.Base(loaded[0]) != ".env" {
		t.Errorf("loaded = %v, want only .env", loaded)
	}
	if got := os.Getenv("NEURALSYNC_LOG_LEVEL"); got != "trace" {
		t.Errorf("NEURALSYNC_LOG_LEVEL = %q, want trace", got)
	}
	if got := os.Getenv("NEURALSYNC_TEST_PRESET"); got != "from-env" {
		t.Errorf("existing variables must win, got %q", got)
	}
}

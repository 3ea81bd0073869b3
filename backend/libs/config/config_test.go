package config

import (
	"os"
	"path/filepath"
	"testing"
)

type nestedConfig struct {
	HTTP struct {
		Port string `yaml:"port" env:"TEST_HTTP_PORT"`
	} `yaml:"http"`
	Lot struct {
		Capacity int `yaml:"capacity"`
	} `yaml:"lot"`
	Rate    float64 `yaml:"rate" env:"TEST_RATE"`
	Enabled bool    `yaml:"enabled" env:"TEST_ENABLED"`
	Ignored string  `env:"-"`
}

func TestLoadConfigRejectsNonPointer(t *testing.T) {
	var cfg nestedConfig
	if err := LoadConfig(cfg); err == nil {
		t.Fatalf("expected error for non-pointer target")
	}
	if err := LoadConfig(nil); err == nil {
		t.Fatalf("expected error for nil target")
	}
}

func TestLoadConfigYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := "http:\n  port: \"9000\"\nlot:\n  capacity: 150\nrate: 1.5\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	t.Setenv(defaultConfigPathEnv, path)
	t.Setenv(defaultDotEnvPathEnv, "")
	t.Setenv("TEST_HTTP_PORT", "9100")
	t.Setenv("LOT_CAPACITY", "120")
	t.Setenv("TEST_ENABLED", "true")
	t.Setenv("IGNORED", "nope")
	chdirForTest(t, dir)

	var cfg nestedConfig
	if err := LoadConfig(&cfg); err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTP.Port != "9100" {
		t.Fatalf("expected env override for port, got %q", cfg.HTTP.Port)
	}
	if cfg.Lot.Capacity != 120 {
		t.Fatalf("expected derived key LOT_CAPACITY to apply, got %d", cfg.Lot.Capacity)
	}
	if cfg.Rate != 1.5 {
		t.Fatalf("expected yaml rate 1.5, got %v", cfg.Rate)
	}
	if !cfg.Enabled {
		t.Fatalf("expected enabled from env")
	}
	if cfg.Ignored != "" {
		t.Fatalf("expected ignored field to stay empty, got %q", cfg.Ignored)
	}
}

func TestLoadConfigDotEnvDoesNotOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "test.env")
	if err := os.WriteFile(envPath, []byte("TEST_HTTP_PORT=7000\nTEST_RATE=2.25\n"), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	t.Setenv(defaultConfigPathEnv, "")
	t.Setenv(defaultDotEnvPathEnv, envPath)
	t.Setenv("TEST_HTTP_PORT", "7100")
	os.Unsetenv("TEST_RATE")
	t.Cleanup(func() { os.Unsetenv("TEST_RATE") })

	var cfg nestedConfig
	if err := LoadConfig(&cfg); err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTP.Port != "7100" {
		t.Fatalf("expected process env to win over dotenv, got %q", cfg.HTTP.Port)
	}
	if cfg.Rate != 2.25 {
		t.Fatalf("expected dotenv rate 2.25, got %v", cfg.Rate)
	}
}

func TestLoadConfigBadValue(t *testing.T) {
	t.Setenv(defaultConfigPathEnv, "")
	t.Setenv(defaultDotEnvPathEnv, "")
	t.Setenv("LOT_CAPACITY", "many")
	chdirForTest(t, t.TempDir())

	var cfg nestedConfig
	if err := LoadConfig(&cfg); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadConfigMissingDotEnvFile(t *testing.T) {
	t.Setenv(defaultConfigPathEnv, "")
	t.Setenv(defaultDotEnvPathEnv, filepath.Join(t.TempDir(), "missing.env"))

	var cfg nestedConfig
	if err := LoadConfig(&cfg); err == nil {
		t.Fatalf("expected error for explicit missing dotenv file")
	}
}

// chdirForTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore cwd: %v", err)
		}
	})
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "parkinglot/backend/libs/config"
	libredis "parkinglot/backend/libs/redis"
)

const (
	defaultHTTPPort = "8080"
	defaultCapacity = 200
	defaultTTL      = 86400
)

// Config defines parking service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"PARKING_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"PARKING_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"PARKING_REDIS_ADDR"`
		Password string `yaml:"password" env:"PARKING_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"PARKING_REDIS_DB"`
		TTL      int    `yaml:"ttlSeconds" env:"PARKING_REDIS_TTL"`
	} `yaml:"redis"`
	Lot struct {
		Capacity int `yaml:"capacity" env:"PARKING_LOT_CAPACITY"`
	} `yaml:"lot"`
	Tariff struct {
		Timezone string `yaml:"timezone" env:"PARKING_TARIFF_TIMEZONE"`
	} `yaml:"tariff"`
	WS struct {
		PingIntervalSeconds int `yaml:"pingIntervalSeconds" env:"PARKING_WS_PING_INTERVAL"`
		WriteTimeoutSeconds int `yaml:"writeTimeoutSeconds" env:"PARKING_WS_WRITE_TIMEOUT"`
	} `yaml:"ws"`
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = defaultHTTPPort
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.TTL = defaultTTL
	cfg.Lot.Capacity = defaultCapacity
	cfg.Tariff.Timezone = "UTC"
	cfg.WS.PingIntervalSeconds = 30
	cfg.WS.WriteTimeoutSeconds = 10

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("config: database dsn required")
	}
	if strings.TrimSpace(c.Redis.Addr) == "" {
		return errors.New("config: redis addr required")
	}
	if c.Redis.DB < 0 {
		return errors.New("config: redis db must not be negative")
	}
	if c.Lot.Capacity <= 0 {
		return fmt.Errorf("config: lot capacity must be positive, got %d", c.Lot.Capacity)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = defaultHTTPPort
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// RedisOptions returns connection settings for the shared client.
func (c *Config) RedisOptions() libredis.Options {
	return libredis.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}

// ActiveSessionTTL returns ttl as duration.
func (c *Config) ActiveSessionTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Redis.TTL) * time.Second
}

// Location returns the timezone the day band is evaluated in.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Tariff.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("config: tariff timezone %q: %w", name, err)
	}
	return loc, nil
}

// PingInterval returns websocket keepalive interval.
func (c *Config) PingInterval() time.Duration {
	if c.WS.PingIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.WS.PingIntervalSeconds) * time.Second
}

// WriteTimeout returns websocket write deadline.
func (c *Config) WriteTimeout() time.Duration {
	if c.WS.WriteTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.WS.WriteTimeoutSeconds) * time.Second
}

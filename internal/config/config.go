package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode      string `mapstructure:"mode"`
	Port      int    `mapstructure:"port"`
	BaseURL   string `mapstructure:"base_url"`
	Secret    string `mapstructure:"secret"`
	ReadLimit int64  `mapstructure:"read_limit"`

	DefaultMaxParticipants int `mapstructure:"default_max_participants"`

	// DisconnectGrace is how long an abrupt disconnect may stay
	// unresolved before converting into a leave.
	DisconnectGrace time.Duration `mapstructure:"disconnect_grace"`

	ReapInterval time.Duration `mapstructure:"reap_interval"`
	Retention    time.Duration `mapstructure:"retention"`

	MessageRateLimit    int           `mapstructure:"message_rate_limit"`
	MessageRateInterval time.Duration `mapstructure:"message_rate_interval"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("base_url", "http://localhost:8080")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("default_max_participants", 50)
	v.SetDefault("disconnect_grace", "30s")
	v.SetDefault("reap_interval", "10m")
	v.SetDefault("retention", "24h")
	v.SetDefault("message_rate_limit", 20)
	v.SetDefault("message_rate_interval", "10s")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.DefaultMaxParticipants <= 0 {
		return fmt.Errorf("default_max_participants must be positive")
	}
	if c.Retention <= 0 {
		return fmt.Errorf("retention must be positive")
	}
	if c.ReapInterval <= 0 {
		return fmt.Errorf("reap_interval must be positive")
	}
	if c.DisconnectGrace < 0 {
		return fmt.Errorf("disconnect_grace must not be negative")
	}
	if c.MessageRateLimit <= 0 || c.MessageRateInterval <= 0 {
		return fmt.Errorf("message rate limit settings must be positive")
	}
	return nil
}

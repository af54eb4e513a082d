package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode          string        `mapstructure:"mode"`
	Port          int           `mapstructure:"port"`
	DBUrl         string        `mapstructure:"db_url"`
	Secret        string        `mapstructure:"secret"`
	YoutubeAPIKey string        `mapstructure:"youtube_api_key"`
	ReadLimit     int64         `mapstructure:"read_limit"`
	SendBuffer    int           `mapstructure:"send_buffer"`
	PingPeriod    time.Duration `mapstructure:"ping_period"`
	PongWait      time.Duration `mapstructure:"pong_wait"`
	WriteWait     time.Duration `mapstructure:"write_wait"`
	StoreTimeout  time.Duration `mapstructure:"store_timeout"`
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
	v.SetDefault("port", 3001)
	v.SetDefault("db_url", "sqlite://pulseplay.db")
	v.SetDefault("read_limit", 8192)
	v.SetDefault("send_buffer", 64)
	v.SetDefault("ping_period", "30s")
	// Client pings every 30s; anything past two intervals means dead.
	v.SetDefault("pong_wait", "75s")
	v.SetDefault("write_wait", "10s")
	v.SetDefault("store_timeout", "5s")

	v.SetEnvPrefix("pulseplay")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
